// Package storage provides the durable snapshot regions the verification
// engine persists its manifest and admission state into.
//
// A region is an opaque named blob. The engine owns the encoding of what goes
// into a region; storage backends only move bytes. Two backends are provided:
// a file backend for fully offline terminals and a Redis backend for
// terminals that share a gate-side Redis instance.
package storage
