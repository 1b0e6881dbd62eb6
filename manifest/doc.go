// Package manifest holds the offline index of attendees authorized for
// admission at a single gate terminal.
//
// The index is bulk-loaded from the registration system's JSON export and
// keyed by the normalized ticket identifier (whitespace-trimmed, uppercased).
// Normalization is applied once at the boundary, on both write and read, so
// lookups are never case-sensitivity bugs waiting to happen.
//
// # Architecture boundaries
//
// This package owns the [Store] (index + snapshot codec) and the [Entry]
// model. It does NOT verify credentials or decide admission outcomes — those
// responsibilities belong to the Engine.
package manifest
