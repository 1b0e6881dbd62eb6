// Package gatepass provides an offline admission verifier with HMAC-signed
// entry credentials, a locally loaded attendee manifest, and an at-most-once
// admission ledger.
//
// The package is designed for gate terminals with no network dependency on
// the registration backend: Engine methods are safe to call from multiple
// goroutines after initialization through [Builder.Build], and every granted
// admission is persisted to durable storage before the grant is reported.
//
// # Architecture boundaries
//
// gatepass is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (Outcome, MetricsSnapshot, etc.). Credential encoding lives
// in token/, the attendee index in manifest/, duplicate tracking in ledger/,
// and durable snapshot backends in storage/.
//
// # What this package must NOT do
//
//   - Expose storage backends, snapshot encodings, or the raw credential
//     signing secret in its public API.
//   - Reach the network during Verify; the loaded manifest and the local
//     ledger are the only authorities at decision time.
//   - Import any sub-package that re-imports gatepass (no import cycles).
//
// # Persistence contract
//
// Verify is the hot path, but a grant is never reported before the admission
// snapshot has been saved. A persist failure rolls the admission back and
// surfaces [ErrAdmissionNotPersisted] so the same credential can be retried.
package gatepass
