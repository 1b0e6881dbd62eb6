// Package ledger tracks which ticket ids have already been admitted, so a
// credential that verifies correctly is still honored at most once.
//
// The ledger is the authority for duplicate detection. It is deliberately
// append-only during normal operation: entries are removed only to roll back
// an admission whose durable persist failed, and the whole ledger is cleared
// only by an explicit purge. Ticket ids are normalized the same way the
// manifest index normalizes them, so ledger state and manifest state never
// disagree about identity.
package ledger
