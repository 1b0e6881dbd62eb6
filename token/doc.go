// Package token encodes attendee claims into compact signed credentials and
// verifies them with strict, byte-exact semantics suitable for offline gate scanning.
//
// # Wire format
//
// A credential is two segments joined by a single dot:
//
//	base64(JSON claim) "." lowercase-hex HMAC-SHA256(base64 payload, secret)
//
// The verifier never re-serializes the claim: it re-signs the exact payload
// bytes it received, so verification is independent of field ordering and
// whitespace ambiguity on the issuing side.
//
// Credentials carry no expiry or issuance timestamp. Replay across events is
// prevented operationally (a fresh manifest and a purged ledger per event),
// not by the token itself.
package token
