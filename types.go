package gatepass

import (
	"time"

	"github.com/solarspot/gatepass/manifest"
)

// Decision represents the terminal result of one credential scan.
//
// Decision instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Decision uint8

const (
	// DecisionRejected is an exported constant or variable used by the verification engine.
	DecisionRejected Decision = iota
	// DecisionDuplicate is an exported constant or variable used by the verification engine.
	DecisionDuplicate
	// DecisionGranted is an exported constant or variable used by the verification engine.
	DecisionGranted
)

// String describes the string operation and its observable behavior.
func (d Decision) String() string {
	switch d {
	case DecisionGranted:
		return "granted"
	case DecisionDuplicate:
		return "duplicate"
	default:
		return "rejected"
	}
}

// RejectReason explains why a scan resolved to [DecisionRejected].
//
// RejectReason instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RejectReason uint8

const (
	// ReasonNone is an exported constant or variable used by the verification engine.
	ReasonNone RejectReason = iota
	// ReasonMalformedCredential is an exported constant or variable used by the verification engine.
	ReasonMalformedCredential
	// ReasonSignatureInvalid is an exported constant or variable used by the verification engine.
	ReasonSignatureInvalid
	// ReasonPayloadCorrupt is an exported constant or variable used by the verification engine.
	ReasonPayloadCorrupt
	// ReasonNotInManifest is an exported constant or variable used by the verification engine.
	ReasonNotInManifest
)

// String describes the string operation and its observable behavior.
func (r RejectReason) String() string {
	switch r {
	case ReasonMalformedCredential:
		return "malformed_credential"
	case ReasonSignatureInvalid:
		return "signature_invalid"
	case ReasonPayloadCorrupt:
		return "payload_corrupt"
	case ReasonNotInManifest:
		return "not_in_manifest"
	default:
		return "none"
	}
}

// ScanState is the engine's scan cycle position, exposed for operator UIs.
//
// ScanState instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ScanState uint8

const (
	// StateIdle is an exported constant or variable used by the verification engine.
	StateIdle ScanState = iota
	// StateDecoding is an exported constant or variable used by the verification engine.
	StateDecoding
	// StateMatching is an exported constant or variable used by the verification engine.
	StateMatching
	// StateResolved is an exported constant or variable used by the verification engine.
	StateResolved
)

// String describes the string operation and its observable behavior.
func (s ScanState) String() string {
	switch s {
	case StateDecoding:
		return "decoding"
	case StateMatching:
		return "matching"
	case StateResolved:
		return "resolved"
	default:
		return "idle"
	}
}

// Outcome is returned by [Engine.Verify]. It carries everything a gate
// operator display needs: the decision, the reject reason when relevant, and
// the matched manifest entry on a grant or duplicate.
type Outcome struct {
	ScanID   string
	Decision Decision
	Reason   RejectReason
	TicketID string
	Entry    *manifest.Entry
	At       time.Time
}
