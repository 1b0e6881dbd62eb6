package internaldefs

import (
	gatepass "github.com/solarspot/gatepass"
)

// CounterDef defines a public type used by gatepass APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   gatepass.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by gatepass APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   gatepass.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the verification engine.
var CounterDefs = []CounterDef{
	{ID: gatepass.MetricScanGranted, Name: "gatepass_scan_granted_total", Help: "Scans resolved as granted."},
	{ID: gatepass.MetricScanDuplicate, Name: "gatepass_scan_duplicate_total", Help: "Scans resolved as duplicate admission attempts."},
	{ID: gatepass.MetricScanRejectedMalformed, Name: "gatepass_scan_rejected_malformed_total", Help: "Scans rejected for malformed credentials."},
	{ID: gatepass.MetricScanRejectedSignature, Name: "gatepass_scan_rejected_signature_total", Help: "Scans rejected for invalid signatures."},
	{ID: gatepass.MetricScanRejectedPayload, Name: "gatepass_scan_rejected_payload_total", Help: "Scans rejected for corrupt credential payloads."},
	{ID: gatepass.MetricScanRejectedUnlisted, Name: "gatepass_scan_rejected_unlisted_total", Help: "Scans rejected because the ticket is not in the manifest."},
	{ID: gatepass.MetricScanIgnored, Name: "gatepass_scan_ignored_total", Help: "Scans ignored while a previous scan awaited acknowledgment."},
	{ID: gatepass.MetricAdmissionPersistFailure, Name: "gatepass_admission_persist_failure_total", Help: "Grants rolled back because the admission snapshot could not be saved."},
	{ID: gatepass.MetricManifestLoaded, Name: "gatepass_manifest_loaded_total", Help: "Manifest load operations."},
	{ID: gatepass.MetricManifestRecordsSkipped, Name: "gatepass_manifest_records_skipped_total", Help: "Manifest records skipped for empty or duplicate ticket ids."},
	{ID: gatepass.MetricPurge, Name: "gatepass_purge_total", Help: "Purge operations."},
}

// HistogramDefs is an exported constant or variable used by the verification engine.
var HistogramDefs = []HistogramDef{
	{ID: gatepass.MetricVerifyLatency, Name: "gatepass_verify_latency_seconds", Help: "Verify latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the verification engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the verification engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
