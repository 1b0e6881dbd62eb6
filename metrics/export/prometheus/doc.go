// Package prometheus provides Prometheus collectors for gatepass metrics.
//
// [NewPrometheusExporter] accepts a [gatepass.Engine] and exposes an [http.Handler]
// that renders all gatepass counters and histograms in Prometheus text exposition
// format. Counter names are prefixed gatepass_*_total; the single histogram is
// gatepass_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
