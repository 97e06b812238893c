// Package prometheus provides Prometheus collectors for authkit metrics.
//
// [NewPrometheusExporter] accepts an [authkit.Engine] and exposes an [http.Handler]
// that renders all authkit counters and histograms in Prometheus text exposition format.
// Counter names are prefixed authkit_*_total; the single histogram is
// authkit_validate_latency_seconds.
//
// [NewCollector] exposes the same series as a client_golang Collector for
// callers that already run a registry.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler
//     or register the Collector themselves.
//   - Mutate engine state.
package prometheus
