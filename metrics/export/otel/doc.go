// Package otel provides OpenTelemetry metric exporter bindings for authkit counters and
// histograms.
//
// [NewOTelExporter] groups engine counters by operation: verifications, logins,
// registrations and token validations are each one Int64ObservableCounter with
// an outcome attribute, and password hashes carry an algorithm attribute. The
// validate latency histogram is exported as a bucket gauge keyed by le plus
// count and sum counters. A single callback reads
// [authkit.Engine.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
