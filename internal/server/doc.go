// Package server exposes run metrics over HTTP.
//
// MetricsServer serves the Prometheus handler of an instrumentation.Provider
// on a dedicated address for the lifetime of a fetch run, together with a
// /healthz probe. It is only started when --metrics-addr is set and the
// Prometheus exporter is selected.
package server
