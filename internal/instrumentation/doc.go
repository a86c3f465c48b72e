// Package instrumentation provides OpenTelemetry metrics and tracing for
// fetch runs.
//
// Instrumentation is off by default. When enabled, metrics are exported via
// Prometheus (scraped from the optional metrics server), OTLP or stdout, and
// spans via OTLP or stdout.
//
// # Metrics
//
//   - google_api_operations_total / google_api_operation_duration_seconds:
//     user-info and Gmail calls by service, operation and status
//   - fetch_runs_total / fetch_run_duration_seconds: runs by status and error kind
//   - messages_found_total: messages matched by the search query
//   - attachments_total: attachments by result (saved, skipped, failed)
//   - attachment_bytes_total: bytes written to the output directory
//   - text_extractions_total: extractions by file type and status
//
// # Configuration
//
// DefaultConfig reads:
//   - INSTRUMENTATION_ENABLED (default: false)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_INSECURE
//   - OTEL_TRACES_SAMPLER_ARG (default: 1.0)
//   - OTEL_SERVICE_NAME (default: inboxreceipts)
//
// A Metrics obtained from a disabled Provider records nothing, so callers
// never need to nil-check.
package instrumentation
