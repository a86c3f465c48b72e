package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrKind      = "kind"
	attrFileType  = "file_type"
)

// Metrics records fetch run metrics. A zero Metrics is a valid no-op recorder.
type Metrics struct {
	// Google API metrics
	apiOperationsTotal   metric.Int64Counter
	apiOperationDuration metric.Float64Histogram

	// Run metrics
	runsTotal        metric.Int64Counter
	runDuration      metric.Float64Histogram
	messagesFound    metric.Int64Counter
	attachmentsTotal metric.Int64Counter
	attachmentBytes  metric.Int64Counter
	extractionsTotal metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with all instruments initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.apiOperationsTotal, err = meter.Int64Counter(
		"google_api_operations_total",
		metric.WithDescription("Total number of Google API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operations_total counter: %w", err)
	}

	m.apiOperationDuration, err = meter.Float64Histogram(
		"google_api_operation_duration_seconds",
		metric.WithDescription("Google API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create google_api_operation_duration_seconds histogram: %w", err)
	}

	m.runsTotal, err = meter.Int64Counter(
		"fetch_runs_total",
		metric.WithDescription("Total number of fetch runs by status and error kind"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch_runs_total counter: %w", err)
	}

	m.runDuration, err = meter.Float64Histogram(
		"fetch_run_duration_seconds",
		metric.WithDescription("Fetch run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 5, 10, 30, 60, 120, 300, 600),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch_run_duration_seconds histogram: %w", err)
	}

	m.messagesFound, err = meter.Int64Counter(
		"messages_found_total",
		metric.WithDescription("Total number of messages matched by the search query"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create messages_found_total counter: %w", err)
	}

	m.attachmentsTotal, err = meter.Int64Counter(
		"attachments_total",
		metric.WithDescription("Total number of attachments by result"),
		metric.WithUnit("{attachment}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create attachments_total counter: %w", err)
	}

	m.attachmentBytes, err = meter.Int64Counter(
		"attachment_bytes_total",
		metric.WithDescription("Total number of attachment bytes written to disk"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment_bytes_total counter: %w", err)
	}

	m.extractionsTotal, err = meter.Int64Counter(
		"text_extractions_total",
		metric.WithDescription("Total number of text extractions by file type and status"),
		metric.WithUnit("{extraction}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create text_extractions_total counter: %w", err)
	}

	return m, nil
}

// RecordGoogleAPIOperation records a Google API operation with service,
// operation, status, and duration.
//
// Parameters:
//   - service: ServiceGmail or ServiceUserInfo
//   - operation: one of the Operation* constants
//   - status: StatusSuccess or StatusError
//   - duration: time taken for the operation
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m.apiOperationsTotal == nil || m.apiOperationDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)

	m.apiOperationsTotal.Add(ctx, 1, attrs)
	m.apiOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRun records a finished fetch run. kind is empty on success.
func (m *Metrics) RecordRun(ctx context.Context, status, kind string, duration time.Duration) {
	if m.runsTotal == nil || m.runDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{attribute.String(attrStatus, status)}
	if kind != "" {
		attrs = append(attrs, attribute.String(attrKind, kind))
	}

	m.runsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordMessagesFound adds n matched messages.
func (m *Metrics) RecordMessagesFound(ctx context.Context, n int) {
	if m.messagesFound == nil {
		return
	}
	m.messagesFound.Add(ctx, int64(n))
}

// RecordAttachment records one attachment outcome and, when saved, its size.
func (m *Metrics) RecordAttachment(ctx context.Context, result string, size int) {
	if m.attachmentsTotal == nil || m.attachmentBytes == nil {
		return
	}

	m.attachmentsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
	if result == AttachmentSaved {
		m.attachmentBytes.Add(ctx, int64(size))
	}
}

// RecordExtraction records a text extraction attempt. fileType is the
// lower-case extension without the dot, or "other".
func (m *Metrics) RecordExtraction(ctx context.Context, fileType, status string) {
	if m.extractionsTotal == nil {
		return
	}

	m.extractionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrFileType, fileType),
		attribute.String(attrStatus, status),
	))
}
