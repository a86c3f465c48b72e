package fetch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/teemow/inboxreceipts/internal/logging"
)

// useTracerProvider installs tp as the global tracer provider for one test.
func useTracerProvider(t *testing.T, tp trace.TracerProvider) {
	t.Helper()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
}

func TestRun_TraceIDWithTracing(t *testing.T) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	useTracerProvider(t, tp)

	h := newHarness(t)
	sum, err := h.runner(Config{}).Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, sum.TraceID, 32)
	assert.Contains(t, sum.LogAttrs(), logging.KeyTraceID)
	assert.Contains(t, sum.LogAttrs(), sum.TraceID)
}

func TestRun_NoTraceIDWithoutTracing(t *testing.T) {
	useTracerProvider(t, noop.NewTracerProvider())

	h := newHarness(t)
	sum, err := h.runner(Config{}).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, sum.TraceID)
	assert.NotContains(t, sum.LogAttrs(), logging.KeyTraceID)
}

func TestSummary_LogAttrs(t *testing.T) {
	sum := Summary{Messages: 3, Attachments: 2, Skipped: 1, BytesWritten: 8}
	attrs := sum.LogAttrs()

	require.Zero(t, len(attrs)%2, "attributes come in key/value pairs")
	got := map[any]any{}
	for i := 0; i < len(attrs); i += 2 {
		got[attrs[i]] = attrs[i+1]
	}
	assert.Equal(t, 3, got["messages"])
	assert.Equal(t, 2, got["attachments"])
	assert.Equal(t, 1, got["skipped"])
	assert.Equal(t, int64(8), got["bytes_written"])
}
