package fetch

import (
	"time"

	"github.com/teemow/inboxreceipts/internal/logging"
)

// Summary describes a fetch run. It is returned even when the run fails, with
// the counts reached so far.
type Summary struct {
	RunID string
	// TraceID is the trace of the run span, empty when tracing is off.
	TraceID string
	// UserHash is the anonymized email of the validated account.
	UserHash string

	Messages        int
	Attachments     int
	Skipped         int
	ExtractFailures int
	BytesWritten    int64
	Saved           []string

	Duration time.Duration
}

// LogAttrs returns the summary as slog key/value pairs.
func (s Summary) LogAttrs() []any {
	attrs := []any{
		"messages", s.Messages,
		"attachments", s.Attachments,
		"skipped", s.Skipped,
		"extract_failures", s.ExtractFailures,
		"bytes_written", s.BytesWritten,
		"duration", s.Duration,
	}
	if s.TraceID != "" {
		attrs = append(attrs, logging.KeyTraceID, s.TraceID)
	}
	return attrs
}
