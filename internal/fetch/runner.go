package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/inboxreceipts/internal/extract"
	"github.com/teemow/inboxreceipts/internal/gmail"
	"github.com/teemow/inboxreceipts/internal/google"
	"github.com/teemow/inboxreceipts/internal/instrumentation"
	"github.com/teemow/inboxreceipts/internal/logging"
	"github.com/teemow/inboxreceipts/internal/storage"
)

// bodyPreviewLimit caps the message body logged at debug level.
const bodyPreviewLimit = 200

// Config holds the per-run settings.
type Config struct {
	// Token is the bearer access token.
	Token string

	// Query is the mailbox search query. Empty selects gmail.ReceiptQuery.
	Query string

	// Workers bounds how many messages are processed at once. Values below
	// 2 process messages one at a time in search order.
	Workers int

	// PrintText prints the text extracted from each attachment.
	PrintText bool

	// ContinueOnExtractError logs extraction failures and keeps going
	// instead of aborting the run.
	ContinueOnExtractError bool

	// APIEndpoint overrides the Gmail API base URL.
	APIEndpoint string

	// UserInfoEndpoint overrides the user-info API base URL.
	UserInfoEndpoint string
}

// Runner executes fetch runs.
type Runner struct {
	cfg        Config
	transport  http.RoundTripper
	store      *storage.Store
	extractors *extract.Registry
	out        io.Writer
	logger     *slog.Logger
	metrics    *instrumentation.Metrics

	mu sync.Mutex // guards out and the summary of the current run
}

// Option configures a Runner.
type Option func(*Runner)

// WithTransport sets the base transport under the bearer-token transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(r *Runner) { r.transport = rt }
}

// WithStore sets where attachments are saved.
func WithStore(s *storage.Store) Option {
	return func(r *Runner) { r.store = s }
}

// WithExtractors sets the text extractor registry.
func WithExtractors(reg *extract.Registry) Option {
	return func(r *Runner) { r.extractors = reg }
}

// WithOutput sets the writer receiving console output.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// NewRunner returns a Runner for cfg. Unset options default to the OS
// filesystem under storage.DefaultDir, the default extractors, stdout and
// slog.Default().
func NewRunner(cfg Config, opts ...Option) *Runner {
	if cfg.Query == "" {
		cfg.Query = gmail.ReceiptQuery
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	r := &Runner{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}

	if r.store == nil {
		r.store = storage.NewOS(storage.DefaultDir)
	}
	if r.extractors == nil {
		r.extractors = extract.Default()
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.metrics == nil {
		r.metrics = &instrumentation.Metrics{}
	}
	return r
}

// Run performs one fetch. The returned summary is never nil.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	sum := &Summary{RunID: uuid.NewString()}
	logger := logging.WithRunID(r.logger, sum.RunID)

	ctx, span := instrumentation.StartSpan(ctx, "fetch.run",
		attribute.String(instrumentation.SpanAttrRunID, sum.RunID))
	defer span.End()
	sum.TraceID = instrumentation.GetTraceID(ctx)

	logger.Debug("fetch run started",
		logging.Operation("fetch"),
		slog.String("query", r.cfg.Query),
		slog.Int("workers", r.cfg.Workers),
		slog.String("output_dir", r.store.Dir()),
		slog.String("token", logging.SanitizeToken(r.cfg.Token)))

	err := r.run(ctx, logger, sum)
	sum.Duration = time.Since(start)

	if err != nil {
		instrumentation.SetSpanError(span, err)
		r.metrics.RecordRun(ctx, instrumentation.StatusError, Kind(err), sum.Duration)
		return sum, err
	}

	instrumentation.SetSpanSuccess(span)
	r.metrics.RecordRun(ctx, instrumentation.StatusSuccess, "", sum.Duration)
	logger.Info("fetch run completed", sum.LogAttrs()...)
	return sum, nil
}

func (r *Runner) run(ctx context.Context, logger *slog.Logger, sum *Summary) error {
	token := strings.TrimSpace(r.cfg.Token)
	if token == "" {
		return google.ErrNoToken
	}
	httpClient := google.NewHTTPClient(ctx, token, r.transport)

	var userInfoOpts []option.ClientOption
	if r.cfg.UserInfoEndpoint != "" {
		userInfoOpts = append(userInfoOpts, option.WithEndpoint(r.cfg.UserInfoEndpoint))
	}
	var info *google.UserInfo
	err := r.call(ctx, instrumentation.ServiceUserInfo, instrumentation.OperationValidate, func(ctx context.Context) error {
		var err error
		info, err = google.ValidateToken(ctx, httpClient, userInfoOpts...)
		return err
	})
	if err != nil {
		return err
	}
	sum.UserHash = logging.AnonymizeEmail(info.Email)
	logger.Info("access token accepted", logging.UserHash(info.Email))

	var apiOpts []option.ClientOption
	if r.cfg.APIEndpoint != "" {
		apiOpts = append(apiOpts, option.WithEndpoint(r.cfg.APIEndpoint))
	}
	client, err := gmail.NewClient(ctx, httpClient, apiOpts...)
	if err != nil {
		return err
	}

	var ids []string
	err = r.call(ctx, instrumentation.ServiceGmail, instrumentation.OperationList, func(ctx context.Context) error {
		var err error
		ids, err = client.SearchMessageIDs(ctx, r.cfg.Query)
		return err
	})
	if err != nil {
		return err
	}

	sum.Messages = len(ids)
	r.metrics.RecordMessagesFound(ctx, len(ids))
	fmt.Fprintf(r.out, "Total messages found: %d\n", len(ids))

	if err := r.processAll(ctx, client, ids, logger, sum); err != nil {
		return err
	}

	fmt.Fprintf(r.out, "Total attachments processed: %d\n", sum.Attachments)
	return nil
}

func (r *Runner) processAll(ctx context.Context, client *gmail.Client, ids []string, logger *slog.Logger, sum *Summary) error {
	if r.cfg.Workers < 2 {
		for _, id := range ids {
			if err := r.processMessage(ctx, client, id, logger, sum); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for _, id := range ids {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return r.processMessage(gctx, client, id, logger, sum)
		})
	}
	return g.Wait()
}

func (r *Runner) processMessage(ctx context.Context, client *gmail.Client, id string, logger *slog.Logger, sum *Summary) error {
	if id == "" {
		logger.Debug("message listed without id, skipping", logging.Status(logging.StatusSkipped))
		return nil
	}

	ctx, span := instrumentation.StartSpan(ctx, "fetch.message",
		attribute.String(instrumentation.SpanAttrMessageID, id))
	defer span.End()

	msg, err := r.getMessage(ctx, client, id)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return err
	}

	if logger.Enabled(ctx, slog.LevelDebug) {
		logger.Debug("message fetched", logging.MessageID(id),
			slog.String("subject", gmail.HeaderValue(msg, "Subject")))
		preview, err := gmail.BodyPreview(msg, bodyPreviewLimit)
		if err != nil {
			logger.Debug("message body not decodable", logging.MessageID(id), logging.Err(err))
		} else if preview != "" {
			logger.Debug("message body", logging.MessageID(id), slog.String("preview", preview))
		}
	}

	for _, ref := range gmail.Attachments(msg) {
		if err := r.processAttachment(ctx, client, ref, logger, sum); err != nil {
			instrumentation.SetSpanError(span, err)
			return err
		}
	}
	instrumentation.SetSpanSuccess(span)
	return nil
}

func (r *Runner) getMessage(ctx context.Context, client *gmail.Client, id string) (*gmailapi.Message, error) {
	var msg *gmailapi.Message
	err := r.call(ctx, instrumentation.ServiceGmail, instrumentation.OperationGetMessage, func(ctx context.Context) error {
		var err error
		msg, err = client.GetMessage(ctx, id)
		return err
	})
	return msg, err
}

func (r *Runner) processAttachment(ctx context.Context, client *gmail.Client, ref gmail.AttachmentRef, logger *slog.Logger, sum *Summary) error {
	log := logger.With(logging.MessageID(ref.MessageID), logging.Filename(ref.Filename))

	var data []byte
	err := r.call(ctx, instrumentation.ServiceGmail, instrumentation.OperationGetAttachment, func(ctx context.Context) error {
		var err error
		data, err = client.GetAttachment(ctx, ref.MessageID, ref.AttachmentID)
		return err
	})
	if errors.Is(err, gmail.ErrNoData) {
		log.Debug("attachment has no data, skipping", logging.Status(logging.StatusSkipped))
		r.metrics.RecordAttachment(ctx, instrumentation.AttachmentSkipped, 0)
		r.mu.Lock()
		sum.Skipped++
		r.mu.Unlock()
		return nil
	}
	if err != nil {
		r.metrics.RecordAttachment(ctx, instrumentation.AttachmentFailed, 0)
		return err
	}

	// Console lines for one attachment are written together so concurrent
	// workers never interleave them.
	var out bytes.Buffer

	r.mu.Lock()
	path, err := r.store.Save(ref.Filename, data)
	if err == nil {
		sum.Saved = append(sum.Saved, path)
		sum.BytesWritten += int64(len(data))
	}
	r.mu.Unlock()
	if err != nil {
		r.metrics.RecordAttachment(ctx, instrumentation.AttachmentFailed, 0)
		return err
	}
	r.metrics.RecordAttachment(ctx, instrumentation.AttachmentSaved, len(data))
	log.Debug("attachment saved", slog.String("path", path), slog.Int("bytes", len(data)))
	fmt.Fprintf(&out, "Saved attachment: %s\n", path)

	text, err := r.extractors.Extract(ref.Filename, data)
	ft := fileType(ref.Filename, r.extractors)
	if err != nil {
		r.metrics.RecordExtraction(ctx, ft, instrumentation.StatusError)
		err = fmt.Errorf("extract text from %s: %w", ref.Filename, err)
		if !r.cfg.ContinueOnExtractError {
			r.flush(&out)
			return err
		}
		log.Warn("text extraction failed, continuing", logging.Kind(Kind(err)), logging.Err(err))
	} else {
		r.metrics.RecordExtraction(ctx, ft, instrumentation.StatusSuccess)
		if r.cfg.PrintText {
			fmt.Fprintf(&out, "Extracted text from %s:\n%s\n", ref.Filename, text)
		}
	}

	r.mu.Lock()
	sum.Attachments++
	if err != nil {
		sum.ExtractFailures++
	}
	r.mu.Unlock()

	r.flush(&out)
	return nil
}

func (r *Runner) flush(buf *bytes.Buffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = buf.WriteTo(r.out)
}

// call runs fn inside an API span and records its outcome. A missing
// attachment body is not an API failure.
func (r *Runner) call(ctx context.Context, service, operation string, fn func(context.Context) error) error {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, service, operation)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	status := instrumentation.StatusSuccess
	if err != nil && !errors.Is(err, gmail.ErrNoData) {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	r.metrics.RecordGoogleAPIOperation(ctx, service, operation, status, time.Since(start))
	return err
}

// fileType labels extractions by extension, folding unregistered ones into
// "other" to keep metric cardinality bounded.
func fileType(name string, reg *extract.Registry) string {
	if _, ok := reg.Lookup(name); !ok {
		return "other"
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}
