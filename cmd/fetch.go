package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teemow/inboxreceipts/internal/credential"
	"github.com/teemow/inboxreceipts/internal/fetch"
	"github.com/teemow/inboxreceipts/internal/gmail"
	"github.com/teemow/inboxreceipts/internal/google"
	"github.com/teemow/inboxreceipts/internal/logging"
	"github.com/teemow/inboxreceipts/internal/storage"
)

// openCredentials opens the keyring-backed token store. Tests replace it.
var openCredentials = credential.Open

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download receipt attachments and print their text",
		Long: `Validate the access token, search the mailbox for receipts, invoices,
insurance and health documents that carry attachments, save every attachment
to the output directory and print the text of PDF and DOCX files.

Failures are reported on the console and the command still exits 0 unless
--strict-exit is set.`,
		Args: cobra.NoArgs,
		RunE: runFetch,
	}

	f := cmd.Flags()
	f.String("token", "", "Google OAuth2 access token (env INBOXRECEIPTS_TOKEN)")
	f.String("brand", "", "brand name added to the search query")
	f.String("query", "", "replace the whole search query")
	f.String("output-dir", storage.DefaultDir, "directory attachments are saved to")
	f.Int("workers", 1, "number of messages processed concurrently")
	f.Duration("timeout", 0, "abort the run after this duration (0 means no limit)")
	f.Bool("print-text", true, "print the text extracted from each attachment")
	f.Bool("continue-on-extract-error", false, "log unreadable PDF/DOCX attachments and keep going")
	f.Bool("strict-exit", false, "exit non-zero when the fetch fails")
	f.String("api-endpoint", "", "Gmail API base URL override")
	f.String("userinfo-endpoint", "", "user-info API base URL override")
	_ = f.MarkHidden("api-endpoint")
	_ = f.MarkHidden("userinfo-endpoint")

	return cmd
}

func runFetch(cmd *cobra.Command, _ []string) error {
	v, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.WithOperation(slog.Default(), "fetch")
	out := cmd.OutOrStdout()
	interactive := isInteractive(cmd.InOrStdin())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	token, err := resolveToken(ctx, v, interactive, logger)
	if errors.Is(err, google.ErrNoToken) {
		fmt.Fprintln(out, "No access token provided. Exiting.")
		return nil
	}
	if err != nil {
		return err
	}

	query, err := resolveQuery(v, interactive)
	if err != nil {
		return err
	}

	tel, err := startTelemetry(ctx, v, logger)
	if err != nil {
		return err
	}
	defer tel.Close()

	if timeout := v.GetDuration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	runner := fetch.NewRunner(fetch.Config{
		Token:                  token,
		Query:                  query,
		Workers:                v.GetInt("workers"),
		PrintText:              v.GetBool("print-text"),
		ContinueOnExtractError: v.GetBool("continue-on-extract-error"),
		APIEndpoint:            v.GetString("api-endpoint"),
		UserInfoEndpoint:       v.GetString("userinfo-endpoint"),
	},
		fetch.WithStore(storage.NewOS(v.GetString("output-dir"))),
		fetch.WithOutput(out),
		fetch.WithLogger(logger),
		fetch.WithMetrics(tel.Metrics()),
	)

	sum, err := runner.Run(ctx)
	if err != nil {
		fmt.Fprintf(out, "An error occurred: %v\n", err)
		attrs := []any{slog.String(logging.KeyRunID, sum.RunID)}
		if sum.TraceID != "" {
			attrs = append(attrs, slog.String(logging.KeyTraceID, sum.TraceID))
		}
		logger.Error("fetch failed", append(attrs,
			logging.Kind(fetch.Kind(err)),
			logging.Err(err))...)
		if v.GetBool("strict-exit") {
			return err
		}
	}
	return nil
}

// resolveToken returns the first token found in flag/env/config, the OS
// keyring or, when interactive, a prompt.
func resolveToken(ctx context.Context, v *viper.Viper, interactive bool, logger *slog.Logger) (string, error) {
	chain := google.ChainTokenProvider{
		google.StaticToken(v.GetString("token")),
		google.TokenProviderFunc(func(ctx context.Context) (string, error) {
			store, err := openCredentials()
			if err != nil {
				logger.Debug("keyring unavailable", logging.Err(err))
				return "", nil
			}
			tok, err := store.Token(ctx)
			if err != nil {
				logger.Debug("reading token from keyring failed", logging.Err(err))
				return "", nil
			}
			return tok, nil
		}),
	}
	if interactive {
		chain = append(chain, google.TokenProviderFunc(func(context.Context) (string, error) {
			return promptToken()
		}))
	}
	return chain.Token(ctx)
}

// resolveQuery returns --query verbatim or the receipt query narrowed by the
// brand, prompting for the brand when interactive and none is configured.
func resolveQuery(v *viper.Viper, interactive bool) (string, error) {
	if q := v.GetString("query"); q != "" {
		return q, nil
	}

	brand := v.GetString("brand")
	if brand == "" && interactive {
		var err error
		if brand, err = promptBrand(); err != nil {
			return "", fmt.Errorf("reading brand: %w", err)
		}
	}
	return gmail.BuildQuery(brand), nil
}
