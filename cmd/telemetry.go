package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/teemow/inboxreceipts/internal/instrumentation"
	"github.com/teemow/inboxreceipts/internal/server"
)

// telemetry bundles the instrumentation provider and the optional metrics
// server for the duration of a command.
type telemetry struct {
	provider *instrumentation.Provider
	metrics  *server.MetricsServer
	logger   *slog.Logger
}

// startTelemetry enables instrumentation when an exporter is selected by flag
// or environment and starts the metrics server when --metrics-addr is set.
func startTelemetry(ctx context.Context, v *viper.Viper, logger *slog.Logger) (*telemetry, error) {
	cfg := instrumentation.DefaultConfig()
	cfg.ServiceVersion = version
	if exp := v.GetString("metrics-exporter"); exp != "" {
		cfg.Enabled = true
		cfg.MetricsExporter = exp
	}
	if exp := v.GetString("tracing-exporter"); exp != "" && exp != instrumentation.ExporterNone {
		cfg.Enabled = true
		cfg.TracingExporter = exp
	}
	addr := v.GetString("metrics-addr")
	if addr != "" && !cfg.Enabled {
		cfg.Enabled = true
		cfg.MetricsExporter = instrumentation.ExporterPrometheus
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid instrumentation config: %w", err)
	}

	provider, err := instrumentation.NewProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	t := &telemetry{provider: provider, logger: logger}

	if addr != "" {
		t.metrics, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    addr,
			InstrumentationProvider: provider,
			Logger:                  logger,
		})
		if err == nil {
			err = t.metrics.Listen()
		}
		if err != nil {
			_ = provider.Shutdown(ctx)
			return nil, fmt.Errorf("metrics server failed to start: %w", err)
		}
		go func() {
			if err := t.metrics.Serve(); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}
	return t, nil
}

// Metrics returns the run metrics recorder.
func (t *telemetry) Metrics() *instrumentation.Metrics {
	return t.provider.Metrics()
}

// Close stops the metrics server and flushes telemetry.
func (t *telemetry) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()

	if t.metrics != nil {
		if err := t.metrics.Shutdown(ctx); err != nil {
			t.logger.Warn("metrics server shutdown failed", "error", err)
		}
	}
	if err := t.provider.Shutdown(ctx); err != nil {
		t.logger.Warn("instrumentation shutdown failed", "error", err)
	}
}
