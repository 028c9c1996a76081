package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig adds Sentry reporting to a logger Config.
type SentryConfig struct {
	Config
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	// MinLevel is the lowest level stored in Sentry as a log; errors always create issues.
	MinLevel slog.Level
}

// NewWithSentry logs to the configured output and to Sentry.
// With an empty DSN, or when the SDK fails to start, only the output is used.
func NewWithSentry(cfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	local := baseHandler(cfg.Config)
	if cfg.DSN == "" {
		return slog.New(NewLogHandlerDecorator(local, extractors...))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(local).Error("sentry disabled", slog.String("error", err.Error()))
		return slog.New(NewLogHandlerDecorator(local, extractors...))
	}

	logLevels := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel >= slog.LevelError {
		logLevels = []slog.Level{slog.LevelError}
	}
	remote := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevels,
	}.NewSentryHandler(context.Background())

	return slog.New(NewLogHandlerDecorator(fanout{local, remote}, extractors...))
}

// FlushSentry returns a shutdown hook that waits for buffered Sentry events.
// It is a no-op when Sentry was never initialized.
func FlushSentry() func(context.Context) error {
	return func(ctx context.Context) error {
		timeout := 2 * time.Second
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline)
		}
		sentry.Flush(timeout)
		return nil
	}
}
