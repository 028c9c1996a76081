// Package logger builds log/slog loggers with request-scoped attributes and
// optional Sentry reporting.
//
// Context extractors add attributes taken from the context of each log call,
// such as the request ID set by middlewares.RequestID:
//
//	log := logger.NewWithConfig(logger.Config{Level: "debug", Format: "text"},
//	    middlewares.RequestIDExtractor(),
//	)
//	log.InfoContext(ctx, "user created", slog.Int64("id", id))
//
// NewWithSentry additionally forwards warnings and errors to Sentry; errors
// create issues. An empty DSN keeps local output only, so the same code path
// works in development:
//
//	log := logger.NewWithSentry(logger.SentryConfig{
//	    Config: logger.Config{Level: cfg.LogLevel},
//	    DSN:    cfg.SentryDSN,
//	})
//	defer logger.FlushSentry()(context.Background())
//
// NewNope returns a logger that discards everything; it is the default of
// every component that accepts a logger.
package logger
