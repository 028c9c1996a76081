package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config selects level, format and destination of a logger.
type Config struct {
	Output io.Writer `env:"-"`
	Level  string    `env:"LOG_LEVEL" envDefault:"info"`
	Format string    `env:"LOG_FORMAT" envDefault:"json"`
}

// New creates a JSON logger at info level on stdout.
func New(extractors ...ContextExtractor) *slog.Logger {
	return NewWithConfig(Config{}, extractors...)
}

// NewWithConfig creates a logger from cfg. Unknown levels fall back to info
// and unknown formats to JSON.
func NewWithConfig(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	return slog.New(NewLogHandlerDecorator(baseHandler(cfg), extractors...))
}

// ParseLevel maps debug, info, warn (warning) and error to slog levels.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func baseHandler(cfg Config) slog.Handler {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, FormatText) {
		return slog.NewTextHandler(out, opts)
	}
	return slog.NewJSONHandler(out, opts)
}
