package middlewares

import (
	"runtime"

	"github.com/datahihi1/craft-mini/internal"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	StackSize int
	NoStack   bool
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize sets the maximum captured stack size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		if size > 0 {
			cfg.StackSize = size
		}
	}
}

// WithoutRecoverStack skips stack capture.
func WithoutRecoverStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.NoStack = true
	}
}

// Recover turns a panic in later middleware or the route into a *PanicError,
// which the app answers with 500.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &RecoverConfig{StackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				pe := &PanicError{Value: r}
				if cfg.NoStack {
					c.LogError("panic recovered", "panic", r)
				} else {
					buf := make([]byte, cfg.StackSize)
					pe.Stack = buf[:runtime.Stack(buf, false)]
					c.LogError("panic recovered", "panic", r, "stack", string(pe.Stack))
				}
				err = pe
			}()

			return next(c)
		}
	}
}
