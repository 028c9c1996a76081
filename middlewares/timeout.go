package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/datahihi1/craft-mini/internal"
)

// DefaultTimeout is used when Timeout is given a non-positive duration.
const DefaultTimeout = 30 * time.Second

type timeoutContextKey struct{}

// Timeout answers 504 with a *TimeoutError when the rest of the chain does
// not return within d.
//
// The handler goroutine keeps running after the deadline; long operations
// should watch TimeoutContext(c).Done().
func Timeout(d time.Duration) internal.Middleware {
	if d <= 0 {
		d = DefaultTimeout
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			ctx, cancel := context.WithTimeout(c.Context(), d)
			defer cancel()

			c.Set(timeoutContextKey{}, ctx)

			done := make(chan error, 1)
			go func() {
				done <- next(c)
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					c.LogWarn("request timeout", "timeout", d.String())
					return &TimeoutError{Duration: d}
				}
				return ctx.Err()
			}
		}
	}
}

// TimeoutContext returns the deadline-bound context set by Timeout, or the
// request context when Timeout did not run.
func TimeoutContext(c internal.Context) context.Context {
	if v, ok := c.Get(timeoutContextKey{}).(context.Context); ok {
		return v
	}
	return c.Context()
}
