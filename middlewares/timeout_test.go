package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/datahihi1/craft-mini/internal"
	"github.com/datahihi1/craft-mini/middlewares"
)

// waitForDeadline blocks until the timeout context is done and never writes,
// so the abandoned goroutine does not touch the response.
func waitForDeadline(next internal.HandlerFunc) internal.HandlerFunc {
	return func(c internal.Context) error {
		<-middlewares.TimeoutContext(c).Done()
		return nil
	}
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("fast handler", func(t *testing.T) {
		t.Parallel()
		app := newApp(t, []internal.Middleware{middlewares.Timeout(time.Second)}, func(r *internal.Router) {
			r.Get("/", text("quick"))
		})

		rec := serve(app, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "quick", rec.Body.String())
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		t.Parallel()

		var got *middlewares.TimeoutError
		app := newApp(t, []internal.Middleware{middlewares.Timeout(20 * time.Millisecond), waitForDeadline},
			func(r *internal.Router) { r.Get("/", text("never")) },
			internal.WithErrorHandler(func(c internal.Context, err error) error {
				got, _ = middlewares.AsTimeoutError(err)
				return c.String(http.StatusGatewayTimeout, "too slow")
			}))

		rec := serve(app, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
		assert.Equal(t, "too slow", rec.Body.String())
		if assert.NotNil(t, got) {
			assert.Equal(t, 20*time.Millisecond, got.Duration)
		}
	})

	t.Run("default error page answers 504", func(t *testing.T) {
		t.Parallel()
		app := newApp(t, []internal.Middleware{middlewares.Timeout(10 * time.Millisecond), waitForDeadline},
			func(r *internal.Router) { r.Get("/", text("never")) })

		rec := serve(app, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	})
}

func TestTimeoutContext_WithoutMiddleware(t *testing.T) {
	t.Parallel()

	app := newApp(t, nil, func(r *internal.Router) {
		r.Get("/", internal.RouteFunc(func(c internal.Context) (any, error) {
			_, ok := middlewares.TimeoutContext(c).Deadline()
			if ok {
				return "deadline", nil
			}
			return "none", nil
		}))
	})

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "none", rec.Body.String())
}
