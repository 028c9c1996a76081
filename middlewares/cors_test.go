package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datahihi1/craft-mini/internal"
	"github.com/datahihi1/craft-mini/middlewares"
)

func corsRequest(method, target, origin string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func preflight(target, origin string) *http.Request {
	req := corsRequest(http.MethodOptions, target, origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	return req
}

func TestCORS(t *testing.T) {
	t.Parallel()

	routes := func(r *internal.Router) {
		r.Get("/", text("ok"))
		r.API().Post("users", text("created"))
	}

	t.Run("default allows any origin", func(t *testing.T) {
		t.Parallel()
		app := newApp(t, []internal.Middleware{middlewares.CORS()}, routes)

		rec := serve(app, corsRequest(http.MethodGet, "/", "http://example.com"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", rec.Body.String())
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, []string{"Origin"}, rec.Header().Values("Vary"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("no headers without Origin", func(t *testing.T) {
		t.Parallel()
		app := newApp(t, []internal.Middleware{middlewares.CORS()}, routes)

		rec := serve(app, corsRequest(http.MethodGet, "/", ""))
		assert.Equal(t, "ok", rec.Body.String())
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Values("Vary"))
	})

	t.Run("origin list", func(t *testing.T) {
		t.Parallel()
		app := newApp(t, []internal.Middleware{middlewares.CORS(
			middlewares.WithCORSOrigins("http://allowed.com", "http://also-allowed.com"),
		)}, routes)

		tests := []struct {
			origin string
			want   string
		}{
			{"http://allowed.com", "http://allowed.com"},
			{"http://also-allowed.com", "http://also-allowed.com"},
			{"http://evil.com", ""},
		}
		for _, tt := range tests {
			rec := serve(app, corsRequest(http.MethodGet, "/", tt.origin))
			assert.Equal(t, http.StatusOK, rec.Code, tt.origin)
			assert.Equal(t, tt.want, rec.Header().Get("Access-Control-Allow-Origin"), tt.origin)
		}
	})

	t.Run("origin func overrides list", func(t *testing.T) {
		t.Parallel()
		app := newApp(t, []internal.Middleware{middlewares.CORS(
			middlewares.WithCORSOrigins("http://listed.com"),
			middlewares.WithCORSOriginFunc(func(origin string) bool {
				return strings.HasSuffix(origin, ".example.com")
			}),
		)}, routes)

		rec := serve(app, corsRequest(http.MethodGet, "/", "https://app.example.com"))
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

		rec = serve(app, corsRequest(http.MethodGet, "/", "http://listed.com"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("credentials echo the origin", func(t *testing.T) {
		t.Parallel()
		app := newApp(t, []internal.Middleware{middlewares.CORS(
			middlewares.WithCORSCredentials(),
			middlewares.WithCORSExposedHeaders("X-Request-ID", "X-Total"),
		)}, routes)

		rec := serve(app, corsRequest(http.MethodGet, "/", "http://example.com"))
		assert.Equal(t, "http://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "X-Request-ID, X-Total", rec.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("preflight answers before routing", func(t *testing.T) {
		t.Parallel()
		app := newApp(t, []internal.Middleware{middlewares.CORS(
			middlewares.WithCORSMethods(http.MethodGet, http.MethodPost),
			middlewares.WithCORSHeaders("Content-Type"),
			middlewares.WithCORSMaxAge(time.Hour),
		)}, routes)

		rec := serve(app, preflight("/api/users", "http://example.com"))
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
		h := rec.Header()
		assert.Equal(t, "*", h.Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST", h.Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type", h.Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "3600", h.Get("Access-Control-Max-Age"))
		assert.Equal(t, []string{"Origin", "Access-Control-Request-Method", "Access-Control-Request-Headers"}, h.Values("Vary"))
	})

	t.Run("preflight without max age", func(t *testing.T) {
		t.Parallel()
		app := newApp(t, []internal.Middleware{middlewares.CORS(middlewares.WithCORSMaxAge(0))}, routes)

		rec := serve(app, preflight("/", "http://example.com"))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("plain OPTIONS is routed", func(t *testing.T) {
		t.Parallel()
		app := newApp(t, []internal.Middleware{middlewares.CORS()}, routes)

		rec := serve(app, corsRequest(http.MethodOptions, "/", "http://example.com"))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight from a disallowed origin is routed", func(t *testing.T) {
		t.Parallel()
		app := newApp(t, []internal.Middleware{middlewares.CORS(
			middlewares.WithCORSOrigins("http://allowed.com"),
		)}, routes)

		rec := serve(app, preflight("/", "http://evil.com"))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
