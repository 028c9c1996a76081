package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/datahihi1/craft-mini/internal"
)

// DefaultCORSMaxAge is how long browsers may cache a preflight answer.
const DefaultCORSMaxAge = 12 * time.Hour

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	// Origins lists the allowed origins. "*" allows any origin.
	Origins []string

	// OriginFunc decides per request and replaces Origins when set.
	OriginFunc func(origin string) bool

	Methods []string
	Headers []string

	// ExposedHeaders are readable by client scripts.
	ExposedHeaders []string

	// Credentials allows cookies and Authorization. The request origin is
	// echoed instead of "*" when set.
	Credentials bool

	MaxAge time.Duration
}

// CORSOption configures CORSConfig.
type CORSOption func(*CORSConfig)

// WithCORSOrigins sets the allowed origins.
func WithCORSOrigins(origins ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.Origins = origins
	}
}

// WithCORSOriginFunc validates origins dynamically.
func WithCORSOriginFunc(fn func(origin string) bool) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.OriginFunc = fn
	}
}

// WithCORSMethods sets the methods announced to preflight requests.
func WithCORSMethods(methods ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.Methods = methods
	}
}

// WithCORSHeaders sets the request headers announced to preflight requests.
func WithCORSHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.Headers = headers
	}
}

// WithCORSExposedHeaders sets Access-Control-Expose-Headers.
func WithCORSExposedHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.ExposedHeaders = headers
	}
}

// WithCORSCredentials allows credentialed requests.
func WithCORSCredentials() CORSOption {
	return func(cfg *CORSConfig) {
		cfg.Credentials = true
	}
}

// WithCORSMaxAge sets the preflight cache duration. Zero omits the header.
func WithCORSMaxAge(d time.Duration) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.MaxAge = d
	}
}

// CORS adds Cross-Origin Resource Sharing headers for allowed origins and
// answers preflight requests with 204 before routing. Requests without an
// Origin header, or from an origin that is not allowed, pass through
// untouched. A bare OPTIONS request without Access-Control-Request-Method
// is routed normally.
//
// Example:
//
//	craft.WithMiddleware(middlewares.CORS(
//	    middlewares.WithCORSOrigins("https://app.example.com"),
//	    middlewares.WithCORSCredentials(),
//	))
func CORS(opts ...CORSOption) internal.Middleware {
	cfg := &CORSConfig{
		Origins: []string{"*"},
		Methods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		Headers: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-HTTP-Method-Override"},
		MaxAge:  DefaultCORSMaxAge,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	methods := strings.Join(cfg.Methods, ", ")
	headers := strings.Join(cfg.Headers, ", ")
	exposed := strings.Join(cfg.ExposedHeaders, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge.Seconds()))
	anyOrigin := slices.Contains(cfg.Origins, "*")

	allowed := func(origin string) bool {
		if cfg.OriginFunc != nil {
			return cfg.OriginFunc(origin)
		}
		return anyOrigin || slices.Contains(cfg.Origins, origin)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			origin := c.Header("Origin")
			if origin == "" || !allowed(origin) {
				return next(c)
			}

			h := c.Response().Header()
			h.Add("Vary", "Origin")
			if cfg.Credentials || !anyOrigin || cfg.OriginFunc != nil {
				h.Set("Access-Control-Allow-Origin", origin)
			} else {
				h.Set("Access-Control-Allow-Origin", "*")
			}
			if cfg.Credentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if exposed != "" {
				h.Set("Access-Control-Expose-Headers", exposed)
			}

			if c.Request().Method != http.MethodOptions || c.Header("Access-Control-Request-Method") == "" {
				return next(c)
			}

			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			return c.NoContent(http.StatusNoContent)
		}
	}
}
