package internal

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/datahihi1/craft-mini/pkg/cookie"
	"github.com/datahihi1/craft-mini/pkg/health"
	"github.com/datahihi1/craft-mini/pkg/logger"
	"github.com/datahihi1/craft-mini/pkg/session"
)

// Option configures the application.
type Option func(*App)

// WithRoutes registers a function that declares routes.
// Functions run in the order given, after every Handler's Routes method.
//
// Example:
//
//	craft.WithRoutes(func(r *craft.Router) {
//	    r.Get("/hello/{name}", craft.Func(func(name string) string {
//	        return "Hello " + name
//	    }))
//	})
func WithRoutes(fn ...func(r *Router)) Option {
	return func(a *App) {
		a.routeFuncs = append(a.routeFuncs, fn...)
	}
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithController registers a value whose exported methods can be referenced
// with Method(name, "MethodName").
//
// Example:
//
//	craft.WithController("users", &UserController{repo: repo})
//	// r.Get("/users/{id}", craft.Method("users", "Show"))
func WithController(name string, controller any) Option {
	return func(a *App) {
		if name == "" || controller == nil {
			a.optErrs = append(a.optErrs, fmt.Errorf("craft: controller %q: name and value are required", name))
			return
		}
		a.controllers[name] = controller
	}
}

// WithNamedMiddleware registers route middleware referenced with Named(name).
//
// Example:
//
//	craft.WithNamedMiddleware("auth", func(c craft.Context) any {
//	    if _, err := c.Cookie("token"); err != nil {
//	        return craft.Blocked
//	    }
//	    return nil
//	})
func WithNamedMiddleware(name string, mw RouteMiddleware) Option {
	return func(a *App) {
		if name == "" || mw == nil {
			a.optErrs = append(a.optErrs, fmt.Errorf("craft: named middleware %q: name and func are required", name))
			return
		}
		a.named[name] = mw
	}
}

// WithRouteMiddleware adds route middleware that runs before the middleware
// of every standard route.
func WithRouteMiddleware(mw ...MiddlewareRef) Option {
	return func(a *App) {
		a.global = append(a.global, mw...)
	}
}

// WithAPIMiddleware adds route middleware that runs before the middleware of
// every API route.
func WithAPIMiddleware(mw ...MiddlewareRef) Option {
	return func(a *App) {
		a.globalAPI = append(a.globalAPI, mw...)
	}
}

// WithMiddleware adds HTTP-level middleware wrapping every request, including
// requests that match no route.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithStrictRoutes makes duplicate routes and route names fail New instead of
// the later declaration winning.
func WithStrictRoutes() Option {
	return func(a *App) {
		a.strict = true
	}
}

// WithBasePath serves the application under a path prefix, e.g. "/app".
// The prefix is stripped before matching and added back by Path and URLFor.
func WithBasePath(p string) Option {
	return func(a *App) {
		p = strings.Trim(p, "/")
		if p == "" {
			a.basePath = ""
			return
		}
		a.basePath = "/" + p
	}
}

// WithDebug enables diagnostic error bodies.
func WithDebug(debug bool) Option {
	return func(a *App) {
		a.debug = debug
	}
}

// WithMethodOverride controls whether POST requests may carry a "_method"
// field of PUT or DELETE. Enabled by default.
func WithMethodOverride(enabled bool) Option {
	return func(a *App) {
		a.methodOverride = enabled
	}
}

// WithStaticFiles serves files of fsys under subDir at pattern.
// Directory listings are disabled.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	craft.WithStaticFiles("/assets/", assets, "public")
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			a.optErrs = append(a.optErrs, fmt.Errorf("craft: static files %q: %w", pattern, err))
			return
		}

		fileServer := http.FileServerFS(subFS)
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			fileServer.ServeHTTP(w, r)
		})

		a.staticRoutes = append(a.staticRoutes, staticRoute{handler: handler, pattern: pattern})
	}
}

// WithErrorHandler replaces the default error page.
// It receives routing errors (*RouteError) and handler errors of standard
// routes. API routes always answer JSON.
//
// Example:
//
//	craft.WithErrorHandler(func(c craft.Context, err error) error {
//	    status := http.StatusInternalServerError
//	    if he := craft.AsHTTPError(err); he != nil {
//	        status = he.StatusCode()
//	    }
//	    return c.HTML(status, views.ErrorPage(status))
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithLogger creates a JSON logger with a component name and optional extractors.
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With("component", component)
	}
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithCookieOptions configures the cookie manager used by Context cookie helpers.
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(a *App) {
		a.cookieManager = cookie.New(opts...)
	}
}

// WithSession enables server-side sessions kept in store.
// Sessions are loaded lazily and saved before the response is written.
//
// Example:
//
//	craft.WithSession(session.NewMemoryStore(),
//	    craft.WithSessionTTL(2*time.Hour),
//	    craft.WithSessionSecret(os.Getenv("SESSION_SECRET")),
//	)
func WithSession(store session.Store, opts ...SessionOption) Option {
	return func(a *App) {
		if store == nil {
			a.optErrs = append(a.optErrs, fmt.Errorf("craft: session store is nil"))
			return
		}
		a.sessionManager = NewSessionManager(store, opts...)
	}
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets the liveness endpoint path. Default: "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets the readiness endpoint path. Default: "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
//
// Example:
//
//	craft.WithReadinessCheck("db", db.Healthcheck(conn))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if fn != nil {
			c.checks[name] = fn
		}
	}
}

// WithHealthChecks serves liveness and readiness endpoints. They are answered
// before route matching and ignore the base path.
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			checks:        make(health.Checks),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}
