package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/datahihi1/craft-mini/pkg/cookie"
	"github.com/datahihi1/craft-mini/pkg/health"
	"github.com/datahihi1/craft-mini/pkg/logger"
)

// Default server timeouts.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App owns the compiled route table, the outer mux and the server lifecycle.
// It is immutable after New returns.
type App struct {
	mux            chi.Router
	table          *RouteTable
	errorHandler   ErrorHandler
	healthConfig   *healthConfig
	logger         *slog.Logger
	cookieManager  *cookie.Manager
	sessionManager *SessionManager
	controllers    map[string]any
	named          map[string]RouteMiddleware
	basePath       string
	global         []MiddlewareRef
	globalAPI      []MiddlewareRef
	middlewares    []Middleware
	handlers       []Handler
	routeFuncs     []func(r *Router)
	staticRoutes   []staticRoute
	optErrs        []error
	debug          bool
	methodOverride bool
	strict         bool
}

// staticRoute is a static file handler mount point.
type staticRoute struct {
	handler http.Handler
	pattern string
}

// New builds the application: it collects route declarations, compiles them
// and wires the outer mux.
// Compilation fails on unknown named middleware, unbalanced groups and, with
// WithStrictRoutes, on duplicate routes or names.
//
// Example:
//
//	app, err := craft.New(
//	    craft.WithDebug(cfg.Debug),
//	    craft.WithController("home", &HomeController{}),
//	    craft.WithRoutes(func(r *craft.Router) {
//	        r.Get("/", craft.Method("home", "Index")).Name("home")
//	    }),
//	)
func New(opts ...Option) (*App, error) {
	a := &App{
		mux:            chi.NewRouter(),
		logger:         logger.NewNope(),
		cookieManager:  cookie.New(),
		controllers:    make(map[string]any),
		named:          make(map[string]RouteMiddleware),
		methodOverride: true,
	}

	for _, opt := range opts {
		opt(a)
	}
	if err := errors.Join(a.optErrs...); err != nil {
		return nil, err
	}

	router := NewRouter()
	router.SetLogger(a.logger)
	router.Strict(a.strict)
	for _, h := range a.handlers {
		h.Routes(router)
	}
	for _, fn := range a.routeFuncs {
		fn(router)
	}

	table, err := router.Compile(CompileConfig{
		Controllers: a.controllers,
		Named:       a.named,
		Global:      a.global,
		GlobalAPI:   a.globalAPI,
	})
	if err != nil {
		return nil, err
	}
	a.table = table

	a.setupMux()
	return a, nil
}

// Routes returns the compiled routes in dispatch order.
func (a *App) Routes() []RouteInfo {
	return a.table.Routes()
}

// Path returns the base-path-qualified path of a named route.
func (a *App) Path(name string, params ...string) (string, bool) {
	p, ok := a.table.Path(name, params...)
	if !ok {
		return "", false
	}
	return joinBasePath(a.basePath, p), true
}

// Debug reports whether diagnostic error pages are enabled.
func (a *App) Debug() bool {
	return a.debug
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Run starts the HTTP server on addr and blocks until an interrupt signal or
// a server error.
//
// Example:
//
//	err := app.Run(":8080", craft.ShutdownHook(db.Shutdown(conn)))
func (a *App) Run(addr string, opts ...RunOption) error {
	return a.serve(addr, buildRunConfig(opts...))
}

// setupMux mounts global middleware, static files and health endpoints on the
// outer mux and sends everything else to the route table.
func (a *App) setupMux() {
	for _, mw := range a.middlewares {
		a.mux.Use(a.adaptMiddleware(mw))
	}

	for _, sr := range a.staticRoutes {
		prefix := strings.TrimRight(joinBasePath(a.basePath, sr.pattern), "/")
		a.mux.Mount(prefix, http.StripPrefix(prefix, sr.handler))
	}

	if a.healthConfig != nil {
		opts := []health.Option{health.WithLogger(a.logger)}
		a.mux.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.mux.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks, opts...))
	}

	routes := http.HandlerFunc(a.serveRoutes)
	a.mux.Handle("/", routes)
	a.mux.Handle("/*", routes)
	a.mux.NotFound(routes)
	a.mux.MethodNotAllowed(routes)
}

// adaptMiddleware converts a Middleware into the func(http.Handler) http.Handler
// form used by the outer mux. The inner handler receives the request carried by
// the Context, so values stored with Set reach the route handler.
func (a *App) adaptMiddleware(mw Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := newContext(w, r, a)
			h := mw(func(c Context) error {
				next.ServeHTTP(c.Response(), c.Request())
				return nil
			})
			if err := h(c); err != nil {
				a.handleError(c, err)
			}
		})
	}
}

// CheckHealth runs the configured readiness checks once.
// Without WithHealthChecks it reports healthy.
func (a *App) CheckHealth(ctx context.Context) *health.Response {
	if a.healthConfig == nil {
		return health.Run(ctx, nil)
	}
	return health.Run(ctx, a.healthConfig.checks, health.WithLogger(a.logger))
}
