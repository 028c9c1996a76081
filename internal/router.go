package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/datahihi1/craft-mini/pkg/logger"
)

// groupScope is the registration context of one group level.
type groupScope struct {
	prefix     string
	name       string
	namePrefix string
	middleware []MiddlewareRef
}

// routeKey identifies a registered route for naming.
type routeKey struct {
	method   string
	template string
	api      bool
}

// Router collects route declarations and compiles them into an immutable table.
// It is a builder: use it during startup from a single goroutine, then call
// Compile (App does this in New). After compilation every registration call
// records ErrRouterFrozen.
//
// Example:
//
//	r.Group("/admin").Middleware(craft.Named("auth")).Name("admin.").Action(func(r *craft.Router) {
//	    r.Get("/users", craft.Method("admin", "Users"))
//	})
//	r.Get("/", craft.Method("home", "Index")).Name("home")
//	r.API().Get("/users/{id}", craft.Func(showUser))
type Router struct {
	routes  *routeSet
	api     *routeSet
	names   map[string]routeKey
	last    *routeKey
	scope   groupScope
	stack   []groupScope
	logger  *slog.Logger
	errs    []error
	strict  bool
	applied bool
	mu      sync.Mutex
}

// NewRouter creates an empty route builder.
func NewRouter() *Router {
	return &Router{
		routes: newRouteSet(),
		api:    newRouteSet(),
		names:  make(map[string]routeKey),
		logger: logger.NewNope(),
	}
}

// SetLogger sets the logger used for registration warnings.
func (r *Router) SetLogger(l *slog.Logger) {
	if l != nil {
		r.logger = l
	}
}

// Strict makes duplicate routes and duplicate names fail compilation
// instead of the later declaration silently winning.
func (r *Router) Strict(strict bool) {
	r.strict = strict
}

// Get registers a standard GET route.
func (r *Router) Get(path string, h HandlerRef, mw ...MiddlewareRef) *Router {
	return r.Add(http.MethodGet, path, h, mw...)
}

// Post registers a standard POST route.
func (r *Router) Post(path string, h HandlerRef, mw ...MiddlewareRef) *Router {
	return r.Add(http.MethodPost, path, h, mw...)
}

// Put registers a standard PUT route.
func (r *Router) Put(path string, h HandlerRef, mw ...MiddlewareRef) *Router {
	return r.Add(http.MethodPut, path, h, mw...)
}

// Delete registers a standard DELETE route.
func (r *Router) Delete(path string, h HandlerRef, mw ...MiddlewareRef) *Router {
	return r.Add(http.MethodDelete, path, h, mw...)
}

// Add registers a standard route for method.
// Inside a group the group prefix and middleware apply, and routes are
// auto-named when the group has a name.
func (r *Router) Add(method, path string, h HandlerRef, mw ...MiddlewareRef) *Router {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.checkMethod(method) {
		return r
	}

	template := path
	middleware := mw
	if len(r.stack) > 0 {
		template = joinGroupPath(r.scope.prefix, path)
		middleware = append(append([]MiddlewareRef{}, r.scope.middleware...), mw...)
		if r.scope.name != "" {
			r.setName(autoRouteName(r.scope.name, path), routeKey{method: method, template: template})
		}
	}

	r.store(r.routes, &route{method: method, template: template, handler: h, middleware: middleware})
	return r
}

// API returns a registrar for the API route space.
func (r *Router) API() *APIRouter {
	return &APIRouter{r: r}
}

// Group opens a nested scope with the given path prefix.
// The scope lasts until Action is called.
func (r *Router) Group(prefix string) *Router {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.checkOpen() {
		return r
	}

	r.stack = append(r.stack, r.scope)
	r.scope = groupScope{prefix: joinGroupPath(r.scope.prefix, prefix)}
	r.last = nil
	return r
}

// Middleware replaces the middleware list of the current group.
// Only routes registered after the call receive it.
func (r *Router) Middleware(mw ...MiddlewareRef) *Router {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scope.middleware = mw
	return r
}

// NamePrefix sets a prefix prepended to subsequent Name calls.
func (r *Router) NamePrefix(prefix string) *Router {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scope.namePrefix = prefix
	return r
}

// Name names the route registered just before the call.
// Called right after Group it sets the group name used to auto-name routes.
func (r *Router) Name(name string) *Router {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.last != nil {
		r.setName(r.scope.namePrefix+name, *r.last)
		return r
	}
	r.scope.name = r.scope.namePrefix + name
	return r
}

// Action runs fn to register the group's routes and then closes the group scope.
func (r *Router) Action(fn func(r *Router)) *Router {
	if fn != nil {
		fn(r)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.stack) == 0 {
		return r
	}
	r.scope = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	r.last = nil
	return r
}

// Path returns the path of a named route with params substituted in order.
// Returns false if no route has that name.
func (r *Router) Path(name string, params ...string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, ok := r.names[name]
	if !ok {
		return "", false
	}
	return buildPath(key.template, params), true
}

// APIRouter registers routes in the API route space.
// Paths are normalized under /api/ and group settings do not apply.
type APIRouter struct {
	r *Router
}

// Get registers an API GET route.
func (a *APIRouter) Get(path string, h HandlerRef, mw ...MiddlewareRef) *Router {
	return a.Add(http.MethodGet, path, h, mw...)
}

// Post registers an API POST route.
func (a *APIRouter) Post(path string, h HandlerRef, mw ...MiddlewareRef) *Router {
	return a.Add(http.MethodPost, path, h, mw...)
}

// Put registers an API PUT route.
func (a *APIRouter) Put(path string, h HandlerRef, mw ...MiddlewareRef) *Router {
	return a.Add(http.MethodPut, path, h, mw...)
}

// Delete registers an API DELETE route.
func (a *APIRouter) Delete(path string, h HandlerRef, mw ...MiddlewareRef) *Router {
	return a.Add(http.MethodDelete, path, h, mw...)
}

// Add registers an API route for method.
func (a *APIRouter) Add(method, path string, h HandlerRef, mw ...MiddlewareRef) *Router {
	r := a.r
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.checkMethod(method) {
		return r
	}
	r.store(r.api, &route{method: method, template: normalizeAPIPath(path), handler: h, middleware: mw, api: true})
	return r
}

// store must be called with r.mu held.
func (r *Router) store(set *routeSet, rt *route) {
	if !r.checkOpen() {
		return
	}
	if set.put(rt) {
		if r.strict {
			r.errs = append(r.errs, fmt.Errorf("%w: %s %s", ErrDuplicateRoute, rt.method, rt.template))
		} else {
			r.logger.Warn("route redefined, later declaration wins",
				slog.String("method", rt.method),
				slog.String("path", rt.template),
				slog.Bool("api", rt.api),
			)
		}
	}
	r.last = &routeKey{method: rt.method, template: rt.template, api: rt.api}
}

// setName must be called with r.mu held.
func (r *Router) setName(name string, key routeKey) {
	if !r.checkOpen() {
		return
	}
	if prev, exists := r.names[name]; exists && prev != key {
		if r.strict {
			r.errs = append(r.errs, fmt.Errorf("%w: %s", ErrDuplicateName, name))
			return
		}
		r.logger.Warn("route name reassigned",
			slog.String("name", name),
			slog.String("previous", prev.template),
			slog.String("path", key.template),
		)
	}
	r.names[name] = key
}

func (r *Router) checkOpen() bool {
	if r.applied {
		r.errs = append(r.errs, ErrRouterFrozen)
		return false
	}
	return true
}

func (r *Router) checkMethod(method string) bool {
	for _, m := range routeMethods {
		if m == method {
			return true
		}
	}
	r.errs = append(r.errs, fmt.Errorf("router: unsupported method %q", method))
	return false
}

// CompileConfig holds the registries routes are resolved against.
type CompileConfig struct {
	Controllers map[string]any
	Named       map[string]RouteMiddleware
	Global      []MiddlewareRef
	GlobalAPI   []MiddlewareRef
}

// Compile freezes the router and resolves every handler and middleware reference.
// Handler problems do not fail compilation; the affected routes answer 500.
func (r *Router) Compile(cfg CompileConfig) (*RouteTable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	errs := append([]error{}, r.errs...)
	if len(r.stack) > 0 {
		errs = append(errs, fmt.Errorf("%w: %d open", ErrUnbalancedGroup, len(r.stack)))
	}
	if r.applied {
		errs = append(errs, ErrRouterFrozen)
	}
	r.applied = true

	global, err := resolveAll(cfg.Global, cfg.Named)
	if err != nil {
		errs = append(errs, err)
	}
	globalAPI, err := resolveAll(cfg.GlobalAPI, cfg.Named)
	if err != nil {
		errs = append(errs, err)
	}

	t := &RouteTable{
		standard: make(map[string]*methodTable),
		api:      make(map[string]*methodTable),
		names:    make(map[string]routeKey, len(r.names)),
	}
	for name, key := range r.names {
		t.names[name] = key
	}

	build := func(set *routeSet, dst map[string]*methodTable, pre []RouteMiddleware) {
		for _, method := range routeMethods {
			routes := set.byMethod[method]
			if len(routes) == 0 {
				continue
			}
			mt := &methodTable{exact: make(map[string]*compiledRoute, len(routes))}
			for _, rt := range routes {
				cr, err := r.compileRoute(rt, cfg.Controllers, cfg.Named, pre)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				mt.exact[rt.template] = cr
				mt.ordered = append(mt.ordered, cr)
			}
			dst[method] = mt
		}
	}
	build(r.routes, t.standard, global)
	build(r.api, t.api, globalAPI)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	r.logger.Debug("routes compiled",
		slog.Int("standard", t.count(t.standard)),
		slog.Int("api", t.count(t.api)),
		slog.Int("names", len(t.names)),
	)
	return t, nil
}

func (r *Router) compileRoute(rt *route, controllers map[string]any, named map[string]RouteMiddleware, pre []RouteMiddleware) (*compiledRoute, error) {
	mws, err := resolveAll(rt.middleware, named)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", rt.method, rt.template, err)
	}

	params := countPlaceholders(rt.template)
	cr := &compiledRoute{
		pattern:    compilePattern(rt.template),
		method:     rt.method,
		template:   rt.template,
		prefix:     templatePrefix(rt.template),
		middleware: append(append([]RouteMiddleware{}, pre...), mws...),
		params:     params,
		api:        rt.api,
	}

	if rt.handler == nil {
		cr.call = failingHandler(newHandlerError(KindInvalidHandler, rt.template, errNotAFunc))
		return cr, nil
	}
	call, kind, err := rt.handler.resolve(controllers, params)
	if err != nil {
		r.logger.Warn("route handler cannot be resolved",
			slog.String("method", rt.method),
			slog.String("path", rt.template),
			slog.String("handler", rt.handler.String()),
			slog.String("error", err.Error()),
		)
		cr.call = failingHandler(newHandlerError(kind, rt.template, err))
		return cr, nil
	}
	cr.call = call
	return cr, nil
}

func resolveAll(refs []MiddlewareRef, named map[string]RouteMiddleware) ([]RouteMiddleware, error) {
	out := make([]RouteMiddleware, 0, len(refs))
	for _, ref := range refs {
		if ref == nil {
			continue
		}
		mw, err := ref.resolveMiddleware(named)
		if err != nil {
			return nil, err
		}
		out = append(out, mw)
	}
	return out, nil
}

func failingHandler(err *RouteError) RouteFunc {
	return func(c Context) (any, error) {
		e := *err
		e.Method = c.Request().Method
		e.Path = c.Input().Path
		return nil, &e
	}
}
