package craft

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/datahihi1/craft-mini/internal"
	"github.com/datahihi1/craft-mini/middlewares"
	"github.com/datahihi1/craft-mini/pkg/cookie"
	"github.com/datahihi1/craft-mini/pkg/health"
	"github.com/datahihi1/craft-mini/pkg/logger"
	"github.com/datahihi1/craft-mini/pkg/session"
)

// Type aliases - public API
type (
	// App owns the compiled route table, the outer mux and the server lifecycle.
	App = internal.App

	// Router declares routes, groups and names. It is compiled once by New.
	Router = internal.Router

	// APIRouter declares routes in the /api route space.
	APIRouter = internal.APIRouter

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Request is the parsed routing view of an inbound request.
	Request = internal.Request

	// Component is a renderable template, compatible with templ.Component.
	Component = internal.Component

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerRef references the code a route runs: RouteFunc, HandlerFunc,
	// Func or Method.
	HandlerRef = internal.HandlerRef

	// HandlerFunc is a route handler that writes the response itself.
	HandlerFunc = internal.HandlerFunc

	// RouteFunc is a route handler that returns the response value.
	RouteFunc = internal.RouteFunc

	// Middleware wraps every request before routing.
	Middleware = internal.Middleware

	// RouteMiddleware runs before a route handler and may short-circuit it.
	RouteMiddleware = internal.RouteMiddleware

	// MiddlewareRef references route middleware: a RouteMiddleware or Named.
	MiddlewareRef = internal.MiddlewareRef

	// ErrorHandler renders errors of standard routes.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// RouteInfo describes a compiled route.
	RouteInfo = internal.RouteInfo

	// Report is the result of App.SmokeTest.
	Report = internal.Report

	// SmokeResult is the outcome for one route in a Report.
	SmokeResult = internal.SmokeResult

	// SmokeOption configures App.SmokeTest.
	SmokeOption = internal.SmokeOption

	// HTTPError is an error that carries an HTTP status.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// RouteError is a routing or dispatch failure.
	RouteError = internal.RouteError

	// ErrorKind classifies a RouteError.
	ErrorKind = internal.ErrorKind

	// ResponseWriter records the status and size of a response.
	ResponseWriter = internal.ResponseWriter

	// ContextExtractor adds request-scoped attributes to log records.
	ContextExtractor = logger.ContextExtractor

	// CookieOption configures the cookie manager.
	CookieOption = cookie.Option

	// SessionOption configures server-side sessions.
	SessionOption = internal.SessionOption

	// Session is a server-side session.
	Session = session.Session

	// SessionStore persists sessions.
	SessionStore = session.Store
)

// Route error kinds.
const (
	KindNotFound          = internal.KindNotFound
	KindMethodNotAllowed  = internal.KindMethodNotAllowed
	KindMissingParameter  = internal.KindMissingParameter
	KindHandlerResolution = internal.KindHandlerResolution
	KindInvalidHandler    = internal.KindInvalidHandler
	KindMiddlewareBlocked = internal.KindMiddlewareBlocked
)

// Smoke test verdicts.
const (
	SmokePass = internal.SmokePass
	SmokeFail = internal.SmokeFail
)

// Blocked stops the route pipeline when returned by route middleware.
var Blocked = internal.Blocked

// New builds the application. See internal.New.
func New(opts ...Option) (*App, error) {
	return internal.New(opts...)
}

// NewRouter returns an empty route builder.
func NewRouter() *Router {
	return internal.NewRouter()
}

// Func adapts a plain function whose parameters are path parameters.
//
// Example:
//
//	r.Get("/hello/{name}", craft.Func(func(name string) string {
//	    return "Hello, " + name
//	}))
func Func(fn any) HandlerRef {
	return internal.Func(fn)
}

// Method references an exported method of a controller registered with
// WithController.
func Method(controller, method string) HandlerRef {
	return internal.Method(controller, method)
}

// Named references route middleware registered with WithNamedMiddleware.
func Named(name string) MiddlewareRef {
	return internal.Named(name)
}

// NewRequest parses r the way the router does.
func NewRequest(r *http.Request, basePath string, override bool) *Request {
	return internal.NewRequest(r, basePath, override)
}

// Application options.

func WithRoutes(fn ...func(r *Router)) Option {
	return internal.WithRoutes(fn...)
}

func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

func WithController(name string, controller any) Option {
	return internal.WithController(name, controller)
}

func WithNamedMiddleware(name string, mw RouteMiddleware) Option {
	return internal.WithNamedMiddleware(name, mw)
}

func WithRouteMiddleware(mw ...MiddlewareRef) Option {
	return internal.WithRouteMiddleware(mw...)
}

func WithAPIMiddleware(mw ...MiddlewareRef) Option {
	return internal.WithAPIMiddleware(mw...)
}

func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

func WithStrictRoutes() Option {
	return internal.WithStrictRoutes()
}

func WithBasePath(p string) Option {
	return internal.WithBasePath(p)
}

func WithDebug(debug bool) Option {
	return internal.WithDebug(debug)
}

func WithMethodOverride(enabled bool) Option {
	return internal.WithMethodOverride(enabled)
}

func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

func WithCookieOptions(opts ...CookieOption) Option {
	return internal.WithCookieOptions(opts...)
}

func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// Health check options.

func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Session options.

func WithSession(store SessionStore, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

func WithSessionCookieName(name string) SessionOption {
	return internal.WithSessionCookieName(name)
}

func WithSessionTTL(ttl time.Duration) SessionOption {
	return internal.WithSessionTTL(ttl)
}

func WithSessionSecret(secret string) SessionOption {
	return internal.WithSessionSecret(secret)
}

func WithSessionDomain(domain string) SessionOption {
	return internal.WithSessionDomain(domain)
}

func WithSessionPath(path string) SessionOption {
	return internal.WithSessionPath(path)
}

func WithSessionSecure(secure bool) SessionOption {
	return internal.WithSessionSecure(secure)
}

func WithSessionSameSite(sameSite http.SameSite) SessionOption {
	return internal.WithSessionSameSite(sameSite)
}

// Cookie options.

func WithCookieSecret(secret string) CookieOption {
	return cookie.WithSecret(secret)
}

func WithCookieDomain(domain string) CookieOption {
	return cookie.WithDomain(domain)
}

func WithCookiePath(path string) CookieOption {
	return cookie.WithPath(path)
}

func WithCookieSecure(secure bool) CookieOption {
	return cookie.WithSecure(secure)
}

func WithCookieHTTPOnly(httpOnly bool) CookieOption {
	return cookie.WithHTTPOnly(httpOnly)
}

func WithCookieSameSite(ss http.SameSite) CookieOption {
	return cookie.WithSameSite(ss)
}

// Run options.

func Address(addr string) RunOption {
	return internal.Address(addr)
}

func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Smoke test options.

func WithBodyHeuristic() SmokeOption {
	return internal.WithBodyHeuristic()
}

func WithOutputLimit(n int) SmokeOption {
	return internal.WithOutputLimit(n)
}

// Errors.

func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

func WithDetail(detail string) HTTPErrorOption {
	return internal.WithDetail(detail)
}

func WithErrorCode(code string) HTTPErrorOption {
	return internal.WithErrorCode(code)
}

func WithRequestID(id string) HTTPErrorOption {
	return internal.WithRequestID(id)
}

func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnprocessable(message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrServiceUnavailable(message, opts...)
}

func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

func IsRouteError(err error, kind ErrorKind) bool {
	return internal.IsRouteError(err, kind)
}

func AsRouteError(err error) (*RouteError, bool) {
	return internal.AsRouteError(err)
}

// Route compilation errors.
var (
	ErrRouterFrozen      = internal.ErrRouterFrozen
	ErrUnbalancedGroup   = internal.ErrUnbalancedGroup
	ErrUnknownMiddleware = internal.ErrUnknownMiddleware
	ErrDuplicateRoute    = internal.ErrDuplicateRoute
	ErrDuplicateName     = internal.ErrDuplicateName
)

// ErrBodyTooLarge is reported by Request.BodyErr for oversized JSON bodies.
var ErrBodyTooLarge = internal.ErrBodyTooLarge

var (
	ErrCookieNotFound       = cookie.ErrNotFound
	ErrCookieNoSecret       = cookie.ErrNoSecret
	ErrCookieBadSig         = cookie.ErrBadSig
	ErrSessionNotConfigured = session.ErrNotConfigured
	ErrSessionNotFound      = session.ErrNotFound
	ErrSessionExpired       = session.ErrExpired
)

// Helpers.

// RequestIDExtractor adds "request_id" from middlewares.RequestID to logs.
func RequestIDExtractor() ContextExtractor {
	return middlewares.RequestIDExtractor()
}

func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Param returns the i-th path parameter converted to T, or the zero value.
func Param[T internal.Scalar](c Context, i int) T {
	return internal.Param[T](c, i)
}

func Query[T internal.Scalar](c Context, name string) T {
	return internal.Query[T](c, name)
}

func QueryDefault[T internal.Scalar](c Context, name string, defaultValue T) T {
	return internal.QueryDefault[T](c, name, defaultValue)
}

// Input returns the body value (then the query value) for key converted to
// T, or defaultValue.
func Input[T internal.Scalar](c Context, key string, defaultValue T) T {
	return internal.Input[T](c, key, defaultValue)
}
