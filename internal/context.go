package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/datahihi1/craft-mini/pkg/session"
)

// Component is the interface for renderable templates.
// This is compatible with templ.Component.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

// Context provides request/response access and helper methods.
// It embeds context.Context, so it can be passed anywhere a context is expected.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the underlying http.ResponseWriter.
	Response() http.ResponseWriter

	// ResponseWriter returns the response recorder wrapping Response.
	ResponseWriter() *ResponseWriter

	// Context returns the request's context.Context.
	Context() context.Context

	// Input returns the parsed request: method after override, normalized
	// path, query, body and headers.
	Input() *Request

	// Params returns the path parameters in template order.
	Params() []string

	// Param returns the i-th path parameter, or "" if there is none.
	Param(i int) string

	// Route returns the template of the matched route, or "" before routing.
	Route() string

	// Query returns the query parameter value by name.
	Query(name string) string

	// QueryDefault returns the query parameter value or a default.
	QueryDefault(name, defaultValue string) string

	// Form returns the body value by name (JSON or form), as a string.
	Form(name string) string

	// Header returns the request header value by name.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// Status sets the status code used when a returned value is written as the body.
	Status(code int)

	// JSON writes v as JSON with the given status.
	JSON(code int, v any) error

	// String writes a plain text response.
	String(code int, s string) error

	// HTML writes an HTML response.
	HTML(code int, html string) error

	// Render renders a component with the given status code.
	// Compatible with templ.Component.
	Render(code int, component Component) error

	// NoContent writes only the status code.
	NoContent(code int) error

	// Redirect sends a redirect to url.
	Redirect(code int, url string) error

	// Error creates an HTTPError to return from a handler.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Written returns true if the response has been written.
	Written() bool

	// Path returns the path of a named route, or false for an unknown name.
	Path(name string, params ...string) (string, bool)

	// URLFor returns the absolute URL of a named route built from the current
	// request's scheme, host and the app base path. Returns false for an
	// unknown name.
	URLFor(name string, params ...string) (string, bool)

	// IsDebug reports whether the app runs in debug mode.
	IsDebug() bool

	// Logger returns the request-scoped logger.
	Logger() *slog.Logger

	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a value in the request context.
	Set(key, value any)

	// Get retrieves a value from the request context.
	Get(key any) any

	// Cookie returns a cookie value.
	Cookie(name string) (string, error)

	// SetCookie sets a cookie.
	SetCookie(name, value string, maxAge int)

	// DeleteCookie removes a cookie.
	DeleteCookie(name string)

	// Session returns the current session, creating one if needed.
	// Returns session.ErrNotConfigured if WithSession was not used.
	Session() (*session.Session, error)

	// SessionValue returns a session value, nil if it is not set.
	SessionValue(key string) (any, error)

	// SetSessionValue stores a value in the session.
	SetSessionValue(key string, val any) error

	// DeleteSessionValue removes a value from the session.
	DeleteSessionValue(key string) error

	// DestroySession deletes the session and clears its cookie.
	DestroySession() error

	// Flash stores a message readable once, on the next request.
	Flash(key string, value any) error

	// TakeFlash returns and removes a flash message.
	TakeFlash(key string) (any, error)
}

// stateKey is the request context key for per-request state.
type stateKey struct{}

// requestState is shared by every Context created for the same request,
// so wrappers and route handlers see one session and one parsed input.
type requestState struct {
	input                 *Request
	session               *session.Session
	sessionLoaded         bool
	sessionHookRegistered bool
}

// requestContext implements the Context interface.
type requestContext struct {
	response       http.ResponseWriter
	request        *http.Request
	responseWriter *ResponseWriter
	app            *App
	state          *requestState
	params         []string
	template       string
	status         int
}

// newContext creates a context for r, reusing the per-request state and the
// response recorder of outer layers.
func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw := NewResponseWriter(w)

	state, ok := r.Context().Value(stateKey{}).(*requestState)
	if !ok {
		state = &requestState{}
		r = r.WithContext(context.WithValue(r.Context(), stateKey{}, state))
	}

	return &requestContext{
		request:        r,
		response:       rw,
		responseWriter: rw,
		app:            app,
		state:          state,
	}
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) ResponseWriter() *ResponseWriter {
	return c.responseWriter
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Input() *Request {
	if c.state.input == nil {
		c.state.input = NewRequest(c.request, c.app.basePath, c.app.methodOverride)
	}
	return c.state.input
}

func (c *requestContext) Params() []string {
	return c.params
}

func (c *requestContext) Param(i int) string {
	if i < 0 || i >= len(c.params) {
		return ""
	}
	return c.params[i]
}

func (c *requestContext) Route() string {
	return c.template
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	v := c.request.URL.Query().Get(name)
	if v == "" {
		return defaultValue
	}
	return v
}

func (c *requestContext) Form(name string) string {
	return c.Input().String(name)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) Status(code int) {
	c.status = code
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	enc := json.NewEncoder(c.response)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *requestContext) HTML(code int, html string) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(html))
	return err
}

// Render writes nothing when the component fails.
func (c *requestContext) Render(code int, component Component) error {
	var buf bytes.Buffer
	if err := component.Render(c.request.Context(), &buf); err != nil {
		return err
	}
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write(buf.Bytes())
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	http.Redirect(c.response, c.request, url, code)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Written() bool {
	return c.responseWriter.Written()
}

func (c *requestContext) Path(name string, params ...string) (string, bool) {
	if c.app.table == nil {
		return "", false
	}
	p, ok := c.app.table.Path(name, params...)
	if !ok {
		return "", false
	}
	return joinBasePath(c.app.basePath, p), true
}

func (c *requestContext) URLFor(name string, params ...string) (string, bool) {
	if c.app.table == nil {
		return "", false
	}
	p, ok := c.app.table.Path(name, params...)
	if !ok {
		return "", false
	}
	return absoluteURL(c.request, c.app.basePath, p), true
}

func (c *requestContext) IsDebug() bool {
	return c.app.debug
}

func (c *requestContext) Logger() *slog.Logger {
	return c.app.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.app.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.app.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.app.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.app.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Cookie(name string) (string, error) {
	return c.app.cookieManager.Get(c.request, name)
}

func (c *requestContext) SetCookie(name, value string, maxAge int) {
	c.app.cookieManager.Set(c.response, name, value, maxAge)
}

func (c *requestContext) DeleteCookie(name string) {
	c.app.cookieManager.Delete(c.response, name)
}

// registerSessionHook persists a changed session before the response is written.
func (c *requestContext) registerSessionHook() {
	if c.state.sessionHookRegistered {
		return
	}
	c.state.sessionHookRegistered = true
	c.responseWriter.OnBeforeWrite(func() {
		sess := c.state.session
		if sess == nil || !sess.IsDirty() {
			return
		}
		// Best-effort: the response is already on its way.
		if err := c.app.sessionManager.Save(c.Context(), c.response, sess); err != nil {
			c.app.logger.ErrorContext(c.Context(), "failed to save session", slog.String("error", err.Error()))
		}
	})
}

func (c *requestContext) Session() (*session.Session, error) {
	sm := c.app.sessionManager
	if sm == nil {
		return nil, session.ErrNotConfigured
	}

	c.registerSessionHook()

	if c.state.sessionLoaded && c.state.session != nil {
		return c.state.session, nil
	}

	sess, err := sm.Load(c.Context(), c.request)
	if err != nil {
		c.LogDebug("session not restored", slog.String("error", err.Error()))
	}
	if sess == nil {
		sess = sm.New(c.request)
	}

	c.state.session = sess
	c.state.sessionLoaded = true
	return sess, nil
}

func (c *requestContext) SessionValue(key string) (any, error) {
	sess, err := c.Session()
	if err != nil {
		return nil, err
	}
	val, _ := sess.GetValue(key)
	return val, nil
}

func (c *requestContext) SetSessionValue(key string, val any) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	sess.SetValue(key, val)
	return nil
}

func (c *requestContext) DeleteSessionValue(key string) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	sess.DeleteValue(key)
	return nil
}

func (c *requestContext) DestroySession() error {
	sm := c.app.sessionManager
	if sm == nil {
		return session.ErrNotConfigured
	}

	if sess := c.state.session; sess != nil && !sess.IsNew() {
		if err := sm.Store().Delete(c.Context(), sess.Token); err != nil {
			return err
		}
	}
	sm.Clear(c.response)

	c.state.session = nil
	c.state.sessionLoaded = false
	return nil
}

func (c *requestContext) Flash(key string, value any) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	sess.SetFlash(key, value)
	return nil
}

func (c *requestContext) TakeFlash(key string) (any, error) {
	sess, err := c.Session()
	if err != nil {
		return nil, err
	}
	val, _ := sess.TakeFlash(key)
	return val, nil
}
