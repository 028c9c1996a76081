package internal

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Router configuration errors returned by Compile.
var (
	ErrRouterFrozen      = errors.New("router: routes already compiled")
	ErrUnbalancedGroup   = errors.New("router: group opened without matching Action")
	ErrUnknownMiddleware = errors.New("router: unknown named middleware")
	ErrDuplicateRoute    = errors.New("router: duplicate route")
	ErrDuplicateName     = errors.New("router: duplicate route name")
)

// ErrBodyTooLarge is reported by Request.BodyErr for JSON bodies over 10 MiB.
// The dispatcher answers such requests with 413.
var ErrBodyTooLarge = errors.New("request: body too large")

// HTTPError represents an HTTP error with all data needed for rendering.
// Error handlers use it to pick the status code and the user-facing message.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Message is the user-facing error message.
	Message string

	// Detail is an optional extended description, shown only in debug mode.
	Detail string

	// ErrorCode is an application-specific error code for API clients.
	ErrorCode string

	// RequestID is the request tracking ID.
	RequestID string

	// Code is the HTTP status code (e.g., 404, 500).
	Code int
}

func (e *HTTPError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{
		Code:    code,
		Message: message,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithDetail(detail string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Detail = detail
	}
}

func WithErrorCode(code string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.ErrorCode = code
	}
}

func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.RequestID = id
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// Convenience constructors for common HTTP errors.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnprocessableEntity, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusServiceUnavailable, message, opts...)
}

// AsHTTPError extracts the HTTPError from an error chain if present.
// Returns nil if the chain holds no HTTPError.
func AsHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var re *RouteError
	if errors.As(err, &re) {
		return re.HTTPError
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// ErrorKind classifies routing and dispatch failures.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindMethodNotAllowed
	KindMissingParameter
	KindHandlerResolution
	KindInvalidHandler
	KindMiddlewareBlocked
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	case KindMissingParameter:
		return "missing_parameter"
	case KindHandlerResolution:
		return "handler_resolution"
	case KindInvalidHandler:
		return "invalid_handler"
	case KindMiddlewareBlocked:
		return "middleware_blocked"
	default:
		return "unknown"
	}
}

// RouteError is a routing or dispatch failure with the request context that
// produced it. It embeds the HTTPError an error handler renders.
type RouteError struct {
	*HTTPError
	Method   string
	Path     string
	Template string
	Allowed  []string
	Kind     ErrorKind
}

func (e *RouteError) Error() string {
	return e.HTTPError.Error()
}

func (e *RouteError) Unwrap() error {
	return e.HTTPError
}

// AllowHeader returns the value for the Allow response header.
func (e *RouteError) AllowHeader() string {
	return strings.Join(e.Allowed, ", ")
}

func newNotFoundError(method, path string) *RouteError {
	return &RouteError{
		HTTPError: NewHTTPError(http.StatusNotFound, "Not Found",
			WithDetail(fmt.Sprintf("no route matches %s %s", method, path))),
		Kind:   KindNotFound,
		Method: method,
		Path:   path,
	}
}

func newMethodNotAllowedError(method, path string, allowed []string) *RouteError {
	return &RouteError{
		HTTPError: NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed",
			WithDetail(fmt.Sprintf("method %s is not allowed for %s; allowed: %s",
				method, path, strings.Join(allowed, ", ")))),
		Kind:    KindMethodNotAllowed,
		Method:  method,
		Path:    path,
		Allowed: allowed,
	}
}

func newMissingParameterError(method, path, template string) *RouteError {
	return &RouteError{
		HTTPError: NewHTTPError(http.StatusBadRequest, "Bad Request",
			WithDetail(fmt.Sprintf("missing required parameter for route %s (requested %s)", template, path))),
		Kind:     KindMissingParameter,
		Method:   method,
		Path:     path,
		Template: template,
	}
}

func newHandlerError(kind ErrorKind, template string, cause error) *RouteError {
	return &RouteError{
		HTTPError: NewHTTPError(http.StatusInternalServerError, "Internal Server Error",
			WithError(cause),
			WithDetail(fmt.Sprintf("route %s: %v", template, cause))),
		Kind:     kind,
		Template: template,
	}
}

// IsRouteError reports whether err carries a RouteError of the given kind.
func IsRouteError(err error, kind ErrorKind) bool {
	re, ok := AsRouteError(err)
	return ok && re.Kind == kind
}

// AsRouteError extracts the RouteError from an error chain.
func AsRouteError(err error) (*RouteError, bool) {
	var re *RouteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
