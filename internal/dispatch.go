package internal

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// serveRoutes resolves the request against the compiled route table and
// dispatches it. It is mounted on the outer mux as the catch-all handler.
func (a *App) serveRoutes(w http.ResponseWriter, r *http.Request) {
	c := newContext(w, r, a)
	in := c.Input()
	m := a.table.Match(in.Method, in.Path)

	if err := in.BodyErr(); err != nil {
		if errors.Is(err, ErrBodyTooLarge) {
			tooLarge := NewHTTPError(http.StatusRequestEntityTooLarge, "Request body too large", WithError(err))
			if m.Kind == MatchAPI {
				a.writeAPIError(c, tooLarge)
			} else {
				a.handleError(c, tooLarge)
			}
			return
		}
		c.LogDebug("request body ignored", slog.String("error", err.Error()))
	}

	switch m.Kind {
	case MatchStandard:
		a.dispatchStandard(c, m)
	case MatchAPI:
		a.dispatchAPI(c, m)
	case MatchMethodNotAllowed:
		a.handleError(c, newMethodNotAllowedError(in.Method, in.Path, m.Allowed))
	case MatchMissingParameter:
		a.handleError(c, newMissingParameterError(in.Method, in.Path, m.Template))
	default:
		a.handleError(c, newNotFoundError(in.Method, in.Path))
	}
}

// bind attaches the match to the context.
func (c *requestContext) bind(m Match) {
	c.params = m.Params
	c.template = m.Template
}

func (a *App) dispatchStandard(c *requestContext, m Match) {
	c.bind(m)

	if res := runPipeline(c, m.route.middleware); res != nil {
		switch v := res.(type) {
		case error:
			a.handleError(c, v)
		default:
			if isBlocked(v) {
				a.logBlocked(c)
				a.writeResult(c, nil)
				return
			}
			a.writeResult(c, v)
		}
		return
	}

	res, err := m.route.call(c)
	if err != nil {
		a.handleError(c, err)
		return
	}
	a.writeResult(c, res)
}

// writeResult echoes a handler result as the response body.
// Nothing is written when the handler already produced a response.
func (a *App) writeResult(c *requestContext, v any) {
	if c.Written() {
		return
	}

	status := c.status
	if status == 0 {
		status = http.StatusOK
	}

	var body []byte
	switch val := v.(type) {
	case nil:
	case Component:
		var buf bytes.Buffer
		if err := val.Render(c.Context(), &buf); err != nil {
			a.handleError(c, err)
			return
		}
		body = buf.Bytes()
	case string:
		body = []byte(val)
	case []byte:
		body = val
	case fmt.Stringer:
		body = []byte(val.String())
	default:
		body = []byte(fmt.Sprint(val))
	}

	h := c.response.Header()
	if len(body) > 0 && h.Get("Content-Type") == "" {
		h.Set("Content-Type", "text/html; charset=utf-8")
	}
	c.response.WriteHeader(status)
	if len(body) > 0 {
		if _, err := c.response.Write(body); err != nil {
			c.LogDebug("write response body", slog.String("error", err.Error()))
		}
	}
}

func (a *App) logBlocked(c *requestContext) {
	a.logger.DebugContext(c.Context(), "request blocked by middleware",
		slog.String("method", c.Input().Method),
		slog.String("path", c.Input().Path),
		slog.String("route", c.template),
	)
}

// handleError renders err through the configured error handler.
// The Allow header of a 405 is set before the handler runs.
func (a *App) handleError(c *requestContext, err error) {
	if re, ok := AsRouteError(err); ok && re.Kind == KindMethodNotAllowed {
		c.SetHeader("Allow", re.AllowHeader())
	}
	a.logError(c, err)

	if c.Written() {
		return
	}
	if a.errorHandler != nil {
		if herr := a.errorHandler(c, err); herr != nil {
			a.logger.ErrorContext(c.Context(), "error handler failed", slog.String("error", herr.Error()))
		}
		return
	}
	_ = a.defaultErrorHandler(c, err)
}

func (a *App) logError(c *requestContext, err error) {
	status := errorStatus(err)
	attrs := []any{
		slog.String("method", c.request.Method),
		slog.String("path", c.request.URL.Path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
	}
	if re, ok := AsRouteError(err); ok {
		attrs = append(attrs, slog.String("kind", re.Kind.String()))
	}
	if status >= http.StatusInternalServerError {
		a.logger.ErrorContext(c.Context(), "request failed", attrs...)
		return
	}
	a.logger.DebugContext(c.Context(), "request rejected", attrs...)
}

// defaultErrorHandler writes a plain text error page. In debug mode the body
// carries the diagnostic detail; otherwise only the status text.
func (a *App) defaultErrorHandler(c Context, err error) error {
	status := errorStatus(err)
	body := http.StatusText(status)
	if a.debug {
		body = errorDetail(err)
	}
	return c.String(status, body)
}

// errorStatus returns the HTTP status carried by err, or 500.
func errorStatus(err error) int {
	if he := AsHTTPError(err); he != nil && he.Code != 0 {
		return he.Code
	}
	var sc statusCoder
	if errors.As(err, &sc) && validStatus(sc.StatusCode()) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

// errorDetail returns the developer-facing description of err.
func errorDetail(err error) string {
	he := AsHTTPError(err)
	switch {
	case he == nil:
		return err.Error()
	case he.Detail != "":
		return fmt.Sprintf("%d %s: %s", he.Code, he.Error(), he.Detail)
	default:
		return fmt.Sprintf("%d %s", he.Code, err.Error())
	}
}
