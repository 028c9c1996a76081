package internal

import (
	"encoding/json"
	"log/slog"
	"maps"
	"net/http"
	"strconv"
)

// apiCodeKey is the result key whose value becomes the response status.
const apiCodeKey = "code"

// invalidAPIRoute is the body of an API route whose handler returned nothing.
var invalidAPIRoute = map[string]any{"error": "Invalid API route"}

// statusCoder is implemented by results that carry their own status.
type statusCoder interface {
	StatusCode() int
}

func (a *App) dispatchAPI(c *requestContext, m Match) {
	c.bind(m)

	if res := runPipeline(c, m.route.middleware); res != nil {
		switch v := res.(type) {
		case error:
			a.writeAPIError(c, v)
		default:
			if isBlocked(v) {
				a.logBlocked(c)
				a.writeAPI(c, http.StatusBadRequest, false)
				return
			}
			status, body := apiPayload(v, http.StatusBadRequest, false)
			a.writeAPI(c, status, body)
		}
		return
	}

	res, err := m.route.call(c)
	if err != nil {
		a.writeAPIError(c, err)
		return
	}
	if c.Written() {
		return
	}
	if res == nil {
		a.writeAPI(c, http.StatusNotFound, invalidAPIRoute)
		return
	}

	status, body := apiPayload(res, http.StatusOK, true)
	if c.status != 0 && status == http.StatusOK {
		status = c.status
	}
	a.writeAPI(c, status, body)
}

// apiPayload derives the response status and body of an API result.
// A map with a "code" key uses it as the status; strip removes the key from a
// copy of the map.
func apiPayload(v any, def int, strip bool) (int, any) {
	switch val := v.(type) {
	case map[string]any:
		raw, ok := val[apiCodeKey]
		if !ok {
			return def, val
		}
		code, ok := statusFromValue(raw)
		if !ok {
			return def, val
		}
		if !strip {
			return code, val
		}
		out := maps.Clone(val)
		delete(out, apiCodeKey)
		return code, out
	case statusCoder:
		if code := val.StatusCode(); validStatus(code) {
			return code, v
		}
	}
	return def, v
}

func statusFromValue(v any) (int, bool) {
	var code int
	switch n := v.(type) {
	case int:
		code = n
	case int64:
		code = int(n)
	case int32:
		code = int(n)
	case float64:
		code = int(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		code = int(i)
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		code = i
	default:
		return 0, false
	}
	return code, validStatus(code)
}

func validStatus(code int) bool {
	return code >= 100 && code <= 599
}

// writeAPI encodes body as JSON without escaping HTML or Unicode.
func (a *App) writeAPI(c *requestContext, status int, body any) {
	if c.Written() {
		return
	}
	if err := c.JSON(status, body); err != nil {
		a.logger.ErrorContext(c.Context(), "encode api response", slog.String("error", err.Error()))
	}
}

// writeAPIError answers a failed API call with {"error": message}. Outside
// debug mode server errors carry only the status text.
func (a *App) writeAPIError(c *requestContext, err error) {
	a.logError(c, err)

	status := errorStatus(err)
	msg := http.StatusText(status)
	if he := AsHTTPError(err); he != nil && (status < http.StatusInternalServerError || a.debug) {
		msg = he.Error()
	} else if a.debug {
		msg = err.Error()
	}

	body := map[string]any{"error": msg}
	if a.debug {
		if he := AsHTTPError(err); he != nil && he.Detail != "" {
			body["detail"] = he.Detail
		}
	}
	a.writeAPI(c, status, body)
}
