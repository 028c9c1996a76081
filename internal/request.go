package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	maxJSONBodyBytes   = 10 << 20 // 10MB
	maxMultipartMemory = 32 << 20 // 32MB
	methodOverrideKey  = "_method"
)

// Request is the routing view of an inbound HTTP request.
// It is built once per request and not modified afterwards.
type Request struct {
	Query   url.Values
	Body    map[string]any
	Headers http.Header
	raw     *http.Request
	bodyErr error
	Method  string
	Path    string
}

// NewRequest reads method, normalized path, query, body and headers from r.
// A JSON body is decoded when the Content-Type says so; otherwise form values
// are used. A body that cannot be read or decoded leaves Body empty and is
// reported by BodyErr. POST requests carrying a "_method" field of PUT or DELETE are
// treated as that method when override is true.
func NewRequest(r *http.Request, basePath string, override bool) *Request {
	body, err := readBody(r)
	req := &Request{
		Method:  r.Method,
		Path:    normalizeRequestPath(r.URL.Path, basePath),
		Query:   r.URL.Query(),
		Headers: r.Header,
		Body:    body,
		bodyErr: err,
		raw:     r,
	}

	if override && req.Method == http.MethodPost {
		if m, ok := req.Body[methodOverrideKey].(string); ok {
			switch strings.ToUpper(m) {
			case http.MethodPut, http.MethodDelete:
				req.Method = strings.ToUpper(m)
			}
		}
	}
	return req
}

// Raw returns the underlying *http.Request.
func (r *Request) Raw() *http.Request {
	return r.raw
}

// BodyErr returns why the body was not decoded, or nil. Oversized JSON
// bodies report ErrBodyTooLarge.
func (r *Request) BodyErr() error {
	return r.bodyErr
}

// Input returns a body value, then a query value, then def.
func (r *Request) Input(key string, def any) any {
	if v, ok := r.Body[key]; ok {
		return v
	}
	if r.Query.Has(key) {
		return r.Query.Get(key)
	}
	return def
}

// String returns Input(key) as a string. JSON numbers and booleans are
// formatted; missing keys and composite values give "".
func (r *Request) String(key string) string {
	switch v := r.Input(key, "").(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// All returns query and body values merged, body values taking precedence.
func (r *Request) All() map[string]any {
	out := make(map[string]any, len(r.Query)+len(r.Body))
	for k := range r.Query {
		out[k] = r.Query.Get(k)
	}
	maps.Copy(out, r.Body)
	return out
}

// IsJSON reports whether the request body is JSON.
func (r *Request) IsJSON() bool {
	return isJSONContent(r.Headers.Get("Content-Type"))
}

func isJSONContent(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "json")
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// readBody decodes the request body without consuming it for later readers.
func readBody(r *http.Request) (map[string]any, error) {
	body := make(map[string]any)
	if r.Body == nil || r.Body == http.NoBody {
		return body, nil
	}

	contentType := r.Header.Get("Content-Type")
	if isJSONContent(contentType) {
		return body, readJSONBody(r, &body)
	}

	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return body, nil
	}

	var err error
	if strings.HasPrefix(contentType, "multipart/form-data") {
		err = r.ParseMultipartForm(maxMultipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return body, fmt.Errorf("request: parse form: %w", err)
	}
	for k, v := range r.PostForm {
		if len(v) == 1 {
			body[k] = v[0]
		} else {
			body[k] = v
		}
	}
	return body, nil
}

// readJSONBody reads up to maxJSONBodyBytes and decodes a JSON object into
// body. The bytes read are put back in front of the unread rest.
func readJSONBody(r *http.Request, body *map[string]any) error {
	orig := r.Body
	data, err := io.ReadAll(io.LimitReader(orig, maxJSONBodyBytes+1))
	if err != nil {
		r.Body = io.NopCloser(bytes.NewReader(data))
		_ = orig.Close()
		return fmt.Errorf("request: read body: %w", err)
	}

	if len(data) > maxJSONBodyBytes {
		r.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(data), orig), orig}
		return ErrBodyTooLarge
	}

	_ = orig.Close()
	r.Body = io.NopCloser(bytes.NewReader(data))
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, body); err != nil {
		clear(*body)
		return fmt.Errorf("request: decode json body: %w", err)
	}
	return nil
}
