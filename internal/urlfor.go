package internal

import (
	"net/http"
	"net/url"
	"strings"
)

// buildPath fills the placeholders of template with path-escaped params.
func buildPath(template string, params []string) string {
	return collapseSlashes(fillTemplate(template, params, url.PathEscape))
}

// joinBasePath prefixes p with the app base path.
func joinBasePath(base, p string) string {
	base = strings.TrimRight(base, "/")
	if base == "" {
		return p
	}
	return collapseSlashes(base + "/" + strings.TrimLeft(p, "/"))
}

// absoluteURL builds scheme://host/base/p for the current request.
func absoluteURL(r *http.Request, basePath, p string) string {
	return requestScheme(r) + "://" + r.Host + joinBasePath(basePath, p)
}

// requestScheme honours X-Forwarded-Proto set by a reverse proxy.
func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		proto, _, _ = strings.Cut(proto, ",")
		return strings.ToLower(strings.TrimSpace(proto))
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func collapseSlashes(p string) string {
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}
