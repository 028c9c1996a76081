package internal

import (
	"net/http"
	"regexp"
	"strings"
)

// Supported route methods, in the order tables are scanned and reported.
var routeMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}

// placeholderRe matches a {name} template segment.
var placeholderRe = regexp.MustCompile(`\{[^/]+?\}`)

// route is one registered entry of a route table.
type route struct {
	handler    HandlerRef
	method     string
	template   string
	middleware []MiddlewareRef
	api        bool
}

// compiledRoute is a route frozen for matching.
type compiledRoute struct {
	pattern    *regexp.Regexp
	call       RouteFunc
	method     string
	template   string
	prefix     string // template with placeholders removed, right-trimmed of "/"
	middleware []RouteMiddleware
	params     int
	api        bool
}

// routeSet keeps routes per method in registration order.
// Re-registering a template replaces the entry in place.
type routeSet struct {
	byMethod map[string][]*route
	index    map[string]map[string]int
}

func newRouteSet() *routeSet {
	return &routeSet{
		byMethod: make(map[string][]*route),
		index:    make(map[string]map[string]int),
	}
}

// put stores r and reports whether an existing entry was replaced.
func (s *routeSet) put(r *route) bool {
	idx, ok := s.index[r.method]
	if !ok {
		idx = make(map[string]int)
		s.index[r.method] = idx
	}
	if i, exists := idx[r.template]; exists {
		s.byMethod[r.method][i] = r
		return true
	}
	idx[r.template] = len(s.byMethod[r.method])
	s.byMethod[r.method] = append(s.byMethod[r.method], r)
	return false
}

// joinGroupPath joins a group prefix with a route path.
func joinGroupPath(prefix, path string) string {
	p := strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(path, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// normalizeAPIPath makes path start with /api/ exactly once.
func normalizeAPIPath(path string) string {
	trimmed := strings.Trim(path, "/")
	switch {
	case strings.HasPrefix(trimmed, "api/"):
		return "/" + trimmed
	case trimmed == "api":
		return "/api/"
	default:
		return "/api/" + trimmed
	}
}

// normalizeRequestPath strips the base path and the trailing slash (except for root).
func normalizeRequestPath(path, basePath string) string {
	if basePath != "" && basePath != "/" {
		if rest, ok := strings.CutPrefix(path, strings.TrimRight(basePath, "/")); ok && (rest == "" || rest[0] == '/') {
			path = rest
		}
	}
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if path != "/" {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

// autoRouteName derives a route name from the group name and route path.
func autoRouteName(groupName, path string) string {
	return groupName + strings.ReplaceAll(strings.Trim(path, "/"), "/", ".")
}

// countPlaceholders returns the number of {name} segments in template.
func countPlaceholders(template string) int {
	return len(placeholderRe.FindAllStringIndex(template, -1))
}

// compilePattern turns a template into an anchored regexp with one capture per placeholder.
// The template is right-trimmed of "/" so "/users/" also matches "/users".
func compilePattern(template string) *regexp.Regexp {
	t := strings.TrimRight(template, "/")
	var b strings.Builder
	b.WriteString("^")
	last := 0
	for _, loc := range placeholderRe.FindAllStringIndex(t, -1) {
		b.WriteString(regexp.QuoteMeta(t[last:loc[0]]))
		b.WriteString("([^/]+)")
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(t[last:]))
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

// templatePrefix returns the template without placeholders, right-trimmed of "/".
func templatePrefix(template string) string {
	return strings.TrimRight(placeholderRe.ReplaceAllString(strings.TrimRight(template, "/"), ""), "/")
}

// fillTemplate substitutes values into successive placeholders.
// Extra values are ignored, missing values leave placeholders untouched.
func fillTemplate(template string, values []string, escape func(string) string) string {
	i := 0
	return placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		if i >= len(values) {
			return m
		}
		v := values[i]
		i++
		if escape != nil {
			return escape(v)
		}
		return v
	})
}
