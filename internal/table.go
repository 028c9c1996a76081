package internal

import "slices"

// MatchKind is the outcome of matching a request against the route table.
type MatchKind int

const (
	MatchNotFound MatchKind = iota
	MatchStandard
	MatchAPI
	MatchMethodNotAllowed
	MatchMissingParameter
)

// Match is the result of looking up a method and path.
type Match struct {
	route    *compiledRoute
	Params   []string
	Allowed  []string
	Template string
	Kind     MatchKind
}

// RouteInfo describes a compiled route.
type RouteInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Name   string `json:"name,omitempty"`
	API    bool   `json:"api"`
	Params int    `json:"params"`
}

// methodTable holds the compiled routes of one method in one route space.
type methodTable struct {
	exact   map[string]*compiledRoute
	ordered []*compiledRoute
}

// lookup finds an exact entry first, then the first matching pattern.
func (mt *methodTable) lookup(path string) (*compiledRoute, []string) {
	if mt == nil {
		return nil, nil
	}
	if cr, ok := mt.exact[path]; ok {
		return cr, nil
	}
	for _, cr := range mt.ordered {
		if m := cr.pattern.FindStringSubmatch(path); m != nil {
			return cr, m[1:]
		}
	}
	return nil, nil
}

// missingParameter returns the template of a parameterized route whose
// static prefix equals path.
func (mt *methodTable) missingParameter(path string) (string, bool) {
	if mt == nil {
		return "", false
	}
	trimmed := trimRightSlash(path)
	for _, cr := range mt.ordered {
		if cr.params > 0 && cr.prefix == trimmed {
			return cr.template, true
		}
	}
	return "", false
}

// RouteTable is the immutable, compiled form of a Router.
// It is safe for concurrent use.
type RouteTable struct {
	standard map[string]*methodTable
	api      map[string]*methodTable
	names    map[string]routeKey
}

// Match resolves method and a normalized path.
func (t *RouteTable) Match(method, path string) Match {
	if cr, params := t.standard[method].lookup(path); cr != nil {
		return Match{Kind: MatchStandard, route: cr, Params: params, Template: cr.template}
	}

	var allowed []string
	addAllowed := func(tables map[string]*methodTable) {
		for _, m := range routeMethods {
			if m == method || slices.Contains(allowed, m) {
				continue
			}
			if cr, _ := tables[m].lookup(path); cr != nil {
				allowed = append(allowed, m)
			}
		}
	}
	addAllowed(t.standard)

	if cr, params := t.api[method].lookup(path); cr != nil {
		return Match{Kind: MatchAPI, route: cr, Params: params, Template: cr.template}
	}

	addAllowed(t.api)
	if len(allowed) > 0 {
		return Match{Kind: MatchMethodNotAllowed, Allowed: allowed}
	}

	if tpl, ok := t.standard[method].missingParameter(path); ok {
		return Match{Kind: MatchMissingParameter, Template: tpl}
	}
	if tpl, ok := t.api[method].missingParameter(path); ok {
		return Match{Kind: MatchMissingParameter, Template: tpl}
	}

	return Match{Kind: MatchNotFound}
}

// matchAPI resolves only against the API route space.
func (t *RouteTable) matchAPI(method, path string) Match {
	if cr, params := t.api[method].lookup(path); cr != nil {
		return Match{Kind: MatchAPI, route: cr, Params: params, Template: cr.template}
	}
	return Match{Kind: MatchNotFound}
}

// Path returns the path of a named route with params substituted in order.
func (t *RouteTable) Path(name string, params ...string) (string, bool) {
	key, ok := t.names[name]
	if !ok {
		return "", false
	}
	return buildPath(key.template, params), true
}

// Routes lists compiled routes: per method, standard routes then API routes.
func (t *RouteTable) Routes() []RouteInfo {
	byKey := make(map[routeKey]string, len(t.names))
	for name, key := range t.names {
		if prev, ok := byKey[key]; !ok || name < prev {
			byKey[key] = name
		}
	}

	var out []RouteInfo
	for _, m := range routeMethods {
		for _, tables := range []map[string]*methodTable{t.standard, t.api} {
			mt := tables[m]
			if mt == nil {
				continue
			}
			for _, cr := range mt.ordered {
				out = append(out, RouteInfo{
					Method: cr.method,
					Path:   cr.template,
					Name:   byKey[routeKey{method: cr.method, template: cr.template, api: cr.api}],
					API:    cr.api,
					Params: cr.params,
				})
			}
		}
	}
	return out
}

func (t *RouteTable) count(tables map[string]*methodTable) int {
	n := 0
	for _, mt := range tables {
		n += len(mt.ordered)
	}
	return n
}

func trimRightSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
