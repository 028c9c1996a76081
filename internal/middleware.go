package internal

import "fmt"

// RouteMiddleware runs before a route handler.
// Returning nil (or true) continues the pipeline. Returning Blocked (or false) stops it
// without a body. An error is handled like a handler error. Any other value
// stops the pipeline and becomes the response.
//
// Example:
//
//	auth := craft.RouteMiddleware(func(c craft.Context) any {
//	    if c.Header("X-Token") == "" {
//	        return map[string]any{"code": 401, "error": "unauthorized"}
//	    }
//	    return nil
//	})
type RouteMiddleware func(c Context) any

// MiddlewareRef references route middleware, either inline or by registered name.
type MiddlewareRef interface {
	resolveMiddleware(named map[string]RouteMiddleware) (RouteMiddleware, error)
}

type blocked struct{}

// Blocked is returned by route middleware to stop dispatch without a response body.
var Blocked any = blocked{}

func (m RouteMiddleware) resolveMiddleware(map[string]RouteMiddleware) (RouteMiddleware, error) {
	return m, nil
}

type namedMiddleware string

// Named references route middleware registered with WithNamedMiddleware.
// Unknown names fail route compilation.
func Named(name string) MiddlewareRef {
	return namedMiddleware(name)
}

func (n namedMiddleware) resolveMiddleware(named map[string]RouteMiddleware) (RouteMiddleware, error) {
	mw, ok := named[string(n)]
	if !ok || mw == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMiddleware, string(n))
	}
	return mw, nil
}

// isBlocked reports whether a middleware result means "stop without a body".
func isBlocked(v any) bool {
	switch r := v.(type) {
	case blocked:
		return true
	case bool:
		return !r
	}
	return false
}

// runPipeline invokes middleware in order and returns the first result that
// does not continue the pipeline.
func runPipeline(c Context, chain []RouteMiddleware) any {
	for _, mw := range chain {
		res := mw(c)
		if res == nil {
			continue
		}
		if ok, isBool := res.(bool); isBool && ok {
			continue
		}
		return res
	}
	return nil
}
