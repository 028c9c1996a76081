package internal

// Handler declares routes on a router.
//
// Example:
//
//	type UserHandler struct {
//	    users *db.Table
//	}
//
//	func (h *UserHandler) Routes(r *craft.Router) {
//	    r.Get("/users", craft.RouteFunc(h.list)).Name("users.index")
//	    r.API().Get("/users/{id}", craft.Func(h.show))
//	}
type Handler interface {
	Routes(r *Router)
}

// HandlerFunc is the signature for handlers that write the response themselves.
// Returning a non-nil error triggers the error handler.
type HandlerFunc func(c Context) error

// RouteFunc is the signature for route handlers that return a response value.
// Standard routes echo the value as the body; API routes encode it as JSON.
type RouteFunc func(c Context) (any, error)

// Middleware wraps a HandlerFunc to add cross-cutting concerns around every request,
// before routing happens.
//
// Example:
//
//	func Auth(next craft.HandlerFunc) craft.HandlerFunc {
//	    return func(c craft.Context) error {
//	        if c.Header("Authorization") == "" {
//	            return craft.ErrUnauthorized("missing credentials")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers and routing failures.
type ErrorHandler func(Context, error) error
