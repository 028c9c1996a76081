// Package internal implements the craft router and application shell.
//
// This package is internal and should not be used directly. Import
// "github.com/datahihi1/craft-mini" instead, which re-exports the public API.
//
// # Registration and compilation
//
// Routes are declared on a *Router builder, then compiled once into an
// immutable *RouteTable that is shared by every request:
//
//	r := internal.NewRouter()
//	r.Get("/", internal.Method("home", "Index")).Name("home")
//	r.Group("/admin").Middleware(internal.Named("auth")).Name("admin.").Action(func(r *internal.Router) {
//	    r.Get("/users/{id}", internal.Method("admin", "ShowUser")) // named admin.users.{id}
//	})
//	r.API().Get("users/{id}", internal.Func(showUser)) // served at /api/users/{id}
//	table, err := r.Compile(internal.CompileConfig{Controllers: controllers, Named: named})
//
// Handler references (Method, Func) are resolved at compile time. A reference
// that cannot be resolved does not fail compilation; the route answers 500
// with a *RouteError of kind KindHandlerResolution or KindInvalidHandler.
// Unknown named middleware and unbalanced groups do fail compilation.
//
// # Matching
//
// RouteTable.Match is a pure function of method and normalized path. Standard
// routes are tried before API routes; exact templates before patterns; patterns
// in registration order. When nothing matches for the method, the table reports
// 405 with the allowed methods, then 400 when the path is the static prefix of
// a parameterized route, then 404.
//
// # Dispatch
//
// Route middleware (RouteMiddleware) runs before the handler and may
// short-circuit: nil or true continues, Blocked or false stops, an error is
// handled like a handler error and any other value becomes the response.
// Standard routes echo the handler result as the body. API routes answer JSON;
// a "code" key in a map result sets the status and is removed from the body.
//
// HTTP-level Middleware (func(next HandlerFunc) HandlerFunc) wraps every
// request on the outer chi mux, before route matching.
//
// # Self-test
//
// App.SmokeTest requests every route in-process with a sample parameter value
// and reports PASS or FAIL per route.
package internal
