// Package craft is a small HTTP router and application shell.
//
// Routes are declared once at startup on a [Router], compiled into an
// immutable route table by [New] and then served concurrently. A handler
// returns a value and the router turns it into the response: standard routes
// echo it as the body, API routes encode it as JSON.
//
// # Quick Start
//
//	app, err := craft.New(
//	    craft.WithLogger("web"),
//	    craft.WithRoutes(func(r *craft.Router) {
//	        r.Get("/", craft.Func(func() string { return "Welcome" })).Name("home")
//	        r.Get("/hello/{name}", craft.Func(func(name string) string {
//	            return "Hello, " + name
//	        }))
//	        r.API().Get("users/{id}", craft.Func(func(id string) map[string]any {
//	            return map[string]any{"id": id}
//	        }))
//	    }),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Handlers
//
// A route handler is referenced by a [HandlerRef]:
//
//   - [RouteFunc] receives the [Context] and returns (any, error).
//   - [HandlerFunc] receives the [Context] and writes the response itself.
//   - [Func] adapts a plain function taking one string per path placeholder,
//     optionally followed by a *[Request] or a [Context].
//   - [Method] names an exported method of a controller registered with
//     [WithController]. It is resolved when the routes are compiled.
//
// A handler that cannot be resolved does not stop the application; the route
// answers 500 and the failure is logged.
//
// # Groups and names
//
// Groups share a path prefix, route middleware and a name prefix. A group
// that has a name auto-names its routes from the route path:
//
//	r.Group("/admin").Middleware(craft.Named("auth")).Name("admin.").Action(func(r *craft.Router) {
//	    r.Get("/users", craft.Method("admin", "Users"))      // admin.users
//	    r.Get("/users/{id}", craft.Method("admin", "User")) // admin.users.{id}
//	})
//	r.Get("/about", craft.Method("pages", "About")).Name("about")
//
// Named routes are turned back into paths with [App.Path] and
// Context.URLFor.
//
// # Route middleware
//
// [RouteMiddleware] runs before the handler. Returning nil or true
// continues, [Blocked] or false stops without a body (an API route answers
// 400 with false), an error is handled like a handler error and any other
// value becomes the response.
//
// # Matching
//
// Requests are matched against standard routes first, then API routes under
// /api. Exact templates win over patterns; patterns are tried in registration
// order. A path that matches only under another method answers 405 with an
// Allow header. A path equal to the static prefix of a parameterized route
// answers 400. Anything else answers 404.
//
// # Self-test
//
// [App.SmokeTest] requests every route in-process and returns a [Report]
// that can be printed as a table or JSON.
package craft
