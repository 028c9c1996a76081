// Package middlewares provides HTTP-level middleware for craft applications.
// Each one wraps every request on the outer mux, before route matching.
//
//	app, err := craft.New(
//	    craft.WithLogger("web", middlewares.RequestIDExtractor()),
//	    craft.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Recover(),
//	        middlewares.MethodOverride(),
//	        middlewares.SecurityHeaders(),
//	        middlewares.Maintenance(cfg.Maintenance, middlewares.WithMaintenanceSkipPaths("/health/")),
//	        middlewares.Timeout(10*time.Second),
//	    ),
//	)
//
// Recover and Timeout return *PanicError and *TimeoutError. Both report their
// status through StatusCode, so the default error page answers 500 and 504.
// A custom error handler can inspect them with AsPanicError and
// AsTimeoutError.
//
// Place RequestID first so every later log line carries the ID, and
// MethodOverride before anything that reads the request body.
package middlewares
