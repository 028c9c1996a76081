// Package health provides liveness and readiness endpoints.
//
// Checks are plain func(context.Context) error closures, such as the ones
// returned by db.Healthcheck and redis.Healthcheck. They run concurrently
// under a shared timeout:
//
//	checks := health.Checks{
//	    "db":    db.Healthcheck(conn),
//	    "redis": redis.Healthcheck(client),
//	}
//	mux.Get("/health/live", health.LivenessHandler())
//	mux.Get("/health/ready", health.ReadinessHandler(checks, health.WithTimeout(3*time.Second)))
//
// Handlers answer plain text by default and JSON when the request sends
// Accept: application/json or ?format=json. A failing readiness check answers
// 503. [Run] gives the same aggregate to code that is not an HTTP handler,
// for example a CLI command.
package health
