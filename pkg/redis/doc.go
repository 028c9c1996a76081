// Package redis opens go-redis clients from a URL with connection retry, and
// provides the health check and shutdown hooks used by the app runtime.
//
//	client, err := redis.Open(ctx, redis.Config{URL: "redis://localhost:6379/0"})
//	if err != nil {
//	    return err
//	}
//	app.Run(addr, craft.ShutdownHook(redis.Shutdown(client)))
package redis
