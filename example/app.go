package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	craft "github.com/datahihi1/craft-mini"
	"github.com/datahihi1/craft-mini/example/handlers"
	"github.com/datahihi1/craft-mini/example/migrations"
	"github.com/datahihi1/craft-mini/middlewares"
	"github.com/datahihi1/craft-mini/pkg/config"
	"github.com/datahihi1/craft-mini/pkg/db"
	"github.com/datahihi1/craft-mini/pkg/logger"
	"github.com/datahihi1/craft-mini/pkg/redis"
	"github.com/datahihi1/craft-mini/pkg/session"
)

const requestTimeout = 30 * time.Second

// deps are the external resources the application talks to.
// A nil field means the resource is not used by the current command.
type deps struct {
	conn  *db.DB
	cache goredis.UniversalClient
}

func newLogger(cfg config.Config) *slog.Logger {
	return logger.NewWithSentry(logger.SentryConfig{
		Config: logger.Config{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
		},
		DSN:         cfg.Log.SentryDSN,
		Environment: cfg.Env,
	}, middlewares.RequestIDExtractor())
}

// openDeps connects to the database and, when sessions live in Redis, to Redis.
func openDeps(ctx context.Context, cfg config.Config, migrate bool, log *slog.Logger) (*deps, error) {
	conn, err := db.Open(ctx, db.Config{
		URL:             cfg.Database.URL,
		MigrationsTable: cfg.Database.MigrationsTable,
		RetryAttempts:   3,
		RetryInterval:   time.Second,
	})
	if err != nil {
		return nil, err
	}
	d := &deps{conn: conn}

	if migrate {
		if err := db.Migrate(ctx, conn, migrations.FS, cfg.Database.MigrationsTable, log); err != nil {
			return nil, errors.Join(err, d.close(ctx))
		}
	}

	if cfg.Session.Store == config.StoreRedis {
		d.cache, err = redis.Open(ctx, redis.Config{URL: cfg.Redis.URL})
		if err != nil {
			return nil, errors.Join(err, d.close(ctx))
		}
	}
	return d, nil
}

func (d *deps) close(ctx context.Context) error {
	var errs []error
	if d.conn != nil {
		errs = append(errs, db.Shutdown(d.conn)(ctx))
	}
	if d.cache != nil {
		errs = append(errs, redis.Shutdown(d.cache)(ctx))
	}
	return errors.Join(errs...)
}

// buildApp wires configuration, middleware, handlers and routes into an App.
func buildApp(cfg config.Config, d *deps, log *slog.Logger) (*craft.App, error) {
	var store craft.SessionStore = session.NewMemoryStore()
	if d.cache != nil {
		store = session.NewRedisStore(d.cache, session.WithKeyPrefix(cfg.Name+":session:"))
	}
	sessionOpts := []craft.SessionOption{
		craft.WithSessionCookieName(cfg.Session.Cookie),
		craft.WithSessionTTL(cfg.Session.TTL),
		craft.WithSessionSecure(cfg.IsProduction()),
	}
	if cfg.Session.Secret != "" {
		sessionOpts = append(sessionOpts, craft.WithSessionSecret(cfg.Session.Secret))
	}

	var checks []craft.HealthOption
	if d.conn != nil {
		checks = append(checks, craft.WithReadinessCheck("db", db.Healthcheck(d.conn)))
	}
	if d.cache != nil {
		checks = append(checks, craft.WithReadinessCheck("redis", redis.Healthcheck(d.cache)))
	}

	return craft.New(
		craft.WithCustomLogger(log),
		craft.WithDebug(cfg.Debug),
		craft.WithBasePath(cfg.BasePath),
		craft.WithMethodOverride(true),
		craft.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
			middlewares.Timeout(requestTimeout),
			middlewares.SecurityHeaders(),
			middlewares.CORS(
				middlewares.WithCORSOrigins(cfg.CORSOrigins...),
				middlewares.WithCORSExposedHeaders("X-Request-ID"),
			),
			middlewares.Maintenance(cfg.Maintenance, middlewares.WithMaintenanceSkipPaths("/health")),
			middlewares.MethodOverride(),
		),
		craft.WithController("home", handlers.NewHome(cfg.Name)),
		craft.WithNamedMiddleware("no-cache", handlers.NoCache),
		craft.WithRoutes(func(r *craft.Router) {
			r.Get("/", craft.Method("home", "Index")).Name("home")
			r.Get("/hello/{name}", craft.Method("home", "Hello")).Name("hello")
			r.API().Get("hello/{name}", craft.Func(handlers.HelloAPI)).Name("api.hello")
		}),
		craft.WithHandlers(handlers.NewUsers(d.conn)),
		craft.WithSession(store, sessionOpts...),
		craft.WithHealthChecks(checks...),
	)
}
