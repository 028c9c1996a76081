package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Config holds connection settings. Pool limits of zero keep the
// database/sql defaults.
type Config struct {
	URL             string        `env:"DATABASE_URL"`
	MigrationsTable string        `env:"DATABASE_MIGRATIONS_TABLE" envDefault:"schema_migrations"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
	ConnMaxIdleTime time.Duration `env:"DATABASE_CONN_MAX_IDLE_TIME" envDefault:"10m"`
	RetryAttempts   int           `env:"DATABASE_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval   time.Duration `env:"DATABASE_RETRY_INTERVAL" envDefault:"2s"`
}

// DB is a connection pool that remembers its dialect.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open connects to the database named by cfg.URL and pings it, retrying with
// a linearly growing delay.
//
// Example:
//
//	conn, err := db.Open(ctx, db.Config{URL: "sqlite://data/app.db"})
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
func Open(ctx context.Context, cfg Config) (*DB, error) {
	dialect, dsn, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	attempts := max(cfg.RetryAttempts, 1)
	var lastErr error
	for i := range attempts {
		conn, err := sql.Open(dialect.driverName(), dsn)
		if err == nil {
			configurePool(conn, dialect, dsn, cfg)
			if err = conn.PingContext(ctx); err == nil {
				return &DB{DB: conn, Dialect: dialect}, nil
			}
			_ = conn.Close()
		}
		lastErr = err

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}
	return nil, errors.Join(ErrConnectionFailed, lastErr)
}

func configurePool(conn *sql.DB, dialect Dialect, dsn string, cfg Config) {
	// Every connection to :memory: opens a fresh database.
	if dialect == SQLite && strings.Contains(dsn, ":memory:") {
		conn.SetMaxOpenConns(1)
		conn.SetConnMaxLifetime(0)
		conn.SetConnMaxIdleTime(0)
		return
	}
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}

// Healthcheck returns a readiness check that pings the database.
func Healthcheck(conn *DB) func(context.Context) error {
	return func(ctx context.Context) error {
		if conn == nil || conn.DB == nil {
			return ErrHealthcheckFailed
		}
		if err := conn.PingContext(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown returns a shutdown hook that closes the pool.
func Shutdown(conn *DB) func(context.Context) error {
	return func(context.Context) error {
		return conn.Close()
	}
}

// WithTx executes fn within a transaction.
// If fn returns an error or panics, the transaction is rolled back; a panic
// is re-raised after rollback.
func (d *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Table returns a mapper for the named table using "id" as primary key.
func (d *DB) Table(name string) *Table {
	return NewTable(d.DB, d.Dialect, name, "id")
}
