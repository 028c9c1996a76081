package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

// Migrate applies every pending goose migration found at the root of fsys.
// An empty table name uses "schema_migrations".
//
// goose keeps its settings in package state, so concurrent calls are not safe.
//
// Example:
//
//	//go:embed migrations/*.sql
//	var migrations embed.FS
//
//	sub, _ := fs.Sub(migrations, "migrations")
//	err := db.Migrate(ctx, conn, sub, "", logger)
func Migrate(ctx context.Context, conn *DB, fsys fs.FS, table string, log *slog.Logger) error {
	if table == "" {
		table = "schema_migrations"
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(&gooseLogger{log: log})
	goose.SetTableName(table)

	if err := goose.SetDialect(conn.Dialect.gooseDialect()); err != nil {
		return errors.Join(ErrSetDialect, err)
	}
	if err := goose.UpContext(ctx, conn.DB, "."); err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}
	return nil
}

type gooseLogger struct {
	log *slog.Logger
}

func (g *gooseLogger) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...), slog.String("component", "migrations"))
}

// Fatalf only logs; goose returns the error to the caller anyway.
func (g *gooseLogger) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...), slog.String("component", "migrations"))
}
