package db

import "errors"

var (
	ErrEmptyURL           = errors.New("db: empty database URL")
	ErrUnsupportedDialect = errors.New("db: unsupported database URL scheme")
	ErrFailedToParseURL   = errors.New("db: failed to parse database URL")
	ErrConnectionFailed   = errors.New("db: failed to open database connection")
	ErrHealthcheckFailed  = errors.New("db: healthcheck failed")
	ErrSetDialect         = errors.New("db migrator: failed to set dialect")
	ErrApplyMigrations    = errors.New("db migrator: failed to apply migrations")
	ErrNotFound           = errors.New("db: record not found")
	ErrNoColumns          = errors.New("db: no columns given")
	ErrInvalidIdentifier  = errors.New("db: invalid identifier")
)
