package session

import "errors"

// Session errors.
var (
	// ErrNotConfigured is returned when session functionality is used
	// but WithSession was not configured on the app.
	ErrNotConfigured = errors.New("session: not configured")

	// ErrNotFound is returned when a session or value does not exist.
	ErrNotFound = errors.New("session: not found")

	// ErrExpired is returned when a session has expired.
	ErrExpired = errors.New("session: expired")

	// ErrTypeMismatch is returned by Value when the stored type differs.
	ErrTypeMismatch = errors.New("session: type mismatch")

	// ErrEncode is returned when a session cannot be serialized for storage.
	ErrEncode = errors.New("session: encode failed")
)
