package health

import "errors"

var (
	// ErrCheckFailed is wrapped by Response.Err when any check is unhealthy.
	ErrCheckFailed = errors.New("health: readiness check failed")

	// ErrCheckTimeout marks a check that was still running when the check run
	// deadline passed.
	ErrCheckTimeout = errors.New("health: check deadline exceeded")
)

// CheckError names the dependency behind a failed check.
type CheckError struct {
	Name string
	Err  error
}

func (e *CheckError) Error() string { return e.Name + ": " + e.Err.Error() }

func (e *CheckError) Unwrap() error { return e.Err }
