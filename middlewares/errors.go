package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// PanicError is a recovered panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// StatusCode reports 500.
func (e *PanicError) StatusCode() int {
	return http.StatusInternalServerError
}

// TimeoutError is returned by Timeout when the deadline passes.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

// StatusCode reports 504.
func (e *TimeoutError) StatusCode() int {
	return http.StatusGatewayTimeout
}

// AsPanicError extracts a *PanicError from err's chain.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	ok := errors.As(err, &pe)
	return pe, ok
}

// AsTimeoutError extracts a *TimeoutError from err's chain.
func AsTimeoutError(err error) (*TimeoutError, bool) {
	var te *TimeoutError
	ok := errors.As(err, &te)
	return te, ok
}
