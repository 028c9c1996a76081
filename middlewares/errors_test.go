package middlewares_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/datahihi1/craft-mini/middlewares"
)

func TestPanicError(t *testing.T) {
	t.Parallel()

	err := &middlewares.PanicError{Value: 42}
	assert.Equal(t, "panic: 42", err.Error())
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode())

	wrapped := fmt.Errorf("outer: %w", err)
	pe, ok := middlewares.AsPanicError(wrapped)
	assert.True(t, ok)
	assert.Same(t, err, pe)

	_, ok = middlewares.AsPanicError(errors.New("plain"))
	assert.False(t, ok)
}

func TestTimeoutError(t *testing.T) {
	t.Parallel()

	err := &middlewares.TimeoutError{Duration: 5 * time.Second}
	assert.Equal(t, "request timeout after 5s", err.Error())
	assert.Equal(t, http.StatusGatewayTimeout, err.StatusCode())

	te, ok := middlewares.AsTimeoutError(fmt.Errorf("outer: %w", err))
	assert.True(t, ok)
	assert.Same(t, err, te)

	_, ok = middlewares.AsTimeoutError(nil)
	assert.False(t, ok)
}
