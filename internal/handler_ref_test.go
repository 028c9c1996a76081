package internal

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter struct {
	greeting string
}

func (g *greeter) Hello(name string) string { return g.greeting + " " + name }

func (g *greeter) Fail() error { return errors.New("failed") }

func (g *greeter) Both(id string, c Context) (map[string]any, error) {
	return map[string]any{"id": id, "route": c.Route()}, nil
}

func (g *greeter) NilMap() map[string]any { return nil }

// callWith resolves h for template and runs it against a context bound to params.
func callWith(t *testing.T, h HandlerRef, template string, params ...string) (any, error) {
	t.Helper()
	call, kind, err := h.resolve(map[string]any{"greeter": &greeter{greeting: "Hi"}}, countPlaceholders(template))
	require.NoError(t, err)
	require.Zero(t, kind)

	app := &App{}
	c := newContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), app)
	c.bind(Match{Params: params, Template: template})
	return call(c)
}

func TestFuncSignatures(t *testing.T) {
	t.Parallel()

	t.Run("no arguments", func(t *testing.T) {
		t.Parallel()
		got, err := callWith(t, Func(func() string { return "ok" }), "/")
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
	})

	t.Run("path parameters", func(t *testing.T) {
		t.Parallel()
		got, err := callWith(t, Func(func(a, b string) string { return a + b }), "/{a}/{b}", "x", "y")
		require.NoError(t, err)
		assert.Equal(t, "xy", got)
	})

	t.Run("fewer arguments than parameters", func(t *testing.T) {
		t.Parallel()
		got, err := callWith(t, Func(func(a string) string { return a }), "/{a}/{b}", "x", "y")
		require.NoError(t, err)
		assert.Equal(t, "x", got)
	})

	t.Run("trailing request", func(t *testing.T) {
		t.Parallel()
		got, err := callWith(t, Func(func(id string, r *Request) string { return id + r.Method }), "/{id}", "7")
		require.NoError(t, err)
		assert.Equal(t, "7GET", got)
	})

	t.Run("no return value", func(t *testing.T) {
		t.Parallel()
		got, err := callWith(t, Func(func() {}), "/")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("error only", func(t *testing.T) {
		t.Parallel()
		_, err := callWith(t, Func(func() error { return errors.New("boom") }), "/")
		require.EqualError(t, err, "boom")
	})

	t.Run("value and nil error", func(t *testing.T) {
		t.Parallel()
		got, err := callWith(t, Func(func() (int, error) { return 3, nil }), "/")
		require.NoError(t, err)
		assert.Equal(t, 3, got)
	})

	t.Run("typed nil becomes nil", func(t *testing.T) {
		t.Parallel()
		got, err := callWith(t, Func(func() *greeter { return nil }), "/")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("route funcs pass through", func(t *testing.T) {
		t.Parallel()
		got, err := callWith(t, Func(func(Context) (any, error) { return "route", nil }), "/")
		require.NoError(t, err)
		assert.Equal(t, "route", got)

		got, err = callWith(t, Func(func(Context) error { return nil }), "/")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestFuncRejectsBadSignatures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fn       any
		template string
	}{
		{"not a function", "hello", "/"},
		{"nil", nil, "/"},
		{"variadic", func(...string) string { return "" }, "/{a}"},
		{"too many arguments", func(a, b, c string) string { return "" }, "/{a}"},
		{"non string argument", func(id int) string { return "" }, "/{id}"},
		{"bad trailing argument", func(id string, n int) string { return "" }, "/{id}"},
		{"three results", func() (int, int, error) { return 0, 0, nil }, "/"},
		{"second result not error", func() (int, int) { return 0, 0 }, "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, kind, err := Func(tt.fn).resolve(nil, countPlaceholders(tt.template))
			require.Error(t, err)
			assert.Equal(t, KindInvalidHandler, kind)
		})
	}
}

func TestMethodRef(t *testing.T) {
	t.Parallel()

	got, err := callWith(t, Method("greeter", "Hello"), "/{name}", "ann")
	require.NoError(t, err)
	assert.Equal(t, "Hi ann", got)

	_, err = callWith(t, Method("greeter", "Fail"), "/")
	require.EqualError(t, err, "failed")

	got, err = callWith(t, Method("greeter", "Both"), "/{id}", "5")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "5", "route": "/{id}"}, got)

	got, err = callWith(t, Method("greeter", "NilMap"), "/")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Equal(t, "greeter@Hello", Method("greeter", "Hello").String())
}

func TestMethodRefResolutionErrors(t *testing.T) {
	t.Parallel()

	controllers := map[string]any{"greeter": &greeter{}}

	_, kind, err := Method("missing", "Hello").resolve(controllers, 0)
	require.Error(t, err)
	assert.Equal(t, KindHandlerResolution, kind)

	_, kind, err = Method("greeter", "Missing").resolve(controllers, 0)
	require.Error(t, err)
	assert.Equal(t, KindHandlerResolution, kind)

	_, kind, err = Method("greeter", "Hello").resolve(controllers, 3)
	require.NoError(t, err)
	assert.Zero(t, kind)

	_, kind, err = Method("greeter", "Both").resolve(controllers, 0)
	require.Error(t, err)
	assert.Equal(t, KindInvalidHandler, kind)
}
