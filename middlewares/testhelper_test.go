package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datahihi1/craft-mini/internal"
)

func newApp(t *testing.T, mw []internal.Middleware, routes func(r *internal.Router), opts ...internal.Option) *internal.App {
	t.Helper()

	opts = append(opts, internal.WithMiddleware(mw...), internal.WithRoutes(routes))
	app, err := internal.New(opts...)
	require.NoError(t, err)
	return app
}

func serve(app http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func text(s string) internal.HandlerRef {
	return internal.RouteFunc(func(internal.Context) (any, error) { return s, nil })
}
