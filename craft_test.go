package craft_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	craft "github.com/datahihi1/craft-mini"
	"github.com/datahihi1/craft-mini/pkg/session"
)

func newApp(t *testing.T, routes func(r *craft.Router), opts ...craft.Option) *craft.App {
	t.Helper()
	app, err := craft.New(append([]craft.Option{craft.WithRoutes(routes)}, opts...)...)
	require.NoError(t, err)
	return app
}

func do(app http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func postForm(app http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func text(s string) craft.RouteFunc {
	return func(craft.Context) (any, error) { return s, nil }
}

type pages struct{}

func (pages) Show(id string) string { return "page " + id }

func (pages) Search(req *craft.Request) string { return "q=" + req.String("q") }

func TestMatching(t *testing.T) {
	t.Parallel()

	app := newApp(t, func(r *craft.Router) {
		r.Get("/users/{id}", craft.Func(func(id string) string { return "user " + id }))
		r.Get("/users/me", text("me"))
		r.Get("/items/{id}", text("item"))
		r.Post("/submit", text("submitted"))
		r.Put("/submit", text("replaced"))
		r.Get("/posts/{post}/comments/{comment}", craft.Func(func(post, comment string) string {
			return post + "/" + comment
		}))
	})

	tests := []struct {
		name   string
		method string
		path   string
		status int
		body   string
	}{
		{"exact wins over pattern", http.MethodGet, "/users/me", http.StatusOK, "me"},
		{"pattern", http.MethodGet, "/users/42", http.StatusOK, "user 42"},
		{"trailing slash", http.MethodGet, "/users/42/", http.StatusOK, "user 42"},
		{"two parameters", http.MethodGet, "/posts/7/comments/9", http.StatusOK, "7/9"},
		{"missing parameter", http.MethodGet, "/items", http.StatusBadRequest, "Bad Request"},
		{"method not allowed", http.MethodGet, "/submit", http.StatusMethodNotAllowed, "Method Not Allowed"},
		{"not found", http.MethodGet, "/nope", http.StatusNotFound, "Not Found"},
		{"parameter does not span segments", http.MethodGet, "/users/1/2", http.StatusNotFound, "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := do(app, tt.method, tt.path)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestMethodNotAllowedSetsAllow(t *testing.T) {
	t.Parallel()

	app := newApp(t, func(r *craft.Router) {
		r.Post("/submit", text("submitted"))
		r.Put("/submit", text("replaced"))
	})

	rec := do(app, http.MethodGet, "/submit")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST, PUT", rec.Header().Get("Allow"))
}

func TestAPIRoutes(t *testing.T) {
	t.Parallel()

	app := newApp(t, func(r *craft.Router) {
		r.API().Get("hello/{name}", craft.Func(func(name string) map[string]any {
			return map[string]any{"message": "Hello " + name}
		}))
		r.API().Post("/api/users", craft.Func(func() map[string]any {
			return map[string]any{"code": 201, "id": 1}
		}))
		r.API().Get("empty", craft.Func(func() any { return nil }))
		r.API().Get("missing/{id}", craft.Func(func(id string) (any, error) {
			return nil, craft.ErrNotFound("user " + id + " not found")
		}))
		r.API().Get("status", craft.RouteFunc(func(c craft.Context) (any, error) {
			c.Status(http.StatusAccepted)
			return []int{1, 2}, nil
		}))
	})

	t.Run("encodes result", func(t *testing.T) {
		t.Parallel()
		rec := do(app, http.MethodGet, "/api/hello/bob")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		assert.Equal(t, "Hello bob", decode(t, rec)["message"])
	})

	t.Run("code key sets status and is stripped", func(t *testing.T) {
		t.Parallel()
		rec := do(app, http.MethodPost, "/api/users")
		assert.Equal(t, http.StatusCreated, rec.Code)
		body := decode(t, rec)
		assert.NotContains(t, body, "code")
		assert.InDelta(t, 1, body["id"], 0)
	})

	t.Run("nil result", func(t *testing.T) {
		t.Parallel()
		rec := do(app, http.MethodGet, "/api/empty")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Invalid API route", decode(t, rec)["error"])
	})

	t.Run("handler error", func(t *testing.T) {
		t.Parallel()
		rec := do(app, http.MethodGet, "/api/missing/3")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "user 3 not found", decode(t, rec)["error"])
	})

	t.Run("status set on context", func(t *testing.T) {
		t.Parallel()
		rec := do(app, http.MethodGet, "/api/status")
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.JSONEq(t, `[1,2]`, rec.Body.String())
	})
}

func TestRouteMiddleware(t *testing.T) {
	t.Parallel()

	requireToken := craft.RouteMiddleware(func(c craft.Context) any {
		if c.Header("X-Token") == "" {
			return craft.Blocked
		}
		return nil
	})
	deny := craft.RouteMiddleware(func(c craft.Context) any {
		return "denied"
	})
	unauthorized := craft.RouteMiddleware(func(c craft.Context) any {
		return craft.ErrUnauthorized("no session")
	})
	apiDeny := craft.RouteMiddleware(func(c craft.Context) any {
		return map[string]any{"code": 401, "error": "unauthorized"}
	})
	pass := craft.RouteMiddleware(func(c craft.Context) any { return true })

	app := newApp(t, func(r *craft.Router) {
		r.Get("/secret", text("secret"), requireToken)
		r.Get("/denied", text("never"), deny)
		r.Get("/unauthorized", text("never"), unauthorized)
		r.Get("/open", text("open"), pass)
		r.API().Get("secret", craft.Func(func() string { return "secret" }), requireToken)
		r.API().Get("deny", craft.Func(func() string { return "never" }), apiDeny)
	})

	tests := []struct {
		name   string
		path   string
		token  string
		status int
		body   string
	}{
		{"blocked standard", "/secret", "", http.StatusOK, ""},
		{"allowed standard", "/secret", "t", http.StatusOK, "secret"},
		{"value becomes response", "/denied", "", http.StatusOK, "denied"},
		{"error is handled", "/unauthorized", "", http.StatusUnauthorized, "Unauthorized"},
		{"true continues", "/open", "", http.StatusOK, "open"},
		{"blocked api", "/api/secret", "", http.StatusBadRequest, "false"},
		{"allowed api", "/api/secret", "t", http.StatusOK, `"secret"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("X-Token", tt.token)
			}
			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, strings.TrimSpace(rec.Body.String()))
		})
	}

	t.Run("api middleware result keeps code", func(t *testing.T) {
		t.Parallel()
		rec := do(app, http.MethodGet, "/api/deny")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthorized", decode(t, rec)["error"])
	})
}

func TestNamedAndGlobalMiddleware(t *testing.T) {
	t.Parallel()

	var order []string
	track := func(name string) craft.RouteMiddleware {
		return func(craft.Context) any {
			order = append(order, name)
			return nil
		}
	}

	app := newApp(t, func(r *craft.Router) {
		r.Get("/", text("home"), craft.Named("route"))
		r.API().Get("ping", craft.Func(func() string { return "pong" }))
	},
		craft.WithNamedMiddleware("route", track("route")),
		craft.WithRouteMiddleware(track("global")),
		craft.WithAPIMiddleware(track("api")),
	)

	do(app, http.MethodGet, "/")
	assert.Equal(t, []string{"global", "route"}, order)

	order = nil
	do(app, http.MethodGet, "/api/ping")
	assert.Equal(t, []string{"api"}, order)
}

func TestGroups(t *testing.T) {
	t.Parallel()

	auth := craft.RouteMiddleware(func(c craft.Context) any {
		if c.Header("X-Admin") != "yes" {
			return craft.ErrForbidden("admins only")
		}
		return nil
	})

	app := newApp(t, func(r *craft.Router) {
		r.Group("/admin").Middleware(auth).Name("admin.").Action(func(r *craft.Router) {
			r.Get("/users", text("users"))
			r.Get("/users/{id}", craft.Func(func(id string) string { return "user " + id }))
			r.Group("/reports").Action(func(r *craft.Router) {
				r.Get("/daily", text("daily"))
			})
		})
		r.Get("/about", text("about")).Name("about")
	})

	t.Run("prefix and middleware", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/admin/users/5", nil)
		req.Header.Set("X-Admin", "yes")
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user 5", rec.Body.String())

		rec = do(app, http.MethodGet, "/admin/users")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("nested group path", func(t *testing.T) {
		t.Parallel()
		rec := do(app, http.MethodGet, "/admin/reports/daily")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "daily", rec.Body.String())
	})

	t.Run("group scope closes", func(t *testing.T) {
		t.Parallel()
		rec := do(app, http.MethodGet, "/about")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "about", rec.Body.String())
	})

	t.Run("auto names", func(t *testing.T) {
		t.Parallel()
		p, ok := app.Path("admin.users")
		require.True(t, ok)
		assert.Equal(t, "/admin/users", p)

		p, ok = app.Path("admin.users.{id}", "9")
		require.True(t, ok)
		assert.Equal(t, "/admin/users/9", p)

		p, ok = app.Path("about")
		require.True(t, ok)
		assert.Equal(t, "/about", p)

		_, ok = app.Path("missing")
		assert.False(t, ok)
	})
}

func TestControllers(t *testing.T) {
	t.Parallel()

	app := newApp(t, func(r *craft.Router) {
		r.Get("/pages/{id}", craft.Method("pages", "Show"))
		r.Get("/search", craft.Method("pages", "Search"))
		r.Get("/missing", craft.Method("pages", "Nope"))
		r.Get("/unknown", craft.Method("nobody", "Show"))
		r.Get("/bad/{id}", craft.Func(func(id int) string { return "never" }))
	}, craft.WithController("pages", pages{}))

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/pages/3", http.StatusOK, "page 3"},
		{"/search?q=go", http.StatusOK, "q=go"},
		{"/missing", http.StatusInternalServerError, "Internal Server Error"},
		{"/unknown", http.StatusInternalServerError, "Internal Server Error"},
		{"/bad/1", http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			rec := do(app, http.MethodGet, tt.path)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestHandlerResolutionErrorKind(t *testing.T) {
	t.Parallel()

	var got error
	app := newApp(t, func(r *craft.Router) {
		r.Get("/missing", craft.Method("pages", "Nope"))
	},
		craft.WithController("pages", pages{}),
		craft.WithErrorHandler(func(c craft.Context, err error) error {
			got = err
			return c.String(http.StatusTeapot, "custom")
		}),
	)

	rec := do(app, http.MethodGet, "/missing")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "custom", rec.Body.String())
	assert.True(t, craft.IsRouteError(got, craft.KindHandlerResolution))
}

func TestRequestInput(t *testing.T) {
	t.Parallel()

	app := newApp(t, func(r *craft.Router) {
		r.Post("/echo/{id}", craft.Func(func(id string, req *craft.Request) string {
			return id + ":" + req.String("name")
		}))
		r.Get("/sum", craft.RouteFunc(func(c craft.Context) (any, error) {
			return craft.Query[int](c, "a") + craft.QueryDefault(c, "b", 10), nil
		}))
		r.Delete("/items", text("deleted"))
		r.Put("/items", text("updated"))
	})

	t.Run("trailing request argument", func(t *testing.T) {
		t.Parallel()
		rec := postForm(app, "/echo/5", url.Values{"name": {"ann"}})
		assert.Equal(t, "5:ann", rec.Body.String())
	})

	t.Run("typed query", func(t *testing.T) {
		t.Parallel()
		rec := do(app, http.MethodGet, "/sum?a=2")
		assert.Equal(t, "12", rec.Body.String())
	})

	t.Run("json body", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/echo/6", strings.NewReader(`{"name":"bo"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		assert.Equal(t, "6:bo", rec.Body.String())
	})

	t.Run("method override", func(t *testing.T) {
		t.Parallel()
		rec := postForm(app, "/items", url.Values{"_method": {"DELETE"}})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "deleted", rec.Body.String())

		rec = postForm(app, "/items", url.Values{"_method": {"put"}})
		assert.Equal(t, "updated", rec.Body.String())
	})
}

func TestMethodOverrideDisabled(t *testing.T) {
	t.Parallel()

	app := newApp(t, func(r *craft.Router) {
		r.Delete("/items", text("deleted"))
	}, craft.WithMethodOverride(false))

	rec := postForm(app, "/items", url.Values{"_method": {"DELETE"}})
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "DELETE", rec.Header().Get("Allow"))
}

func TestBasePath(t *testing.T) {
	t.Parallel()

	app := newApp(t, func(r *craft.Router) {
		r.Get("/hello", text("hello")).Name("hello")
		r.Get("/users/{id}", craft.RouteFunc(func(c craft.Context) (any, error) {
			u, _ := c.URLFor("user", c.Param(0))
			return u, nil
		})).Name("user")
	}, craft.WithBasePath("/app/"))

	rec := do(app, http.MethodGet, "/app/hello")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())

	p, ok := app.Path("hello")
	require.True(t, ok)
	assert.Equal(t, "/app/hello", p)

	rec = do(app, http.MethodGet, "/app/users/42")
	assert.Equal(t, "http://example.com/app/users/42", rec.Body.String())
}

func TestDuplicates(t *testing.T) {
	t.Parallel()

	routes := func(r *craft.Router) {
		r.Get("/a", text("first"))
		r.Get("/a", text("second"))
	}

	t.Run("later wins", func(t *testing.T) {
		t.Parallel()
		app := newApp(t, routes)
		assert.Equal(t, "second", do(app, http.MethodGet, "/a").Body.String())
		assert.Len(t, app.Routes(), 1)
	})

	t.Run("strict", func(t *testing.T) {
		t.Parallel()
		_, err := craft.New(craft.WithRoutes(routes), craft.WithStrictRoutes())
		require.ErrorIs(t, err, craft.ErrDuplicateRoute)
	})

	t.Run("strict names", func(t *testing.T) {
		t.Parallel()
		_, err := craft.New(craft.WithStrictRoutes(), craft.WithRoutes(func(r *craft.Router) {
			r.Get("/a", text("a")).Name("same")
			r.Get("/b", text("b")).Name("same")
		}))
		require.ErrorIs(t, err, craft.ErrDuplicateName)
	})
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	_, err := craft.New(craft.WithRoutes(func(r *craft.Router) {
		r.Get("/", text("home"), craft.Named("auth"))
	}))
	require.ErrorIs(t, err, craft.ErrUnknownMiddleware)

	_, err = craft.New(craft.WithRoutes(func(r *craft.Router) {
		r.Group("/open")
		r.Get("/x", text("x"))
	}))
	require.ErrorIs(t, err, craft.ErrUnbalancedGroup)

	_, err = craft.New(craft.WithRoutes(func(r *craft.Router) {
		r.Add(http.MethodPatch, "/x", text("x"))
	}))
	require.Error(t, err)
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	app := newApp(t, func(r *craft.Router) {
		r.Post("/form", text("form"))
		r.Get("/users/{id}", text("user")).Name("user")
		r.API().Get("ping", text("pong"))
	})

	routes := app.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, craft.RouteInfo{Method: "GET", Path: "/users/{id}", Name: "user", Params: 1}, routes[0])
	assert.Equal(t, craft.RouteInfo{Method: "GET", Path: "/api/ping", API: true}, routes[1])
	assert.Equal(t, craft.RouteInfo{Method: "POST", Path: "/form"}, routes[2])
}

func TestHTTPMiddleware(t *testing.T) {
	t.Parallel()

	app := newApp(t, func(r *craft.Router) {
		r.Get("/", craft.RouteFunc(func(c craft.Context) (any, error) {
			return craft.ContextValue[string](c, "user"), nil
		}))
	}, craft.WithMiddleware(func(next craft.HandlerFunc) craft.HandlerFunc {
		return func(c craft.Context) error {
			c.SetHeader("X-Test", "1")
			c.Set("user", "ann")
			return next(c)
		}
	}))

	rec := do(app, http.MethodGet, "/")
	assert.Equal(t, "1", rec.Header().Get("X-Test"))
	assert.Equal(t, "ann", rec.Body.String())

	rec = do(app, http.MethodGet, "/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Test"))
}

func TestDebugErrors(t *testing.T) {
	t.Parallel()

	app := newApp(t, func(r *craft.Router) {
		r.Get("/fail", craft.Func(func() error { return errors.New("boom") }))
	}, craft.WithDebug(true))

	rec := do(app, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "404 Not Found: no route matches GET /nope", rec.Body.String())

	rec = do(app, http.MethodGet, "/fail")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "boom", rec.Body.String())
}

func TestStaticFilesAndHealth(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"public/app.css": {Data: []byte("body{}")}}
	app := newApp(t, func(r *craft.Router) {
		r.Get("/", text("home"))
	},
		craft.WithStaticFiles("/assets/", fsys, "public"),
		craft.WithHealthChecks(craft.WithReadinessCheck("fail", func(context.Context) error {
			return errors.New("down")
		})),
	)

	rec := do(app, http.MethodGet, "/assets/app.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())

	rec = do(app, http.MethodGet, "/assets/")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, http.StatusOK, do(app, http.MethodGet, "/health/live").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(app, http.MethodGet, "/health/ready").Code)
	assert.False(t, app.CheckHealth(context.Background()).Healthy())
}

func TestSessions(t *testing.T) {
	t.Parallel()

	app := newApp(t, func(r *craft.Router) {
		r.Get("/set", craft.RouteFunc(func(c craft.Context) (any, error) {
			if err := c.SetSessionValue("user", "ann"); err != nil {
				return nil, err
			}
			return "ok", c.Flash("notice", "saved")
		}))
		r.Get("/get", craft.RouteFunc(func(c craft.Context) (any, error) {
			v, err := c.SessionValue("user")
			if err != nil {
				return nil, err
			}
			flash, err := c.TakeFlash("notice")
			return fmt.Sprint(v, " ", flash), err
		}))
	}, craft.WithSession(session.NewMemoryStore(), craft.WithSessionSecret("secret")))

	rec := do(app, http.MethodGet, "/set")
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/get", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	assert.Equal(t, "ann saved", rec.Body.String())
}

func TestSessionNotConfigured(t *testing.T) {
	t.Parallel()

	app := newApp(t, func(r *craft.Router) {
		r.Get("/", craft.RouteFunc(func(c craft.Context) (any, error) {
			_, err := c.Session()
			return errors.Is(err, craft.ErrSessionNotConfigured), nil
		}))
	})

	assert.Equal(t, "true", do(app, http.MethodGet, "/").Body.String())
}

func TestSmokeTest(t *testing.T) {
	t.Parallel()

	app := newApp(t, func(r *craft.Router) {
		r.Get("/hello/{name}", craft.Func(func(name string) string { return "Hello " + name }))
		r.Get("/broken", craft.Func(func() (string, error) { return "", errors.New("broken") }))
		r.API().Get("ping", craft.Func(func() map[string]any { return map[string]any{"pong": true} }))
		r.API().Get("void", craft.Func(func() any { return nil }))
	})

	report := app.SmokeTest(context.Background(), "bob")
	require.Len(t, report.Results, 4)
	assert.Equal(t, "bob", report.Value)
	assert.Equal(t, 2, report.Passed())
	assert.Equal(t, 2, report.Failed())
	assert.False(t, report.OK())

	hello := report.Results[0]
	assert.Equal(t, "/hello/bob", hello.Path)
	assert.Equal(t, "Hello bob", hello.Output)
	assert.Equal(t, craft.SmokePass, hello.Result)

	assert.Equal(t, craft.SmokeFail, report.Results[1].Result)
	assert.Equal(t, http.StatusInternalServerError, report.Results[1].Status)

	assert.Equal(t, "GET (API)", report.Results[2].Label)
	assert.Equal(t, craft.SmokePass, report.Results[2].Result)
	assert.Equal(t, craft.SmokeFail, report.Results[3].Result)

	var table strings.Builder
	require.NoError(t, report.WriteTable(&table))
	assert.Contains(t, table.String(), "/hello/bob")

	var js strings.Builder
	require.NoError(t, report.JSON(&js))
	assert.Contains(t, js.String(), `"result": "PASS"`)
}

func TestSmokeTestCapturesFailures(t *testing.T) {
	t.Parallel()

	app := newApp(t, func(r *craft.Router) {
		r.Get("/panics", craft.Func(func() string { panic("kaboom") }))
		r.Get("/missing-handler", craft.Method("ghost", "Index"))
		r.API().Get("panics", craft.Func(func() map[string]any { panic("api kaboom") }))
	}, craft.WithDebug(true))

	report := app.SmokeTest(context.Background(), "")
	require.Len(t, report.Results, 3)
	assert.Equal(t, 0, report.Passed())

	panics := report.Results[0]
	assert.Equal(t, craft.SmokeFail, panics.Result)
	assert.Equal(t, http.StatusInternalServerError, panics.Status)
	assert.Equal(t, "kaboom", panics.Output)

	missing := report.Results[1]
	assert.Equal(t, "/missing-handler", missing.Route)
	assert.Equal(t, craft.SmokeFail, missing.Result)
	assert.Equal(t, http.StatusInternalServerError, missing.Status)
	assert.Contains(t, missing.Output, `controller "ghost" not found`)

	api := report.Results[2]
	assert.Equal(t, "GET (API)", api.Label)
	assert.Equal(t, craft.SmokeFail, api.Result)
	assert.Equal(t, "api kaboom", api.Output)
}

func TestSmokeTestEscapesValue(t *testing.T) {
	t.Parallel()

	app := newApp(t, func(r *craft.Router) {
		r.Get("/hello/{name}", craft.Func(func(name string) string { return "Hello " + name }))
	})

	for _, value := range []string{"a b", "%zz", "a?b#c"} {
		var report craft.Report
		require.NotPanics(t, func() { report = app.SmokeTest(context.Background(), value) })
		require.Len(t, report.Results, 1)

		res := report.Results[0]
		assert.Equal(t, craft.SmokePass, res.Result, value)
		assert.Equal(t, "/hello/"+value, res.Path)
		assert.Equal(t, "Hello "+value, res.Output)
	}
}
