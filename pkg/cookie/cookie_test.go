package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datahihi1/craft-mini/pkg/cookie"
)

const testSecret = "this-is-a-32-byte-or-longer-key!"

func roundTrip(t *testing.T, w *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestPlainCookies(t *testing.T) {
	t.Parallel()

	m := cookie.New(cookie.WithPath("/app"), cookie.WithSecure(true), cookie.WithSameSite(http.SameSiteStrictMode))

	t.Run("missing cookie", func(t *testing.T) {
		t.Parallel()
		_, err := m.Get(httptest.NewRequest(http.MethodGet, "/", nil), "missing")
		require.ErrorIs(t, err, cookie.ErrNotFound)
	})

	t.Run("set applies attributes and reads back", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		m.Set(w, "theme", "dark", 3600)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "/app", cookies[0].Path)
		assert.Equal(t, 3600, cookies[0].MaxAge)
		assert.True(t, cookies[0].Secure)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)

		val, err := m.Get(roundTrip(t, w), "theme")
		require.NoError(t, err)
		assert.Equal(t, "dark", val)
	})

	t.Run("delete expires the cookie", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		m.Delete(w, "theme")

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Negative(t, cookies[0].MaxAge)
	})
}

func TestSignedCookies(t *testing.T) {
	t.Parallel()

	t.Run("requires secret", func(t *testing.T) {
		t.Parallel()
		m := cookie.New(cookie.WithSecret("short"))
		assert.False(t, m.CanSign())
		require.ErrorIs(t, m.SetSigned(httptest.NewRecorder(), "sid", "v", 0), cookie.ErrNoSecret)
		_, err := m.GetSigned(httptest.NewRequest(http.MethodGet, "/", nil), "sid")
		require.ErrorIs(t, err, cookie.ErrNoSecret)
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		m := cookie.New(cookie.WithSecret(testSecret))
		w := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(w, "sid", "token-123", 60))

		val, err := m.GetSigned(roundTrip(t, w), "sid")
		require.NoError(t, err)
		assert.Equal(t, "token-123", val)
	})

	t.Run("tampered value", func(t *testing.T) {
		t.Parallel()
		m := cookie.New(cookie.WithSecret(testSecret))
		w := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(w, "sid", "token-123", 60))

		c := w.Result().Cookies()[0]
		_, sig, _ := strings.Cut(c.Value, ".")
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "sid", Value: "dG9rZW4tOTk5." + sig})

		_, err := m.GetSigned(r, "sid")
		require.ErrorIs(t, err, cookie.ErrBadSig)
	})

	t.Run("signature bound to name", func(t *testing.T) {
		t.Parallel()
		m := cookie.New(cookie.WithSecret(testSecret))
		w := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(w, "sid", "token-123", 60))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "other", Value: w.Result().Cookies()[0].Value})
		_, err := m.GetSigned(r, "other")
		require.ErrorIs(t, err, cookie.ErrBadSig)
	})

	t.Run("malformed value", func(t *testing.T) {
		t.Parallel()
		m := cookie.New(cookie.WithSecret(testSecret))
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "sid", Value: "no-dot"})
		_, err := m.GetSigned(r, "sid")
		require.ErrorIs(t, err, cookie.ErrBadSig)
	})
}
