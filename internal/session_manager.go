package internal

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/datahihi1/craft-mini/pkg/cookie"
	"github.com/datahihi1/craft-mini/pkg/session"
)

// Default session configuration.
const (
	defaultSessionCookieName = "craft_session"
	defaultSessionTTL        = 2 * time.Hour
)

// SessionManager ties a session store to the session cookie.
type SessionManager struct {
	store      session.Store
	cookies    *cookie.Manager
	cookieName string
	ttl        time.Duration
}

// SessionOption configures the SessionManager.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	cookieName string
	secret     string
	domain     string
	path       string
	ttl        time.Duration
	sameSite   http.SameSite
	secure     bool
}

// WithSessionCookieName sets the session cookie name. Default: "craft_session".
func WithSessionCookieName(name string) SessionOption {
	return func(c *sessionConfig) {
		if name != "" {
			c.cookieName = name
		}
	}
}

// WithSessionTTL sets how long an idle session lives. Default: 2 hours.
func WithSessionTTL(ttl time.Duration) SessionOption {
	return func(c *sessionConfig) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithSessionSecret signs the session cookie. Secrets shorter than 32 bytes
// leave the cookie unsigned.
func WithSessionSecret(secret string) SessionOption {
	return func(c *sessionConfig) { c.secret = secret }
}

// WithSessionDomain sets the session cookie domain.
func WithSessionDomain(domain string) SessionOption {
	return func(c *sessionConfig) { c.domain = domain }
}

// WithSessionPath sets the session cookie path.
func WithSessionPath(path string) SessionOption {
	return func(c *sessionConfig) { c.path = path }
}

// WithSessionSecure sets the Secure flag on the session cookie.
func WithSessionSecure(secure bool) SessionOption {
	return func(c *sessionConfig) { c.secure = secure }
}

// WithSessionSameSite sets the SameSite attribute on the session cookie.
func WithSessionSameSite(sameSite http.SameSite) SessionOption {
	return func(c *sessionConfig) { c.sameSite = sameSite }
}

// NewSessionManager creates a SessionManager over store.
func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	cfg := sessionConfig{
		cookieName: defaultSessionCookieName,
		ttl:        defaultSessionTTL,
		path:       "/",
		sameSite:   http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &SessionManager{
		store:      store,
		cookieName: cfg.cookieName,
		ttl:        cfg.ttl,
		cookies: cookie.New(
			cookie.WithSecret(cfg.secret),
			cookie.WithDomain(cfg.domain),
			cookie.WithPath(cfg.path),
			cookie.WithSecure(cfg.secure),
			cookie.WithSameSite(cfg.sameSite),
		),
	}
}

// Load restores the session named by the request cookie.
// Returns nil, nil when the request carries no session cookie.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*session.Session, error) {
	token, err := sm.token(r)
	if err != nil {
		if errors.Is(err, cookie.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if token == "" {
		return nil, nil
	}
	return sm.store.Get(ctx, token)
}

// New creates an unsaved session for r.
func (sm *SessionManager) New(_ *http.Request) *session.Session {
	return session.New(uuid.NewString(), generateToken(), time.Now().Add(sm.ttl))
}

// Save persists sess and refreshes the cookie. Each save extends the session
// lifetime by the configured TTL.
func (sm *SessionManager) Save(ctx context.Context, w http.ResponseWriter, sess *session.Session) error {
	sess.ExpiresAt = time.Now().Add(sm.ttl)
	if err := sm.store.Save(ctx, sess, sm.ttl); err != nil {
		return err
	}

	maxAge := int(sm.ttl / time.Second)
	if sm.cookies.CanSign() {
		if err := sm.cookies.SetSigned(w, sm.cookieName, sess.Token, maxAge); err != nil {
			return fmt.Errorf("set session cookie: %w", err)
		}
	} else {
		sm.cookies.Set(w, sm.cookieName, sess.Token, maxAge)
	}

	sess.ClearNew()
	sess.ClearDirty()
	return nil
}

// Clear expires the session cookie.
func (sm *SessionManager) Clear(w http.ResponseWriter) {
	sm.cookies.Delete(w, sm.cookieName)
}

// Store returns the underlying session store.
func (sm *SessionManager) Store() session.Store {
	return sm.store
}

// CookieName returns the name of the session cookie.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

func (sm *SessionManager) token(r *http.Request) (string, error) {
	if sm.cookies.CanSign() {
		return sm.cookies.GetSigned(r, sm.cookieName)
	}
	return sm.cookies.Get(r, sm.cookieName)
}

// generateToken returns 32 random bytes, URL-safe encoded.
func generateToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b) // never fails since Go 1.24
	return base64.RawURLEncoding.EncodeToString(b)
}
