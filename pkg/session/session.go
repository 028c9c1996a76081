package session

import (
	"fmt"
	"time"
)

// Session is server-side state addressed by the token kept in a cookie.
type Session struct {
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
	Values    map[string]any `json:"values"`
	Flashes   map[string]any `json:"flashes,omitempty"` // read-once messages
	ID        string         `json:"id"`
	Token     string         `json:"-"`

	dirty bool
	isNew bool
}

// New creates a session that has not been stored yet.
func New(id, token string, expiresAt time.Time) *Session {
	return &Session{
		ID:        id,
		Token:     token,
		Values:    make(map[string]any),
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
		isNew:     true,
		dirty:     true,
	}
}

// SetValue stores a value and marks the session dirty.
func (s *Session) SetValue(key string, val any) {
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[key] = val
	s.dirty = true
}

// GetValue retrieves a value.
func (s *Session) GetValue(key string) (any, bool) {
	val, ok := s.Values[key]
	return val, ok
}

// DeleteValue removes a value; the session becomes dirty only if the key existed.
func (s *Session) DeleteValue(key string) {
	if _, exists := s.Values[key]; exists {
		delete(s.Values, key)
		s.dirty = true
	}
}

// SetFlash stores a message that TakeFlash returns once.
func (s *Session) SetFlash(key string, val any) {
	if s.Flashes == nil {
		s.Flashes = make(map[string]any)
	}
	s.Flashes[key] = val
	s.dirty = true
}

// TakeFlash returns a flash message and removes it.
func (s *Session) TakeFlash(key string) (any, bool) {
	val, ok := s.Flashes[key]
	if ok {
		delete(s.Flashes, key)
		s.dirty = true
	}
	return val, ok
}

// Keys of the conventional flash messages.
const (
	FlashError   = "error"
	FlashSuccess = "success"
)

// WithError stores an error flash message.
func (s *Session) WithError(msg string) *Session {
	s.SetFlash(FlashError, msg)
	return s
}

// WithSuccess stores a success flash message.
func (s *Session) WithSuccess(msg string) *Session {
	s.SetFlash(FlashSuccess, msg)
	return s
}

func (s *Session) IsDirty() bool { return s.dirty }
func (s *Session) MarkDirty()    { s.dirty = true }
func (s *Session) ClearDirty()   { s.dirty = false }
func (s *Session) IsNew() bool   { return s.isNew }
func (s *Session) ClearNew()     { s.isNew = false }

// IsExpired reports whether the session is past its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// TTL returns the time left until expiry, never negative.
func (s *Session) TTL() time.Duration {
	return max(time.Until(s.ExpiresAt), 0)
}

// Value retrieves a session value with a type check.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	if s == nil {
		return zero, ErrNotFound
	}
	val, ok := s.GetValue(key)
	if !ok {
		return zero, ErrNotFound
	}
	typed, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrTypeMismatch, key)
	}
	return typed, nil
}

// ValueOr retrieves a session value or returns defaultVal.
func ValueOr[T any](s *Session, key string, defaultVal T) T {
	val, err := Value[T](s, key)
	if err != nil {
		return defaultVal
	}
	return val
}
