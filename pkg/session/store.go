package session

import (
	"context"
	"maps"
	"sync"
	"time"
)

// Store persists sessions by token.
type Store interface {
	// Get returns the session for token.
	// Returns ErrNotFound if it does not exist and ErrExpired if it expired.
	Get(ctx context.Context, token string) (*Session, error)

	// Save creates or replaces the session, keeping it for ttl.
	Save(ctx context.Context, s *Session, ttl time.Duration) error

	// Delete removes the session for token. Deleting a missing session is not an error.
	Delete(ctx context.Context, token string) error
}

// MemoryStore keeps sessions in process memory.
// Suitable for development and single-instance deployments.
type MemoryStore struct {
	sessions map[string]memoryEntry
	mu       sync.RWMutex
}

type memoryEntry struct {
	expires time.Time
	sess    Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memoryEntry)}
}

func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.RLock()
	entry, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(entry.expires) {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return nil, ErrExpired
	}

	sess := entry.sess
	sess.Values = maps.Clone(entry.sess.Values)
	sess.Flashes = maps.Clone(entry.sess.Flashes)
	sess.Token = token
	return &sess, nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session, ttl time.Duration) error {
	stored := *s
	stored.Values = maps.Clone(s.Values)
	stored.Flashes = maps.Clone(s.Flashes)
	stored.dirty = false
	stored.isNew = false

	m.mu.Lock()
	m.sessions[s.Token] = memoryEntry{sess: stored, expires: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
