package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"bozoruz/internal/domain"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// DefaultSessionKey is the namespace under which the session is persisted
const DefaultSessionKey = "auth-storage"

// SessionRepository persists the current session under a namespace key.
// Load returns ErrSessionNotFound when nothing was saved under key.
type SessionRepository interface {
	Load(ctx context.Context, key string) (*domain.Session, error)
	Save(ctx context.Context, key string, session *domain.Session) error
}

type memorySessionRepository struct {
	mu      sync.Mutex
	entries map[string][]byte
}

// NewMemorySessionRepository creates a process-local session store.
// Entries are kept encoded so stored values never alias caller memory.
func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{entries: make(map[string][]byte)}
}

func (r *memorySessionRepository) Load(ctx context.Context, key string) (*domain.Session, error) {
	r.mu.Lock()
	data, ok := r.entries[key]
	r.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	return decodeSession(data)
}

func (r *memorySessionRepository) Save(ctx context.Context, key string, session *domain.Session) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.entries[key] = data
	r.mu.Unlock()
	return nil
}

// storedSession is the persisted envelope around a session
type storedSession struct {
	State   domain.Session `json:"state"`
	Version int            `json:"version"`
}

func encodeSession(session *domain.Session) ([]byte, error) {
	s := domain.AnonymousSession()
	if session != nil {
		s = session.Normalize()
	}
	data, err := json.Marshal(storedSession{State: s})
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return data, nil
}

func decodeSession(data []byte) (*domain.Session, error) {
	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	s := stored.State.Normalize()
	return &s, nil
}
