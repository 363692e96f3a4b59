// Package session implements the login gate in front of destructive admin
// actions. Sessions are explicit values looked up by id; nothing is kept in
// request-global state.
package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MinCredentialLength applies to both username and password
const MinCredentialLength = 3

// DefaultTTL matches a one hour session lifetime
const DefaultTTL = time.Hour

var (
	ErrUsernameTooShort = errors.New("Username must be at least 3 characters")
	ErrPasswordTooShort = errors.New("Password must be at least 3 characters")
)

// Session is one authenticated login
type Session struct {
	ID        string
	User      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store keeps active sessions
type Store interface {
	Create(user string) (*Session, error)
	Get(id string) (*Session, bool)
	Delete(id string)
}

// ValidateCredentials checks the public-access rules: a trimmed username and
// a password of at least MinCredentialLength characters. No account lookup
// takes place. It returns the trimmed username.
func ValidateCredentials(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if len(username) < MinCredentialLength {
		return "", ErrUsernameTooShort
	}
	if len(password) < MinCredentialLength {
		return "", ErrPasswordTooShort
	}
	return username, nil
}

// MemoryStore is a process-local Store with a fixed TTL
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore returns an empty store. ttl <= 0 means DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// TTL returns the lifetime given to new sessions
func (m *MemoryStore) TTL() time.Duration {
	return m.ttl
}

func (m *MemoryStore) Create(user string) (*Session, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	now := m.now()
	s := &Session{
		ID:        id.String(),
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	copied := *s
	return &copied, nil
}

// Get returns a copy of the session, dropping it if it has expired
func (m *MemoryStore) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if s.Expired(m.now()) {
		delete(m.sessions, id)
		return nil, false
	}
	copied := *s
	return &copied, true
}

func (m *MemoryStore) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Sweep removes expired sessions and returns how many were dropped
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of stored sessions, expired ones included
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
