package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		pass     string
		wantUser string
		wantErr  error
	}{
		{"valid", "alice", "pwd", "alice", nil},
		{"trimmed", "  bob  ", "secret", "bob", nil},
		{"short user", "al", "secret", "", ErrUsernameTooShort},
		{"whitespace user", "   a  ", "secret", "", ErrUsernameTooShort},
		{"empty user", "", "secret", "", ErrUsernameTooShort},
		{"short password", "alice", "pw", "", ErrPasswordTooShort},
		{"password not trimmed", "alice", "   ", "alice", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := ValidateCredentials(tt.user, tt.pass)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, user)
		})
	}
}

func TestCreateGetDelete(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	s, err := store.Create("alice")
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)

	got, ok := store.Get(s.ID)
	require.True(t, ok)
	assert.Equal(t, "alice", got.User)

	store.Delete(s.ID)
	_, ok = store.Get(s.ID)
	assert.False(t, ok)

	_, ok = store.Get("unknown")
	assert.False(t, ok)
}

func TestSessionsExpire(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	s, err := store.Create("alice")
	require.NoError(t, err)
	other, err := store.Create("bob")
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	_, ok := store.Get(s.ID)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = store.Get(s.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len(), "expired session dropped on access")

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 0, store.Len())
	_, ok = store.Get(other.ID)
	assert.False(t, ok)
}

func TestDefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultTTL, NewMemoryStore(0).TTL())
}

func TestIDsAreUnique(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	seen := make(map[string]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := store.Create("user")
			assert.NoError(t, err)
			mu.Lock()
			seen[s.ID] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
	assert.Equal(t, 50, store.Len())
}

func TestGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	s, err := store.Create("alice")
	require.NoError(t, err)

	got, _ := store.Get(s.ID)
	got.User = "mallory"

	again, _ := store.Get(s.ID)
	assert.Equal(t, "alice", again.User)
}
