package directory

import (
	"context"
	"crypto/subtle"
	"sync"
)

// MemoryStore implements Store using an in-memory map. This is the
// default backend; all users are lost when the process exits.
//
// MemoryStore is thread-safe and supports concurrent access using
// sync.RWMutex. The critical sections only touch the map, so unrelated
// requests are never serialized behind a slow operation.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]string
}

// NewMemoryStore creates an empty in-memory user directory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]string),
	}
}

// Register adds a new user.
func (s *MemoryStore) Register(ctx context.Context, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return ErrExists
	}
	s.users[username] = password
	return nil
}

// Authenticate checks a username/password pair.
func (s *MemoryStore) Authenticate(ctx context.Context, username, password string) error {
	s.mu.RLock()
	stored, ok := s.users[username]
	s.mu.RUnlock()

	if !ok {
		return ErrBadCredentials
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) != 1 {
		return ErrBadCredentials
	}
	return nil
}

// Exists reports whether a username is registered.
func (s *MemoryStore) Exists(ctx context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.users[username]
	return ok, nil
}

// UpdatePassword replaces a user's credential.
func (s *MemoryStore) UpdatePassword(ctx context.Context, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; !ok {
		return ErrNotFound
	}
	s.users[username] = password
	return nil
}

// Close is a no-op for the memory backend.
func (s *MemoryStore) Close() error {
	return nil
}
