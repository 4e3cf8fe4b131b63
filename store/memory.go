// File: store/memory.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package store

import (
	"context"
	"crypto/subtle"
	"sync"
)

// MemoryStore is a process-local UserStore, used when no database path is
// configured and in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]string)}
}

// RegisterUser adds the user unless the name is taken.
func (m *MemoryStore) RegisterUser(_ context.Context, username, password string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[username]; exists {
		return false, nil
	}
	m.users[username] = password
	return true, nil
}

// LoginUser verifies the stored password.
func (m *MemoryStore) LoginUser(_ context.Context, username, password string) (bool, error) {
	m.mu.RLock()
	stored, ok := m.users[username]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1, nil
}

// Len returns the number of registered users.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
