// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake collaborators for testing: a scripted UserStore and an inline
// executor. Behavior is predictable and every call is recorded.

package fake

import (
	"context"
	"sync"
)

// Call records one store invocation.
type Call struct {
	Op       string
	Username string
	Password string
}

// UserStore answers from a fixed user table unless an error is scripted.
type UserStore struct {
	mu          sync.Mutex
	users       map[string]string
	calls       []Call
	registerErr error
	loginErr    error
	closed      bool
}

// NewUserStore creates a fake store seeded with users (name -> password).
func NewUserStore(users map[string]string) *UserStore {
	s := &UserStore{users: make(map[string]string, len(users))}
	for k, v := range users {
		s.users[k] = v
	}
	return s
}

// FailRegister makes every RegisterUser return err.
func (s *UserStore) FailRegister(err error) {
	s.mu.Lock()
	s.registerErr = err
	s.mu.Unlock()
}

// FailLogin makes every LoginUser return err.
func (s *UserStore) FailLogin(err error) {
	s.mu.Lock()
	s.loginErr = err
	s.mu.Unlock()
}

// RegisterUser implements store.UserStore.
func (s *UserStore) RegisterUser(_ context.Context, username, password string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: "register", Username: username, Password: password})
	if s.registerErr != nil {
		return false, s.registerErr
	}
	if _, exists := s.users[username]; exists {
		return false, nil
	}
	s.users[username] = password
	return true, nil
}

// LoginUser implements store.UserStore.
func (s *UserStore) LoginUser(_ context.Context, username, password string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Op: "login", Username: username, Password: password})
	if s.loginErr != nil {
		return false, s.loginErr
	}
	stored, ok := s.users[username]
	return ok && stored == password, nil
}

// Close marks the store closed.
func (s *UserStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Calls returns a copy of the recorded calls.
func (s *UserStore) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Closed reports whether Close was called.
func (s *UserStore) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
