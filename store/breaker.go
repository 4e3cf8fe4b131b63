// File: store/breaker.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Circuit breaker around a UserStore. Only backing-storage faults count as
// failures; duplicate users and bad credentials are normal outcomes.

package store

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/momentics/hioload-httpd/api"
)

// BreakerConfig tunes the circuit breaker.
type BreakerConfig struct {
	Name      string
	TripCount uint32        // consecutive faults that open the circuit
	Timeout   time.Duration // open period before half-open
}

// BreakerStore wraps a UserStore with a circuit breaker. While open, calls
// fail fast with a *api.StoreError wrapping gobreaker.ErrOpenState.
type BreakerStore struct {
	next UserStore
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker wraps next. A zero TripCount defaults to 5.
func WithBreaker(next UserStore, cfg BreakerConfig, log *zap.Logger) *BreakerStore {
	if cfg.TripCount == 0 {
		cfg.TripCount = 5
	}
	if cfg.Name == "" {
		cfg.Name = "user-store"
	}
	if log == nil {
		log = zap.NewNop()
	}
	trip := cfg.TripCount
	settings := gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	}
	return &BreakerStore{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

// RegisterUser implements UserStore.
func (b *BreakerStore) RegisterUser(ctx context.Context, username, password string) (bool, error) {
	return b.call("register", func() (bool, error) {
		return b.next.RegisterUser(ctx, username, password)
	})
}

// LoginUser implements UserStore.
func (b *BreakerStore) LoginUser(ctx context.Context, username, password string) (bool, error) {
	return b.call("login", func() (bool, error) {
		return b.next.LoginUser(ctx, username, password)
	})
}

// State returns the breaker state.
func (b *BreakerStore) State() gobreaker.State { return b.cb.State() }

// Close closes the wrapped store.
func (b *BreakerStore) Close() error { return b.next.Close() }

func (b *BreakerStore) call(op string, fn func() (bool, error)) (bool, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if _, ok := err.(*api.StoreError); ok {
			return false, err
		}
		return false, &api.StoreError{Op: op, Cause: err}
	}
	return v.(bool), nil
}
