package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/momentics/hioload-httpd/api"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(":memory:", WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func exerciseStore(t *testing.T, s UserStore) {
	ctx := context.Background()

	ok, err := s.RegisterUser(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.RegisterUser(ctx, "alice", "other")
	require.NoError(t, err)
	assert.False(t, ok, "duplicate username")

	ok, err = s.LoginUser(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.LoginUser(ctx, "alice", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.LoginUser(ctx, "bob", "secret")
	require.NoError(t, err)
	assert.False(t, ok, "unknown user")
}

func TestSQLiteStore(t *testing.T) {
	exerciseStore(t, openTestSQLite(t))
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	exerciseStore(t, m)
	assert.Equal(t, 1, m.Len())
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.db")

	s, err := OpenSQLite(path, WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	ok, err := s.RegisterUser(context.Background(), "carol", "pw")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path, WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	defer s.Close()
	ok, err = s.LoginUser(context.Background(), "carol", "pw")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLiteStore_ClosedDatabaseIsStoreError(t *testing.T) {
	s, err := OpenSQLite(":memory:", WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	ok, err := s.LoginUser(context.Background(), "alice", "secret")
	assert.False(t, ok)
	var serr *api.StoreError
	assert.ErrorAs(t, err, &serr)
}

func TestIsDuplicateKey_OnlyKeyConflicts(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, "INSERT INTO users (username, password) VALUES ('x', 'h')")
	require.NoError(t, err)

	_, err = s.db.ExecContext(ctx, "INSERT INTO users (username, password) VALUES ('x', 'h')")
	require.Error(t, err)
	assert.True(t, isDuplicateKey(err))

	_, err = s.db.ExecContext(ctx, "INSERT INTO users (username, password) VALUES ('y', NULL)")
	require.Error(t, err)
	assert.False(t, isDuplicateKey(err), "NOT NULL violation is not a duplicate")

	assert.False(t, isDuplicateKey(errors.New("UNIQUE constraint failed")))
}

func TestSQLiteStore_ConcurrentRegistration(t *testing.T) {
	s := openTestSQLite(t)

	const n = 20
	var wg sync.WaitGroup
	results := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// half the goroutines race for the same name
			name := fmt.Sprintf("user-%d", i)
			if i%2 == 0 {
				name = "shared"
			}
			ok, err := s.RegisterUser(context.Background(), name, "pw")
			assert.NoError(t, err)
			results[i] = ok
		}(i)
	}
	wg.Wait()

	shared := 0
	for i, ok := range results {
		if i%2 == 0 && ok {
			shared++
		}
		if i%2 == 1 {
			assert.True(t, ok)
		}
	}
	assert.Equal(t, 1, shared)
}

type faultyStore struct {
	calls int
}

func (f *faultyStore) RegisterUser(context.Context, string, string) (bool, error) {
	f.calls++
	return false, &api.StoreError{Op: "register", Cause: errors.New("disk full")}
}

func (f *faultyStore) LoginUser(context.Context, string, string) (bool, error) {
	f.calls++
	return false, nil
}

func (f *faultyStore) Close() error { return nil }

func TestBreakerStore_TripsOnFaultsOnly(t *testing.T) {
	next := &faultyStore{}
	b := WithBreaker(next, BreakerConfig{TripCount: 2, Timeout: time.Minute}, nil)
	ctx := context.Background()

	// rejected logins are not faults
	for i := 0; i < 5; i++ {
		ok, err := b.LoginUser(ctx, "x", "y")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())

	for i := 0; i < 2; i++ {
		_, err := b.RegisterUser(ctx, "x", "y")
		var serr *api.StoreError
		require.ErrorAs(t, err, &serr)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	calls := next.calls
	_, err := b.RegisterUser(ctx, "x", "y")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, calls, next.calls, "open circuit must not reach the store")
}

func TestBreakerStore_PassesThrough(t *testing.T) {
	exerciseStore(t, WithBreaker(NewMemoryStore(), BreakerConfig{}, nil))
}
