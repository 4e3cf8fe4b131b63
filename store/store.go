// File: store/store.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// UserStore contract shared by all credential backends.

package store

import "context"

// UserStore persists and verifies username/password pairs. Implementations
// must be safe for concurrent use by every worker.
type UserStore interface {
	// RegisterUser returns false, nil for a duplicate username and
	// false, *api.StoreError for a backing-storage fault.
	RegisterUser(ctx context.Context, username, password string) (bool, error)

	// LoginUser returns false, nil for an unknown username or a wrong password
	// and false, *api.StoreError for a backing-storage fault.
	LoginUser(ctx context.Context, username, password string) (bool, error)

	// Close releases the backend.
	Close() error
}
