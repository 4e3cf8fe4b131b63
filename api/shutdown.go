// File: api/shutdown.go
// Package api defines unified graceful shutdown contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "context"

// GracefulShutdown is implemented by components that release resources on stop.
type GracefulShutdown interface {
	// Shutdown stops the component and releases its resources, bounded by ctx.
	Shutdown(ctx context.Context) error
}
