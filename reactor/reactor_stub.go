//go:build !linux

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package reactor

import "github.com/momentics/hioload-httpd/api"

// NewReactor returns api.ErrUnsupportedPlatform on platforms without epoll.
func NewReactor(maxEvents int) (api.Reactor, error) {
	return nil, api.ErrUnsupportedPlatform
}
