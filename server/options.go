// File: server/options.go
// Package server defines functional options for the Server.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-httpd/api"
	"github.com/momentics/hioload-httpd/control"
)

// Option customizes server initialization.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithExecutor replaces the internal worker pool. The server shuts the
// executor down in Shutdown either way.
func WithExecutor(exec api.Executor) Option {
	return func(s *Server) {
		s.exec = exec
	}
}

// WithMetrics records connection and request counters into mr.
func WithMetrics(mr *control.MetricsRegistry) Option {
	return func(s *Server) {
		s.metrics = mr
	}
}
