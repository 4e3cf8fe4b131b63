// File: server/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Server owns the listening socket, the reactor, the connection table and
// the worker pool. The reactor goroutine only accepts and dispatches; all
// request work runs on the pool.

package server

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/momentics/hioload-httpd/api"
	"github.com/momentics/hioload-httpd/control"
	"github.com/momentics/hioload-httpd/internal/concurrency"
	"github.com/momentics/hioload-httpd/internal/transport"
	"github.com/momentics/hioload-httpd/pool"
	"github.com/momentics/hioload-httpd/router"
)

var _ api.GracefulShutdown = (*Server)(nil)

// Server is an epoll-driven HTTP/1.x server with one request per connection.
type Server struct {
	cfg     control.ServerConfig
	router  *router.Router
	log     *zap.Logger
	exec    api.Executor
	metrics *control.MetricsRegistry
	bufs    *pool.BytePool

	mu    sync.Mutex
	ln    *transport.Socket
	react api.Reactor
	conns map[int]conn
	addr  net.Addr

	started  atomic.Bool
	stopped  atomic.Bool
	execOnce sync.Once
	ready    chan struct{}
	done     chan struct{}
}

// New builds a server for cfg dispatching through r. Unless WithExecutor is
// given, a WorkerPool of cfg.Workers goroutines is started.
func New(cfg control.ServerConfig, r *router.Router, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		router: r,
		log:    zap.NewNop(),
		conns:  make(map[int]conn),
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	if s.cfg.ReadBuffer <= 0 {
		s.cfg.ReadBuffer = pool.DefaultBufferSize
	}
	s.bufs = pool.NewBytePool(s.cfg.ReadBuffer)
	if s.exec == nil {
		s.exec = concurrency.NewWorkerPool(s.cfg.Workers,
			concurrency.WithLogger(s.log.Named("pool")))
	}
	return s
}

// Executor returns the executor running connection tasks.
func (s *Server) Executor() api.Executor { return s.exec }

// Ready is closed once the server listens and the reactor is armed.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr returns the bound address, nil before Ready.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Connections returns the number of sockets waiting for readiness.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Shutdown stops the reactor loop, closes the listening socket and every
// idle client socket, then drains the worker pool. It returns ctx.Err() if
// ctx expires first.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()

	if s.started.Load() {
		select {
		case <-s.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	drained := make(chan struct{})
	go func() {
		s.execOnce.Do(s.exec.Shutdown)
		close(drained)
	}()
	select {
	case <-drained:
		s.log.Info("server stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// stop marks the server stopped and interrupts a blocked reactor wait.
func (s *Server) stop() {
	if s.stopped.Swap(true) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.react != nil {
		if err := s.react.Wake(); err != nil {
			s.log.Warn("reactor wake failed", zap.Error(err))
		}
	}
}

func (s *Server) count(key string) {
	s.metrics.Inc(key)
}
