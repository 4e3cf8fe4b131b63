// File: server/run.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reactor loop: listen, accept-drain, register, hand ready connections to
// the executor, and tear down on stop.

package server

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/momentics/hioload-httpd/affinity"
	"github.com/momentics/hioload-httpd/api"
	"github.com/momentics/hioload-httpd/control"
	"github.com/momentics/hioload-httpd/internal/transport"
	"github.com/momentics/hioload-httpd/protocol"
	"github.com/momentics/hioload-httpd/reactor"
)

// ListenAndServe binds the listening socket and runs the reactor loop on the
// calling goroutine until Shutdown is called or ctx is cancelled, then
// returns api.ErrServerClosed. Setup failures are returned as
// *api.SetupError.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.started.Swap(true) {
		return ErrAlreadyRunning
	}
	defer close(s.done)
	if s.stopped.Load() {
		return api.ErrServerClosed
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if s.cfg.ReactorCPU >= 0 {
		if err := affinity.SetAffinity(s.cfg.ReactorCPU); err != nil {
			s.log.Warn("reactor pinning failed", zap.Int("cpu", s.cfg.ReactorCPU), zap.Error(err))
		}
	}

	if err := s.setup(); err != nil {
		return err
	}
	defer s.teardown()

	go func() {
		select {
		case <-ctx.Done():
			s.stop()
		case <-s.done:
		}
	}()

	close(s.ready)
	s.log.Info("listening",
		zap.Stringer("addr", s.Addr()),
		zap.Int("workers", s.exec.NumWorkers()),
		zap.Int("max_events", s.cfg.MaxEvents),
	)

	return s.loop()
}

func (s *Server) setup() error {
	ln, err := transport.Listen(s.cfg.Host, s.cfg.Port, s.cfg.Backlog)
	if err != nil {
		return err
	}
	maxEvents := s.cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = reactor.DefaultMaxEvents
	}
	r, err := reactor.NewReactor(maxEvents)
	if err != nil {
		_ = ln.Close()
		return asSetupError("reactor", err)
	}
	if err := r.Register(ln.FD()); err != nil {
		_ = r.Close()
		_ = ln.Close()
		return asSetupError("register", err)
	}
	addr, err := ln.LocalAddr()
	if err != nil {
		_ = r.Close()
		_ = ln.Close()
		return asSetupError("getsockname", err)
	}

	s.mu.Lock()
	s.ln, s.react, s.addr = ln, r, addr
	s.mu.Unlock()
	return nil
}

func asSetupError(stage string, err error) error {
	var se *api.SetupError
	if errors.As(err, &se) {
		return err
	}
	return &api.SetupError{Stage: stage, Cause: err}
}

func (s *Server) loop() error {
	events := make([]api.Event, max(s.cfg.MaxEvents, 1))
	lfd := s.ln.FD()
	for !s.stopped.Load() {
		n, err := s.react.Wait(events)
		if err != nil {
			s.log.Error("reactor wait failed", zap.Error(err))
			return fmt.Errorf("reactor wait: %w", err)
		}
		for _, ev := range events[:n] {
			if ev.FD == lfd {
				s.acceptAll()
				continue
			}
			s.dispatch(ev.FD)
		}
	}
	return api.ErrServerClosed
}

// acceptAll drains the accept backlog. Edge-triggered readiness fires once
// per burst, so it must run until EAGAIN.
func (s *Server) acceptAll() {
	for {
		sock, err := transport.Accept(s.ln)
		if err != nil {
			switch {
			case transport.IsWouldBlock(err):
			case transport.IsTransientAccept(err):
				continue
			case transport.IsResourceExhausted(err):
				s.log.Error("accept: descriptors exhausted", zap.Error(err))
			default:
				s.log.Error("accept failed", zap.Error(err))
			}
			return
		}

		c := conn{sock: sock, id: uuid.NewString()}
		if err := s.react.Register(sock.FD()); err != nil {
			s.log.Error("register failed",
				zap.Int("fd", sock.FD()),
				zap.Error(&api.SocketError{Op: "register", FD: sock.FD(), Cause: err}),
			)
			_ = sock.Close()
			continue
		}
		s.mu.Lock()
		s.conns[sock.FD()] = c
		s.mu.Unlock()
		s.count(control.MetricAccepted)
		s.log.Debug("accepted",
			zap.Int("fd", sock.FD()),
			zap.String("conn_id", c.id),
			zap.String("remote", sock.RemoteAddr()),
		)
	}
}

// dispatch moves a ready connection out of the reactor and onto the
// executor, so at most one task ever owns a descriptor.
func (s *Server) dispatch(fd int) {
	s.mu.Lock()
	c, ok := s.conns[fd]
	delete(s.conns, fd)
	s.mu.Unlock()
	if !ok {
		return
	}
	if err := s.react.Unregister(fd); err != nil {
		s.log.Warn("unregister failed", zap.Int("fd", fd), zap.Error(err))
	}

	if _, err := s.exec.Submit(func() { s.handleConn(c) }); err != nil {
		s.count(control.MetricRejectedTasks)
		s.log.Warn("connection rejected",
			zap.Int("fd", fd),
			zap.String("conn_id", c.id),
			zap.Error(err),
		)
		// single non-blocking drain and write; the socket is closed regardless
		buf := s.bufs.GetBuffer()
		_, _ = c.sock.Read(buf)
		s.bufs.PutBuffer(buf)
		_, _ = c.sock.Write(protocol.Error(protocol.StatusServiceUnavailable,
			protocol.StatusText(protocol.StatusServiceUnavailable)).Bytes())
		_ = c.sock.Close()
	}
}

// teardown releases the listener, idle connections and the reactor.
func (s *Server) teardown() {
	s.mu.Lock()
	conns := s.conns
	s.conns = make(map[int]conn)
	r, ln := s.react, s.ln
	s.react = nil
	s.mu.Unlock()

	for fd, c := range conns {
		_ = r.Unregister(fd)
		_ = c.sock.Close()
	}
	if err := ln.Close(); err != nil {
		s.log.Warn("listener close failed", zap.Error(err))
	}
	if err := r.Close(); err != nil {
		s.log.Warn("reactor close failed", zap.Error(err))
	}
	s.log.Info("reactor stopped", zap.Int("closed_idle", len(conns)))
}
