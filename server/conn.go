// File: server/conn.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/momentics/hioload-httpd/control"
	"github.com/momentics/hioload-httpd/internal/transport"
	"github.com/momentics/hioload-httpd/protocol"
)

// handleConn runs on a worker: read one request, route it, write the
// response and close. The task owns c.sock for its whole lifetime.
func (s *Server) handleConn(c conn) {
	log := s.log.With(zap.Int("fd", c.sock.FD()), zap.String("conn_id", c.id))
	defer func() {
		if err := c.sock.Close(); err != nil {
			log.Debug("close failed", zap.Error(err))
		}
	}()

	data, err := transport.ReadRequest(c.sock, s.bufs, s.cfg.ReadTimeout)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		return
	case errors.Is(err, transport.ErrRequestTooLarge):
		s.count(control.MetricParseErrors)
		log.Warn("request too large", zap.Int("bytes", len(data)))
		s.reject(c, log)
		return
	default:
		s.count(control.MetricSocketErrors)
		log.Warn("read failed", zap.Error(err))
		return
	}

	req, err := protocol.ParseRequest(data)
	if err != nil {
		s.count(control.MetricParseErrors)
		log.Info("malformed request", zap.Error(err))
		s.reject(c, log)
		return
	}

	resp := s.router.Route(req)
	if err := transport.WriteAll(c.sock, resp.Bytes(), s.cfg.WriteTimeout); err != nil {
		s.count(control.MetricSocketErrors)
		log.Warn("write failed", zap.Error(err))
		return
	}
	s.count(control.MetricServed)
	log.Debug("request served",
		zap.Stringer("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
	)
}

// reject writes a best-effort 400.
func (s *Server) reject(c conn, log *zap.Logger) {
	if err := transport.WriteAll(c.sock, protocol.BadRequest().Bytes(), s.cfg.WriteTimeout); err != nil {
		log.Debug("bad request response not delivered", zap.Error(err))
	}
}
