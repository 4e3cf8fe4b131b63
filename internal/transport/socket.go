// File: internal/transport/socket.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Socket is the owning handle for a raw socket descriptor.

package transport

import (
	"net"
	"sync"
	"sync/atomic"
)

// Socket owns a non-blocking descriptor. Close releases it exactly once no
// matter how many exit paths call it.
type Socket struct {
	fd     int
	remote string

	once     sync.Once
	closed   atomic.Bool
	closeErr error
}

// NewSocket takes ownership of fd.
func NewSocket(fd int, remote string) *Socket {
	return &Socket{fd: fd, remote: remote}
}

// FD returns the raw descriptor. Valid only until Close.
func (s *Socket) FD() int { return s.fd }

// RemoteAddr returns the peer address captured at accept time.
func (s *Socket) RemoteAddr() string { return s.remote }

// Read performs one non-blocking read. A would-block condition is returned
// as an error satisfying IsWouldBlock; (0, nil) means the peer closed.
func (s *Socket) Read(p []byte) (int, error) {
	n, err := sysRead(s.fd, p)
	if n < 0 {
		n = 0
	}
	return n, err
}

// Write performs one non-blocking write.
func (s *Socket) Write(p []byte) (int, error) {
	n, err := sysWrite(s.fd, p)
	if n < 0 {
		n = 0
	}
	return n, err
}

// LocalAddr returns the bound address of the descriptor.
func (s *Socket) LocalAddr() (net.Addr, error) {
	return sysLocalAddr(s.fd)
}

// Close releases the descriptor. Subsequent calls return the first result.
func (s *Socket) Close() error {
	s.once.Do(func() {
		s.closed.Store(true)
		s.closeErr = sysClose(s.fd)
	})
	return s.closeErr
}

// Closed reports whether Close has been called.
func (s *Socket) Closed() bool { return s.closed.Load() }
