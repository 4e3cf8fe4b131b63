// Package transport
// Author: momentics <momentics@gmail.com>
//
// Platform-independent socket operations used by the server loop and the
// per-connection tasks: listen, non-blocking accept, request assembly and
// write-all. Syscalls live in the build-tagged files.

package transport

import (
	"errors"
	"io"
	"time"

	"github.com/momentics/hioload-httpd/api"
	"github.com/momentics/hioload-httpd/pool"
	"github.com/momentics/hioload-httpd/protocol"
)

// MaxRequestSize caps the bytes buffered for one request.
const MaxRequestSize = 1 << 20

var (
	// ErrRequestTooLarge is returned when a request exceeds MaxRequestSize.
	ErrRequestTooLarge = errors.New("request too large")

	// ErrReadTimeout is returned when the peer stays silent past the read timeout.
	ErrReadTimeout = errors.New("read timeout")
)

// Listen opens a non-blocking listening socket bound to host:port.
// Failures are reported as *api.SetupError.
func Listen(host string, port, backlog int) (*Socket, error) {
	fd, stage, err := sysListen(host, port, backlog)
	if err != nil {
		return nil, &api.SetupError{Stage: stage, Cause: err}
	}
	return NewSocket(fd, ""), nil
}

// Accept accepts one pending connection from ln. The returned socket is
// non-blocking. When the backlog is empty the error satisfies IsWouldBlock.
func Accept(ln *Socket) (*Socket, error) {
	fd, remote, err := sysAccept(ln.FD())
	if err != nil {
		return nil, err
	}
	return NewSocket(fd, remote), nil
}

// IsWouldBlock reports whether err is EAGAIN/EWOULDBLOCK.
func IsWouldBlock(err error) bool { return sysIsWouldBlock(err) }

// IsTransientAccept reports accept errors that concern only the aborted
// connection (ECONNABORTED, EINTR, EPROTO); the drain continues after them.
func IsTransientAccept(err error) bool { return sysIsTransientAccept(err) }

// IsResourceExhausted reports EMFILE/ENFILE/ENOBUFS/ENOMEM accept failures.
func IsResourceExhausted(err error) bool { return sysIsResourceExhausted(err) }

// ReadRequest reads one request from s. It stops once the request head is
// complete and, if Content-Length is declared, the whole body is buffered;
// without Content-Length it stops when no further bytes are immediately
// available. While incomplete it waits for readability up to timeout
// (0 waits forever). Returns io.EOF if the peer closed before sending anything.
func ReadRequest(s *Socket, bufs *pool.BytePool, timeout time.Duration) ([]byte, error) {
	chunk := bufs.GetBuffer()
	defer bufs.PutBuffer(chunk)

	var data []byte
	for {
		n, err := s.Read(chunk)
		switch {
		case n > 0:
			data = append(data, chunk[:n]...)
			if len(data) > MaxRequestSize {
				return data, ErrRequestTooLarge
			}
			if done, _ := requestComplete(data); done {
				return data, nil
			}
			continue
		case err == nil:
			// peer closed its write side
			if len(data) == 0 {
				return nil, io.EOF
			}
			return data, nil
		case IsWouldBlock(err):
			if _, final := requestComplete(data); final {
				return data, nil
			}
			if werr := sysWaitReadable(s.FD(), timeout); werr != nil {
				return data, werr
			}
		case sysIsInterrupted(err):
		default:
			return data, &api.SocketError{Op: "read", FD: s.FD(), Cause: err}
		}
	}
}

// requestComplete reports (done, final): done when a length-delimited request
// is fully buffered, final when nothing more is required before parsing.
func requestComplete(data []byte) (done bool, final bool) {
	bodyStart, ok := protocol.HeadersComplete(data)
	if !ok {
		return false, false
	}
	if cl, ok := protocol.DeclaredContentLength(data[:bodyStart]); ok {
		complete := len(data)-bodyStart >= cl
		return complete, complete
	}
	return false, true
}

// WriteAll writes data fully, waiting for writability on EAGAIN up to timeout.
func WriteAll(s *Socket, data []byte, timeout time.Duration) error {
	for len(data) > 0 {
		n, err := s.Write(data)
		if n > 0 {
			data = data[n:]
		}
		switch {
		case err == nil:
		case IsWouldBlock(err):
			if werr := sysWaitWritable(s.FD(), timeout); werr != nil {
				return werr
			}
		case sysIsInterrupted(err):
		default:
			return &api.SocketError{Op: "write", FD: s.FD(), Cause: err}
		}
		if n == 0 && err == nil {
			return &api.SocketError{Op: "write", FD: s.FD(), Cause: io.ErrShortWrite}
		}
	}
	return nil
}
