//go:build linux

// File: internal/transport/transport_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux socket syscalls via golang.org/x/sys/unix.

package transport

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-httpd/api"
)

// sysListen creates a non-blocking IPv4 TCP socket, binds and listens.
// stage names the step that failed.
func sysListen(host string, port, backlog int) (fd int, stage string, err error) {
	var addr [4]byte
	if host != "" {
		ip := net.ParseIP(host).To4()
		if ip == nil {
			return -1, "resolve", fmt.Errorf("not an IPv4 address: %q", host)
		}
		copy(addr[:], ip)
	}

	fd, err = unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return -1, "socket", err
	}
	if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return -1, "setsockopt", err
	}
	if err = unix.Bind(fd, &unix.SockaddrInet4{Port: port, Addr: addr}); err != nil {
		_ = unix.Close(fd)
		return -1, "bind", err
	}
	if err = unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return -1, "listen", err
	}
	return fd, "", nil
}

func sysAccept(lfd int) (int, string, error) {
	nfd, sa, err := unix.Accept4(lfd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		return -1, "", err
	}
	_ = unix.SetsockoptInt(nfd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	return nfd, sockaddrString(sa), nil
}

func sockaddrString(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	case *unix.SockaddrInet6:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	default:
		return ""
	}
}

func sysLocalAddr(fd int) (net.Addr, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return nil, err
	}
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IP(append([]byte(nil), a.Addr[:]...)), Port: a.Port}, nil
	case *unix.SockaddrInet6:
		return &net.TCPAddr{IP: net.IP(append([]byte(nil), a.Addr[:]...)), Port: a.Port}, nil
	default:
		return nil, fmt.Errorf("unexpected socket address %T", sa)
	}
}

func sysRead(fd int, p []byte) (int, error) { return unix.Read(fd, p) }
func sysWrite(fd int, p []byte) (int, error) { return unix.Write(fd, p) }
func sysClose(fd int) error { return unix.Close(fd) }

func sysIsWouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}

func sysIsInterrupted(err error) bool {
	return errors.Is(err, unix.EINTR)
}

func sysIsTransientAccept(err error) bool {
	return errors.Is(err, unix.ECONNABORTED) || errors.Is(err, unix.EINTR) || errors.Is(err, unix.EPROTO)
}

func sysIsResourceExhausted(err error) bool {
	return errors.Is(err, unix.EMFILE) || errors.Is(err, unix.ENFILE) ||
		errors.Is(err, unix.ENOBUFS) || errors.Is(err, unix.ENOMEM)
}

func sysWaitReadable(fd int, timeout time.Duration) error {
	return waitFor(fd, unix.POLLIN, timeout, "poll read")
}

func sysWaitWritable(fd int, timeout time.Duration) error {
	return waitFor(fd, unix.POLLOUT, timeout, "poll write")
}

// waitFor blocks the calling worker in poll(2) until fd reports events,
// the peer hangs up, or timeout elapses (0 means no timeout).
func waitFor(fd int, events int16, timeout time.Duration, op string) error {
	ms := -1
	if timeout > 0 {
		ms = int(timeout / time.Millisecond)
		if ms == 0 {
			ms = 1
		}
	}
	fds := []unix.PollFd{{Fd: int32(fd), Events: events}}
	for {
		n, err := unix.Poll(fds, ms)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return &api.SocketError{Op: op, FD: fd, Cause: err}
		}
		if n == 0 {
			return ErrReadTimeout
		}
		// POLLHUP/POLLERR: let the next read/write surface the condition
		return nil
	}
}
