//go:build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based edge-triggered reactor with an eventfd wakeup channel.

package reactor

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-httpd/api"
)

// readInterest is the edge-triggered read-readiness mask used for every descriptor.
const readInterest = unix.EPOLLIN | unix.EPOLLRDHUP | unix.EPOLLET

// linuxReactor is an epoll-based event reactor. Wait must only be called
// from one goroutine; Register, Unregister and Wake are safe from any.
type linuxReactor struct {
	epfd   int
	wakefd int
	raw    []unix.EpollEvent
}

// NewReactor constructs the epoll reactor. maxEvents bounds the number of
// events returned by one Wait.
func NewReactor(maxEvents int) (api.Reactor, error) {
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	wakefd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, fmt.Errorf("eventfd: %w", err)
	}
	ev := &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakefd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakefd, ev); err != nil {
		_ = unix.Close(wakefd)
		_ = unix.Close(epfd)
		return nil, fmt.Errorf("epoll ctl add wakeup: %w", err)
	}
	return &linuxReactor{
		epfd:   epfd,
		wakefd: wakefd,
		raw:    make([]unix.EpollEvent, maxEvents),
	}, nil
}

// Register adds fd to the interest set for edge-triggered read readiness.
func (r *linuxReactor) Register(fd int) error {
	ev := &unix.EpollEvent{Events: readInterest, Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, ev); err != nil {
		return fmt.Errorf("epoll ctl add: %w", err)
	}
	return nil
}

// Unregister removes fd from the interest set.
func (r *linuxReactor) Unregister(fd int) error {
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("epoll ctl del: %w", err)
	}
	return nil
}

// Wait blocks until events are ready. Wakeups and EINTR are filtered out, so
// n may be 0 with a nil error.
func (r *linuxReactor) Wait(events []api.Event) (int, error) {
	raw := r.raw
	if len(events) < len(raw) {
		raw = raw[:len(events)]
	}
	n, err := unix.EpollWait(r.epfd, raw, -1)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("epoll wait: %w", err)
	}

	out := 0
	for i := 0; i < n; i++ {
		fd := int(raw[i].Fd)
		if fd == r.wakefd {
			r.drainWakeup()
			continue
		}
		events[out] = api.Event{FD: fd, Events: convert(raw[i].Events)}
		out++
	}
	return out, nil
}

// Wake interrupts a blocked Wait.
func (r *linuxReactor) Wake() error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	if _, err := unix.Write(r.wakefd, buf[:]); err != nil && err != unix.EAGAIN {
		return fmt.Errorf("wakeup write: %w", err)
	}
	return nil
}

func (r *linuxReactor) drainWakeup() {
	var buf [8]byte
	for {
		if _, err := unix.Read(r.wakefd, buf[:]); err != nil {
			return
		}
	}
}

// Close closes the epoll instance and the wakeup descriptor.
func (r *linuxReactor) Close() error {
	werr := unix.Close(r.wakefd)
	if err := unix.Close(r.epfd); err != nil {
		return err
	}
	return werr
}

func convert(mask uint32) api.EventType {
	var t api.EventType
	if mask&unix.EPOLLIN != 0 {
		t |= api.EventRead
	}
	if mask&(unix.EPOLLRDHUP|unix.EPOLLHUP) != 0 {
		t |= api.EventHangup
	}
	if mask&unix.EPOLLERR != 0 {
		t |= api.EventError
	}
	return t
}
