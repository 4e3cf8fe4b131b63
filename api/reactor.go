// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Defines the abstract interface for edge-triggered readiness multiplexers
// used by the server loop to watch the listening socket and client sockets.

package api

// EventType is a bitmask of readiness conditions reported for a descriptor.
type EventType uint32

const (
	EventRead EventType = 1 << iota
	EventHangup
	EventError
)

// Event encapsulates the result of an OS-level readiness notification.
type Event struct {
	FD     int       // file descriptor that became ready
	Events EventType // readiness conditions
}

// Reactor defines the contract of a readiness multiplexer.
type Reactor interface {
	// Register adds fd for edge-triggered read readiness. A descriptor may be
	// registered at most once at any time.
	Register(fd int) error

	// Unregister removes fd from the interest set.
	Unregister(fd int) error

	// Wait blocks until descriptors are ready and fills events. An interrupted
	// wait or a Wake returns with n == 0 and a nil error.
	Wait(events []Event) (n int, err error)

	// Wake interrupts a blocked Wait from another goroutine.
	Wake() error

	// Close releases the multiplexer.
	Close() error
}
