package server

import (
	"errors"

	"github.com/momentics/hioload-httpd/internal/transport"
)

// ErrAlreadyRunning is returned by a second ListenAndServe call.
var ErrAlreadyRunning = errors.New("server already running")

// conn is a tracked client socket waiting for read readiness.
type conn struct {
	sock *transport.Socket
	id   string
}
