// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the edge-triggered readiness multiplexer used by
// the server loop: epoll on Linux, an unsupported-platform error elsewhere.
//
// Readiness is edge-triggered. Callers must drain a descriptor (accept or read
// until EAGAIN) on every notification or they will not be notified again.
package reactor
