// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-httpd.

package api

import (
	"errors"
	"fmt"
)

// Common errors used across the module.
var (
	// ErrPoolClosed is returned by Executor.Submit once shutdown has begun.
	ErrPoolClosed = errors.New("worker pool is closed")

	// ErrMalformedRequest is the root of every ProtocolError.
	ErrMalformedRequest = errors.New("malformed request")

	// ErrUnsupportedPlatform is reported when no readiness multiplexer exists for the OS.
	ErrUnsupportedPlatform = errors.New("readiness multiplexer not supported on this platform")

	// ErrServerClosed is returned by ListenAndServe after Shutdown.
	ErrServerClosed = errors.New("server closed")
)

// ProtocolError reports a request line or header line that cannot be parsed.
type ProtocolError struct {
	Line   int
	Reason string
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("malformed request at line %d: %s", e.Line, e.Reason)
}

// Unwrap lets errors.Is match ErrMalformedRequest.
func (e *ProtocolError) Unwrap() error {
	return ErrMalformedRequest
}

// SocketError wraps an accept/read/write/register failure other than would-block.
type SocketError struct {
	Op    string
	FD    int
	Cause error
}

// Error implements the error interface.
func (e *SocketError) Error() string {
	return fmt.Sprintf("socket %s (fd=%d): %s", e.Op, e.FD, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e *SocketError) Unwrap() error {
	return e.Cause
}

// StoreError reports a backing-storage fault inside a user store operation.
type StoreError struct {
	Op    string
	Cause error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %s", e.Op, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// SetupError is fatal to server startup: socket, bind, listen or multiplexer failures.
type SetupError struct {
	Stage string
	Cause error
}

// Error implements the error interface.
func (e *SetupError) Error() string {
	return fmt.Sprintf("setup %s: %s", e.Stage, e.Cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e *SetupError) Unwrap() error {
	return e.Cause
}
