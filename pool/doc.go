// File: pool/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package pool provides reusable I/O buffers for connection tasks.
package pool

// DefaultBufferSize matches the per-read chunk used by the connection task.
const DefaultBufferSize = 4096
