// File: internal/transport/doc.go
// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Socket layer for hioload-httpd: an owning descriptor handle with
// exactly-once close, a non-blocking listener and accept, and the blocking
// request/response I/O performed inside worker tasks. Syscalls are split by
// build tags; only Linux is functional.

package transport
