// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Concurrency primitives for hioload-httpd: a fixed-size worker pool with a
// FIFO task queue, condition-variable wakeups and per-task completion handles.
//
// Tasks are dequeued in submission order. Completion order across workers is
// not guaranteed.
package concurrency
