// Package api
// Author: momentics
//
// Executor contract for dispatching per-connection tasks to a fixed worker set.

package api

// Task is a zero-argument unit of work.
type Task func()

// Executor abstracts a bounded pool of workers draining a FIFO queue.
type Executor interface {
	// Submit schedules task for execution. Fails with ErrPoolClosed once
	// shutdown has begun; the task is then never run.
	Submit(task Task) (Future, error)

	// NumWorkers returns the number of worker routines.
	NumWorkers() int

	// Shutdown stops accepting tasks, drains the queue and waits for workers.
	Shutdown()
}
