// File: internal/concurrency/future.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import "github.com/momentics/hioload-httpd/api"

var _ api.Future = (*future)(nil)

// future is closed exactly once by the worker that ran the task.
type future struct {
	done chan struct{}
	err  error
}

func newFuture() *future {
	return &future{done: make(chan struct{})}
}

func (f *future) complete(err error) {
	f.err = err
	close(f.done)
}

func (f *future) Done() <-chan struct{} { return f.done }

func (f *future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Wait blocks until fut completes and returns its error.
func Wait(fut api.Future) error {
	<-fut.Done()
	return fut.Err()
}
