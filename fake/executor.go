// Author: momentics <momentics@gmail.com>

package fake

import (
	"sync"

	"github.com/momentics/hioload-httpd/api"
)

// Executor runs every task synchronously on the submitting goroutine.
type Executor struct {
	mu      sync.Mutex
	stopped bool
	ran     int
}

type doneFuture struct{}

var closedCh = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

func (doneFuture) Done() <-chan struct{} { return closedCh }
func (doneFuture) Err() error            { return nil }

// Submit implements api.Executor.
func (e *Executor) Submit(task api.Task) (api.Future, error) {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return nil, api.ErrPoolClosed
	}
	e.ran++
	e.mu.Unlock()
	task()
	return doneFuture{}, nil
}

// NumWorkers implements api.Executor.
func (e *Executor) NumWorkers() int { return 1 }

// Shutdown implements api.Executor.
func (e *Executor) Shutdown() {
	e.mu.Lock()
	e.stopped = true
	e.mu.Unlock()
}

// Ran returns how many tasks were executed.
func (e *Executor) Ran() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ran
}
