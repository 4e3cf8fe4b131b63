// File: internal/concurrency/threadpool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// WorkerPool runs submitted tasks on a fixed set of worker goroutines that
// drain a single FIFO queue guarded by one mutex/condition pair.

package concurrency

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/momentics/hioload-httpd/api"
)

var _ api.Executor = (*WorkerPool)(nil)

// PoolOption customizes a WorkerPool.
type PoolOption func(*WorkerPool)

// WithLogger sets the logger used to report recovered task panics.
func WithLogger(log *zap.Logger) PoolOption {
	return func(p *WorkerPool) {
		if log != nil {
			p.log = log
		}
	}
}

// WorkerPool is a bounded set of workers draining a shared FIFO task queue.
type WorkerPool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tasks   *queue.Queue // of *job, protected by mu
	stopped bool         // protected by mu

	wg         sync.WaitGroup
	numWorkers int
	log        *zap.Logger

	submitted atomic.Int64
	completed atomic.Int64
	panicked  atomic.Int64
}

type job struct {
	run func() error
	fut *future
}

// NewWorkerPool starts n workers. If n <= 0, defaults to runtime.NumCPU().
func NewWorkerPool(n int, opts ...PoolOption) *WorkerPool {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	p := &WorkerPool{
		tasks:      queue.New(),
		numWorkers: n,
		log:        zap.NewNop(),
	}
	p.cond = sync.NewCond(&p.mu)
	for _, o := range opts {
		o(p)
	}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker(i)
	}
	return p
}

// Submit enqueues task at the tail of the queue and wakes one waiting worker.
func (p *WorkerPool) Submit(task api.Task) (api.Future, error) {
	if task == nil {
		return nil, fmt.Errorf("submit: nil task")
	}
	return p.enqueue(func() error {
		task()
		return nil
	})
}

// SubmitFunc is Submit for tasks that report an error through their Future.
func (p *WorkerPool) SubmitFunc(fn func() error) (api.Future, error) {
	if fn == nil {
		return nil, fmt.Errorf("submit: nil task")
	}
	return p.enqueue(fn)
}

func (p *WorkerPool) enqueue(fn func() error) (api.Future, error) {
	j := &job{run: fn, fut: newFuture()}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil, api.ErrPoolClosed
	}
	p.tasks.Add(j)
	p.submitted.Add(1)
	p.mu.Unlock()

	p.cond.Signal()
	return j.fut, nil
}

// Shutdown stops accepting tasks, wakes every worker and waits until the
// queue is drained and all workers returned. Safe to call more than once.
func (p *WorkerPool) Shutdown() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	p.cond.Broadcast()
	p.wg.Wait()
}

// NumWorkers returns the number of worker goroutines.
func (p *WorkerPool) NumWorkers() int {
	return p.numWorkers
}

// Pending returns the number of queued, not yet started tasks.
func (p *WorkerPool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tasks.Length()
}

// Stats returns basic pool counters.
func (p *WorkerPool) Stats() map[string]int64 {
	return map[string]int64{
		"submitted_tasks": p.submitted.Load(),
		"completed_tasks": p.completed.Load(),
		"panicked_tasks":  p.panicked.Load(),
		"pending_tasks":   int64(p.Pending()),
		"num_workers":     int64(p.numWorkers),
	}
}

// worker is the main loop of one worker goroutine.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for p.tasks.Length() == 0 && !p.stopped {
			p.cond.Wait()
		}
		if p.tasks.Length() == 0 {
			// stopped and drained
			p.mu.Unlock()
			return
		}
		j := p.tasks.Remove().(*job)
		p.mu.Unlock()

		p.execute(id, j)
	}
}

// execute runs the job, converting a panic into the job's error.
func (p *WorkerPool) execute(id int, j *job) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			p.panicked.Add(1)
			err = fmt.Errorf("task panicked: %v", r)
			p.log.Error("recovered task panic", zap.Int("worker", id), zap.Any("panic", r))
		}
		p.completed.Add(1)
		j.fut.complete(err)
	}()
	err = j.run()
}
