package concurrency

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-httpd/api"
)

func TestWorkerPool_RunsTaskAndCompletesFuture(t *testing.T) {
	p := NewWorkerPool(2)
	defer p.Shutdown()

	var ran atomic.Bool
	fut, err := p.Submit(func() { ran.Store(true) })
	require.NoError(t, err)

	require.NoError(t, Wait(fut))
	assert.True(t, ran.Load())
}

func TestWorkerPool_SubmitFuncPropagatesError(t *testing.T) {
	p := NewWorkerPool(1)
	defer p.Shutdown()

	boom := errors.New("boom")
	fut, err := p.SubmitFunc(func() error { return boom })
	require.NoError(t, err)
	assert.ErrorIs(t, Wait(fut), boom)
}

func TestWorkerPool_PanicBecomesFutureError(t *testing.T) {
	p := NewWorkerPool(1)
	defer p.Shutdown()

	fut, err := p.Submit(func() { panic("bad task") })
	require.NoError(t, err)
	err = Wait(fut)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad task")

	// the worker survived
	fut, err = p.Submit(func() {})
	require.NoError(t, err)
	assert.NoError(t, Wait(fut))
	assert.Equal(t, int64(1), p.Stats()["panicked_tasks"])
}

func TestWorkerPool_FIFOWithSingleWorker(t *testing.T) {
	p := NewWorkerPool(1)
	defer p.Shutdown()

	gate := make(chan struct{})
	started := make(chan struct{})
	_, err := p.Submit(func() {
		close(started)
		<-gate
	})
	require.NoError(t, err)
	<-started

	var mu sync.Mutex
	var order []int
	var futs []api.Future
	for i := 0; i < 50; i++ {
		i := i
		fut, err := p.Submit(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
		require.NoError(t, err)
		futs = append(futs, fut)
	}
	assert.Equal(t, 50, p.Pending())
	close(gate)

	for _, f := range futs {
		require.NoError(t, Wait(f))
	}
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestWorkerPool_SubmitAfterShutdown(t *testing.T) {
	p := NewWorkerPool(2)
	p.Shutdown()

	var ran atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		fut, err := p.Submit(func() { ran.Store(true) })
		assert.Nil(t, fut)
		assert.ErrorIs(t, err, api.ErrPoolClosed)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Submit blocked after shutdown")
	}
	assert.False(t, ran.Load())

	// idempotent
	p.Shutdown()
}

func TestWorkerPool_ShutdownDrainsQueuedTasks(t *testing.T) {
	p := NewWorkerPool(1)

	gate := make(chan struct{})
	_, err := p.Submit(func() { <-gate })
	require.NoError(t, err)

	var count atomic.Int64
	for i := 0; i < 20; i++ {
		_, err := p.Submit(func() { count.Add(1) })
		require.NoError(t, err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(gate)
	}()
	p.Shutdown()

	assert.Equal(t, int64(20), count.Load())
	assert.Equal(t, 0, p.Pending())
}

func TestWorkerPool_ConcurrentSubmittersExactlyOnce(t *testing.T) {
	p := NewWorkerPool(8)

	const producers = 16
	const perProducer = 500
	counts := make([]atomic.Int32, producers*perProducer)

	var wg sync.WaitGroup
	for pr := 0; pr < producers; pr++ {
		wg.Add(1)
		go func(pr int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				idx := pr*perProducer + i
				_, err := p.Submit(func() { counts[idx].Add(1) })
				assert.NoError(t, err)
			}
		}(pr)
	}
	wg.Wait()
	p.Shutdown()

	for i := range counts {
		require.Equal(t, int32(1), counts[i].Load(), "task %d", i)
	}
	stats := p.Stats()
	assert.Equal(t, int64(producers*perProducer), stats["submitted_tasks"])
	assert.Equal(t, int64(producers*perProducer), stats["completed_tasks"])
}

func TestWorkerPool_DefaultsWorkerCount(t *testing.T) {
	p := NewWorkerPool(0)
	defer p.Shutdown()
	assert.Greater(t, p.NumWorkers(), 0)
}

func TestWorkerPool_RejectsNilTask(t *testing.T) {
	p := NewWorkerPool(1)
	defer p.Shutdown()

	_, err := p.Submit(nil)
	assert.Error(t, err)
	_, err = p.SubmitFunc(nil)
	assert.Error(t, err)
}
