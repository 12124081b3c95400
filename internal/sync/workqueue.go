// Package sync provides a bounded queue for work that must not hold up the
// caller.
package sync

import (
	"context"
	"sync"
)

// WorkQueue is a queue of work to be done by a fixed number of workers.
type WorkQueue struct {
	workers int
	queue   chan func(context.Context)
	wg      sync.WaitGroup
	once    sync.Once

	mu      sync.Mutex
	idle    *sync.Cond
	pending int
	closed  bool
}

// NewWorkQueue creates a new work queue. The workers argument specifies the
// number of concurrent workers to run the work and size how many jobs may
// wait for a worker.
func NewWorkQueue(workers, size int) *WorkQueue {
	if workers <= 0 {
		workers = 1
	}
	if size < 0 {
		size = 0
	}

	wq := &WorkQueue{
		workers: workers,
		queue:   make(chan func(context.Context), size),
	}
	wq.idle = sync.NewCond(&wq.mu)
	return wq
}

// Start starts the workers. Work runs with ctx.
func (wq *WorkQueue) Start(ctx context.Context) {
	wq.wg.Add(wq.workers)
	for i := 0; i < wq.workers; i++ {
		go func() {
			defer wq.wg.Done()
			for fn := range wq.queue {
				fn(ctx)
				wq.done()
			}
		}()
	}
}

// Add queues fn. It never blocks: it reports false when the queue is full
// or closed and the work was dropped.
func (wq *WorkQueue) Add(fn func(context.Context)) bool {
	wq.mu.Lock()
	defer wq.mu.Unlock()
	if wq.closed {
		return false
	}

	select {
	case wq.queue <- fn:
		wq.pending++
		return true
	default:
		return false
	}
}

func (wq *WorkQueue) done() {
	wq.mu.Lock()
	defer wq.mu.Unlock()
	wq.pending--
	if wq.pending == 0 {
		wq.idle.Broadcast()
	}
}

// Wait blocks until every job added so far has run, including jobs added
// while waiting. The workers must have been started.
func (wq *WorkQueue) Wait() {
	wq.mu.Lock()
	defer wq.mu.Unlock()
	for wq.pending > 0 {
		wq.idle.Wait()
	}
}

// Len returns the number of jobs waiting for a worker.
func (wq *WorkQueue) Len() int {
	return len(wq.queue)
}

// Close stops accepting work and waits for the queued work to finish.
func (wq *WorkQueue) Close() {
	wq.once.Do(func() {
		wq.mu.Lock()
		wq.closed = true
		close(wq.queue)
		wq.mu.Unlock()
	})
	wq.wg.Wait()
}
