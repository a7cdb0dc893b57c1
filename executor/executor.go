// Package executor abstracts where asynchronous computations run. The
// join machinery only needs Execute: schedule a function and return
// immediately. Two implementations are provided — a shared multi-worker
// pool for genuine parallelism, and a single-goroutine trampoline for
// deterministic, logically-concurrent execution.
package executor

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Executor schedules work. Execute must not block the caller and must
// run fn exactly once.
type Executor interface {
	Execute(fn func())
}

// Pool runs each task on its own goroutine, with the number of tasks
// running at once bounded by a weighted semaphore. Submission never
// blocks; excess tasks queue on their goroutine until a slot frees.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool creates a pool allowing up to n tasks to run concurrently.
// n < 1 is treated as 1.
func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(n))}
}

// Execute schedules fn. It returns immediately.
func (p *Pool) Execute(fn func()) {
	go func() {
		// Acquire with Background never returns an error.
		_ = p.sem.Acquire(context.Background(), 1)
		defer p.sem.Release(1)
		fn()
	}()
}

var computation = sync.OnceValue(func() *Pool {
	return NewPool(max(2, runtime.GOMAXPROCS(0)))
})

// Computation returns the shared parallel pool. It always has at least
// two workers, so two computations scheduled on it can genuinely
// overlap.
func Computation() *Pool { return computation() }

// Trampoline runs tasks inline on the submitting goroutine, in FIFO
// order. A task submitted while another is running is queued and runs
// after it, on the same goroutine. This preserves logical concurrency
// (everything submitted is started in order before later submissions
// are awaited) without any parallelism, which makes interleavings
// fully deterministic.
//
// A Trampoline is safe for concurrent use, but its point is serial
// execution; use Pool when overlap matters.
type Trampoline struct {
	mu      sync.Mutex
	queue   []func()
	running bool
}

// Execute enqueues fn. If no task is currently running, the calling
// goroutine drains the queue before returning.
func (t *Trampoline) Execute(fn func()) {
	t.mu.Lock()
	t.queue = append(t.queue, fn)
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	for len(t.queue) > 0 {
		head := t.queue[0]
		t.queue = t.queue[1:]
		t.mu.Unlock()
		head()
		t.mu.Lock()
	}
	t.running = false
	t.mu.Unlock()
}
