package executor

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsEverything(t *testing.T) {
	t.Parallel()
	p := NewPool(4)
	var done atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		p.Execute(func() {
			defer wg.Done()
			done.Add(1)
		})
	}
	wg.Wait()
	assert.EqualValues(t, 50, done.Load())
}

func TestPoolBoundsConcurrency(t *testing.T) {
	t.Parallel()
	const limit = 4
	p := NewPool(limit)
	var cur, maxSeen atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		p.Execute(func() {
			defer wg.Done()
			c := cur.Add(1)
			for {
				m := maxSeen.Load()
				if c <= m || maxSeen.CompareAndSwap(m, c) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			cur.Add(-1)
		})
	}
	wg.Wait()
	assert.LessOrEqual(t, maxSeen.Load(), int64(limit),
		"observed concurrency exceeds pool limit")
}

func TestPoolExecuteDoesNotBlock(t *testing.T) {
	t.Parallel()
	p := NewPool(1)
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)
	p.Execute(func() { defer wg.Done(); <-release })

	submitted := make(chan struct{})
	go func() {
		// Must return immediately even though the only slot is taken.
		p.Execute(func() { defer wg.Done(); <-release })
		close(submitted)
	}()
	select {
	case <-submitted:
	case <-time.After(time.Second):
		t.Fatal("Execute blocked the submitter")
	}
	close(release)
	wg.Wait()
}

func TestComputationIsSharedAndParallel(t *testing.T) {
	t.Parallel()
	require.Same(t, Computation(), Computation())

	// Two tasks that rendezvous only finish if they overlap.
	a := make(chan struct{})
	b := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)
	Computation().Execute(func() { defer wg.Done(); close(a); <-b })
	Computation().Execute(func() { defer wg.Done(); close(b); <-a })
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shared pool did not run tasks in parallel")
	}
}

func TestTrampolineRunsInline(t *testing.T) {
	t.Parallel()
	tr := new(Trampoline)
	ran := false
	tr.Execute(func() { ran = true })
	assert.True(t, ran, "Execute on an idle trampoline must run before returning")
}

func TestTrampolineFIFOWithNestedSubmissions(t *testing.T) {
	t.Parallel()
	tr := new(Trampoline)
	var order []string
	tr.Execute(func() {
		order = append(order, "outer")
		tr.Execute(func() { order = append(order, "first") })
		tr.Execute(func() { order = append(order, "second") })
		// Nested submissions are queued, not run inline: outer
		// finishes before either starts.
		order = append(order, "outer-end")
	})
	require.Equal(t, []string{"outer", "outer-end", "first", "second"}, order)
}
