// Package errgroup provides an adapter that mimics golang.org/x/sync/errgroup
// semantics using the local scope and executor machinery. It enables
// incremental migration without pulling errgroup into the core library.
package errgroup

import (
	"context"
	"sync"

	"github.com/satyamagarwal/arrow-fx/executor"
	"github.com/satyamagarwal/arrow-fx/scope"
)

// Group is an errgroup-like wrapper over a fail-fast scope. Functions
// run on the shared computation pool; the first error cancels the
// scope, which every function observes through its context.
type Group struct {
	sc   *scope.Scope
	exec executor.Executor
	wg   sync.WaitGroup

	mu       sync.Mutex
	firstErr error
}

// WithContext creates a Group bound to ctx. The returned context is
// canceled when any function passed to Go returns a non-nil error.
func WithContext(ctx context.Context) (*Group, context.Context) {
	sc := scope.New(ctx)
	g := &Group{sc: sc, exec: executor.Computation()}
	return g, sc.Context()
}

// Go starts a function. It should return a non-nil error to signal failure.
func (g *Group) Go(f func() error) {
	if f == nil {
		return
	}
	g.wg.Add(1)
	g.exec.Execute(func() {
		defer g.wg.Done()
		if err := f(); err != nil {
			g.mu.Lock()
			if g.firstErr == nil {
				g.firstErr = err
			}
			g.mu.Unlock()
			_ = g.sc.Cancel(err)
		}
	})
}

// Wait blocks until all functions have returned. It returns the first
// non-nil error or nil on success.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.firstErr
}
