package fx

import (
	"context"
	"fmt"
	"time"

	"github.com/satyamagarwal/arrow-fx/executor"
	"github.com/satyamagarwal/arrow-fx/outcome"
	"github.com/satyamagarwal/arrow-fx/scope"
)

// Computation is an asynchronous unit of work bound to a cancellation
// scope. The context it receives is the scope's; a cooperative
// computation returns promptly once that context is done.
type Computation[T any] func(ctx context.Context) (T, error)

// OnCancel registers a release hook on the scope that owns ctx, which
// for a computation started by a join is its own side's scope. If the
// scope is already cancelled the hook runs immediately and its error
// is returned. Outside a scope this is a no-op.
func OnCancel(ctx context.Context, h scope.Hook) error {
	if sc := scope.FromContext(ctx); sc != nil {
		return sc.OnCancel(h)
	}
	return nil
}

// Start schedules comp on exec, bound to sc, and invokes onResult with
// its outcome exactly once. A panic inside comp is recovered and
// reported as a failure. If sc is already cancelled the computation is
// not run and a cancellation failure is reported instead.
//
// Start itself never blocks the caller.
func Start[T any](exec executor.Executor, sc *scope.Scope, comp Computation[T], onResult func(outcome.Outcome[T])) {
	exec.Execute(func() {
		onResult(run(sc, comp))
	})
}

func run[T any](sc *scope.Scope, comp Computation[T]) (out outcome.Outcome[T]) {
	ctx := sc.Context()
	if ctx.Err() != nil {
		return outcome.Failure[T](context.Cause(ctx))
	}

	obs := sc.Observer()
	var begin time.Time
	if obs != nil {
		begin = time.Now()
		obs.TaskStarted(ctx)
	}
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			out = outcome.Failure[T](err)
			if obs != nil {
				obs.TaskFinished(ctx, time.Since(begin), err, true)
			}
		}
	}()

	v, err := comp(ctx)
	if obs != nil {
		obs.TaskFinished(ctx, time.Since(begin), err, false)
	}
	if err != nil {
		return outcome.Failure[T](err)
	}
	return outcome.Success(v)
}
