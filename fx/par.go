package fx

import (
	"context"

	"github.com/satyamagarwal/arrow-fx/executor"
	"github.com/satyamagarwal/arrow-fx/outcome"
	"github.com/satyamagarwal/arrow-fx/scope"
)

// Par2 runs fa and fb concurrently on the shared computation pool and
// combines their results. The pool has multiple workers, so the two
// computations genuinely overlap. Cancelling ctx cancels both sides
// and surfaces as a cancellation failure.
func Par2[A, B, C any](ctx context.Context, fa Computation[A], fb Computation[B], combine func(A, B) (C, error)) (C, error) {
	return Par2On(executor.Computation(), ctx, fa, fb, combine)
}

// Par2On is Par2 on an arbitrary executor. True parallelism is not
// guaranteed — on a single-goroutine executor such as
// executor.Trampoline the computations run back to back — but fa is
// always started before fb, and neither is awaited before both have
// been handed to exec.
func Par2On[A, B, C any](exec executor.Executor, ctx context.Context, fa Computation[A], fb Computation[B], combine func(A, B) (C, error)) (C, error) {
	parent := scope.New(ctx)
	ch := make(chan outcome.Outcome[C], 1)
	Join2(exec, parent, fa, fb, combine, func(o outcome.Outcome[C]) { ch <- o })
	return await(ctx, parent, ch)
}

// Par3 runs three computations concurrently on the shared computation
// pool and combines their results.
func Par3[A, B, C, D any](ctx context.Context, fa Computation[A], fb Computation[B], fc Computation[C], combine func(A, B, C) (D, error)) (D, error) {
	return Par3On(executor.Computation(), ctx, fa, fb, fc, combine)
}

// Par3On is Par3 on an arbitrary executor, with the same concurrency
// caveat as Par2On.
func Par3On[A, B, C, D any](exec executor.Executor, ctx context.Context, fa Computation[A], fb Computation[B], fc Computation[C], combine func(A, B, C) (D, error)) (D, error) {
	parent := scope.New(ctx)
	ch := make(chan outcome.Outcome[D], 1)
	Join3(exec, parent, fa, fb, fc, combine, func(o outcome.Outcome[D]) { ch <- o })
	return await(ctx, parent, ch)
}

// await blocks until the join delivers, propagating an external ctx
// cancellation into the parent scope. The join still completes through
// its single delivery; await only forwards the cancel.
func await[T any](ctx context.Context, parent *scope.Scope, ch <-chan outcome.Outcome[T]) (T, error) {
	select {
	case o := <-ch:
		parent.Release()
		return o.Unpack()
	case <-ctx.Done():
		cancelErr := parent.Cancel(context.Cause(ctx))
		o := <-ch
		v, err := o.Unpack()
		if err != nil && cancelErr != nil {
			err = &ComposedError{Primary: err, Secondary: cancelErr}
		}
		return v, err
	}
}
