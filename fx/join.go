package fx

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/satyamagarwal/arrow-fx/executor"
	"github.com/satyamagarwal/arrow-fx/outcome"
	"github.com/satyamagarwal/arrow-fx/scope"
)

// The join's shared state is a single atomic cell holding one of four
// immutable records. Every transition is a compare-and-swap; only the
// goroutine that wins a swap acts on it, which yields exactly-once
// completion without a lock across the combine call.
type cellTag uint8

const (
	empty cellTag = iota
	leftDone
	rightDone
	failed
)

type cell[A, B any] struct {
	tag cellTag
	a   A
	b   B
	err error
}

// starter launches one side of a join under the given scope and
// reports its outcome exactly once. A plain computation and a nested
// join both fit this shape, which is what lets Join3 reuse the pair
// machine unchanged.
type starter[T any] func(sc *scope.Scope, report func(outcome.Outcome[T]))

func startComp[T any](exec executor.Executor, comp Computation[T]) starter[T] {
	return func(sc *scope.Scope, report func(outcome.Outcome[T])) {
		Start(exec, sc, comp, report)
	}
}

// Join2 runs fa and fb concurrently on exec under parent and delivers
// combine's result (or the terminal failure) to done, exactly once.
//
// Each side gets its own child scope, attached under parent for the
// duration of the join. If one side fails, the other side's scope is
// cancelled before the failure is delivered; if that cancellation
// itself raises, both errors are reported as a *ComposedError. If
// combine returns an error or panics, that becomes the join's failure.
// Both child scopes are detached from parent before done fires, so a
// late external cancel cannot reach a finished join.
//
// External cancellation reaches the join only through parent.Cancel:
// the child scopes are deliberately unreachable from parent's context.
// Callers holding a cancellable context should forward it, as the Par
// wrappers do (cancel parent when the context is done).
//
// fa is started before fb; completion order is unconstrained.
func Join2[A, B, C any](
	exec executor.Executor,
	parent *scope.Scope,
	fa Computation[A],
	fb Computation[B],
	combine func(A, B) (C, error),
	done func(outcome.Outcome[C]),
) {
	join2(parent, startComp(exec, fa), startComp(exec, fb), combine, done)
}

// Join3 joins three computations by applying the pair machine twice:
// A and B are paired under an intermediate scope, and that pair is
// joined with C. A failure at C cancels the intermediate scope, which
// cancels both A's and B's scopes transitively.
func Join3[A, B, C, D any](
	exec executor.Executor,
	parent *scope.Scope,
	fa Computation[A],
	fb Computation[B],
	fc Computation[C],
	combine func(A, B, C) (D, error),
	done func(outcome.Outcome[D]),
) {
	pairAB := func(sc *scope.Scope, report func(outcome.Outcome[outcome.Pair[A, B]])) {
		join2(sc, startComp(exec, fa), startComp(exec, fb), outcome.MkPair[A, B], report)
	}
	join2(parent, pairAB, startComp(exec, fc),
		func(p outcome.Pair[A, B], c C) (D, error) {
			return combine(p.First, p.Second, c)
		},
		done)
}

func join2[A, B, C any](
	parent *scope.Scope,
	sa starter[A],
	sb starter[B],
	combine func(A, B) (C, error),
	done func(outcome.Outcome[C]),
) {
	left := parent.Child()
	right := parent.Child()
	parent.PushChildren(left, right)

	obs := parent.Observer()
	var begin time.Time
	if obs != nil {
		begin = time.Now()
	}

	st := new(atomic.Pointer[cell[A, B]])
	st.Store(&cell[A, B]{tag: empty})

	finish := func(out outcome.Outcome[C]) {
		parent.Detach(left, right)
		if obs != nil {
			obs.JoinFinished(parent.Context(), time.Since(begin), out.Err())
		}
		done(out)
	}

	complete := func(a A, b B) {
		if c, err := runCombine(combine, a, b); err != nil {
			finish(outcome.Failure[C](err))
		} else {
			finish(outcome.Success(c))
		}
	}

	fail := func(err error, sibling *scope.Scope) {
		for {
			cur := st.Load()
			if cur.tag == failed {
				// Already terminated by an earlier failure. First
				// failure wins; this one is discarded.
				return
			}
			if st.CompareAndSwap(cur, &cell[A, B]{tag: failed, err: err}) {
				break
			}
		}
		// Winning failure. Cancel the sibling's scope and wait for the
		// cancellation's own verdict before reporting: a cancellation
		// failure must not be dropped.
		if cancelErr := sibling.Cancel(err); cancelErr != nil {
			err = &ComposedError{Primary: err, Secondary: cancelErr}
		}
		finish(outcome.Failure[C](err))
	}

	onLeft := func(res outcome.Outcome[A]) {
		if !res.Succeeded() {
			fail(res.Err(), right)
			return
		}
		a := res.Value()
		for {
			cur := st.Load()
			switch cur.tag {
			case empty:
				if st.CompareAndSwap(cur, &cell[A, B]{tag: leftDone, a: a}) {
					return // wait for the right side
				}
			case rightDone:
				// The other side is already in: this transition
				// completes the join.
				complete(a, cur.b)
				return
			default:
				return
			}
		}
	}

	onRight := func(res outcome.Outcome[B]) {
		if !res.Succeeded() {
			fail(res.Err(), left)
			return
		}
		b := res.Value()
		for {
			cur := st.Load()
			switch cur.tag {
			case empty:
				if st.CompareAndSwap(cur, &cell[A, B]{tag: rightDone, b: b}) {
					return // wait for the left side
				}
			case leftDone:
				complete(cur.a, b)
				return
			default:
				return
			}
		}
	}

	sa(left, onLeft)
	sb(right, onRight)
}

func runCombine[A, B, C any](combine func(A, B) (C, error), a A, b B) (c C, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return combine(a, b)
}
