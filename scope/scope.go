package scope

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

type Option func(*Options)

type Options struct {
	Observer Observer
}

func defaultOptions() Options { return Options{} }

func WithObserver(obs Observer) Option { return func(o *Options) { o.Observer = obs } }

// Hook is a release action registered with OnCancel. It runs when the
// scope is cancelled and may fail; a non-nil return is surfaced by
// Cancel rather than dropped.
type Hook func(cause error) error

// Scope is a cancellation domain. A scope carries a context whose Done
// channel closes when the scope is cancelled; values flow in from the
// parent, cancellation flows only through explicit attachment
// (PushChildren / Detach).
type Scope struct {
	ctx    context.Context
	cancel context.CancelCauseFunc

	mu       sync.Mutex
	canceled bool
	cause    error
	children []*Scope
	hooks    []Hook

	opts Options
	obs  Observer
}

// New creates a root scope. The scope's context derives from parent;
// cancelling parent cancels the scope's context directly (root scopes
// stay subordinate to their caller), but children created with Child
// are only reachable through the scope tree.
func New(parent context.Context, optFns ...Option) *Scope {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancelCause(parent)
	s := &Scope{cancel: cancel, opts: defaultOptions()}
	s.ctx = context.WithValue(ctx, ctxKey{}, s)
	for _, fn := range optFns {
		fn(&s.opts)
	}
	s.obs = s.opts.Observer
	if s.obs != nil {
		s.obs.ScopeCreated(s.ctx)
	}
	return s
}

type ctxKey struct{}

// FromContext returns the scope that owns ctx, or nil if ctx does not
// descend from a scope. A computation can use it to register release
// hooks on its own scope.
func FromContext(ctx context.Context) *Scope {
	s, _ := ctx.Value(ctxKey{}).(*Scope)
	return s
}

// Child creates a detached child scope. The child's context carries
// the parent's values but NOT its cancellation: the only way the
// parent can cancel the child is through PushChildren followed by
// Cancel, and once the child is detached again no parent cancel can
// reach it.
func (s *Scope) Child(optFns ...Option) *Scope {
	childOpts := s.opts
	for _, fn := range optFns {
		fn(&childOpts)
	}
	ctx, cancel := context.WithCancelCause(context.WithoutCancel(s.ctx))
	cs := &Scope{cancel: cancel, opts: childOpts, obs: childOpts.Observer}
	cs.ctx = context.WithValue(ctx, ctxKey{}, cs)
	if cs.obs != nil {
		cs.obs.ScopeCreated(cs.ctx)
	}
	return cs
}

// Context returns the scope's context. Its Done channel closes when
// the scope is cancelled; context.Cause reports the cancellation
// cause.
func (s *Scope) Context() context.Context { return s.ctx }

// Observer returns the observer attached to this scope, or nil.
func (s *Scope) Observer() Observer { return s.obs }

// Canceled reports whether Cancel has been called on this scope.
func (s *Scope) Canceled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canceled
}

// Cause returns the cancellation cause, or nil if the scope has not
// been cancelled.
func (s *Scope) Cause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cause
}

// OnCancel registers a release hook to run when the scope is
// cancelled. If the scope is already cancelled the hook runs
// immediately and its error is returned to the caller.
func (s *Scope) OnCancel(h Hook) error {
	if h == nil {
		return nil
	}
	s.mu.Lock()
	if s.canceled {
		cause := s.cause
		s.mu.Unlock()
		return h(cause)
	}
	s.hooks = append(s.hooks, h)
	s.mu.Unlock()
	return nil
}

// PushChildren attaches children under s. An attached child is
// cancelled when s is cancelled. Attaching to an already-cancelled
// scope cancels the children immediately.
func (s *Scope) PushChildren(cs ...*Scope) {
	s.mu.Lock()
	if s.canceled {
		cause := s.cause
		s.mu.Unlock()
		for _, c := range cs {
			_ = c.Cancel(cause)
		}
		return
	}
	s.children = append(s.children, cs...)
	s.mu.Unlock()
}

// Detach removes children from s by identity. A detached child is no
// longer reachable from s: a later Cancel on s does not touch it.
// Detaching a child that is not attached is a no-op.
func (s *Scope) Detach(cs ...*Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cs {
		if i := slices.Index(s.children, c); i >= 0 {
			s.children = slices.Delete(s.children, i, i+1)
		}
	}
}

// Release frees the scope's underlying context resources after its
// work has completed normally. It does not count as a cancellation:
// no hooks run, no children are cancelled, and Canceled stays false.
// The scope must not be used afterwards.
func (s *Scope) Release() {
	s.cancel(nil)
}

// Cancel cancels the scope and its attached subtree. The first call
// wins and records cause; later calls are no-ops returning nil.
//
// Cancellation itself can fail: release hooks and child cancellations
// may raise. Those errors are collected into a *CancelError and
// returned, so the caller can compose them into its own report instead
// of losing them.
func (s *Scope) Cancel(cause error) error {
	s.mu.Lock()
	if s.canceled {
		s.mu.Unlock()
		return nil
	}
	s.canceled = true
	s.cause = cause
	hooks := s.hooks
	children := s.children
	s.hooks = nil
	s.children = nil
	s.mu.Unlock()

	s.cancel(cause)
	if s.obs != nil {
		s.obs.ScopeCancelled(s.ctx, cause)
	}

	var errs []error
	for _, h := range hooks {
		if err := h(cause); err != nil {
			errs = append(errs, err)
		}
	}
	for _, c := range children {
		if err := c.Cancel(cause); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &CancelError{Errs: errs}
	}
	return nil
}

// CancelError reports that cancelling a scope partially failed: the
// subtree was still cancelled, but one or more release hooks (or
// nested cancels) raised.
type CancelError struct {
	Errs []error
}

func (e *CancelError) Error() string {
	if len(e.Errs) == 1 {
		return fmt.Sprintf("scope: cancellation failed: %v", e.Errs[0])
	}
	return fmt.Sprintf("scope: cancellation failed with %d errors, first: %v", len(e.Errs), e.Errs[0])
}

// Unwrap exposes the underlying hook errors to errors.Is/As.
func (e *CancelError) Unwrap() []error { return e.Errs }
