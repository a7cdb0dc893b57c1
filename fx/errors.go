package fx

import (
	"context"
	"errors"
	"fmt"
)

// ComposedError reports that a computation failed and that cancelling
// its sibling failed too. Both errors are kept, non-destructively; the
// primary is the failure that terminated the join, the secondary is
// the one raised during the sibling's cancellation.
type ComposedError struct {
	Primary   error
	Secondary error
}

func (e *ComposedError) Error() string {
	return fmt.Sprintf("fx: %v (sibling cancellation also failed: %v)", e.Primary, e.Secondary)
}

// Unwrap exposes both errors to errors.Is/As.
func (e *ComposedError) Unwrap() []error { return []error{e.Primary, e.Secondary} }

// Canceled reports whether err stems from cancellation of the join
// rather than from a computation's own failure.
func Canceled(err error) bool { return errors.Is(err, context.Canceled) }
