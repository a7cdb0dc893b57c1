package scope

import (
	"context"
	"time"
)

// Observer receives lifecycle events from scopes and from the join
// machinery running on top of them. All methods may be called
// concurrently; implementations must be safe for concurrent use.
type Observer interface {
	ScopeCreated(ctx context.Context)
	ScopeCancelled(ctx context.Context, cause error)
	// JoinFinished fires once per join with the time spent waiting for
	// both sides and the terminal error, if any.
	JoinFinished(ctx context.Context, wait time.Duration, err error)
	TaskStarted(ctx context.Context)
	TaskFinished(ctx context.Context, dur time.Duration, err error, panicked bool)
}
