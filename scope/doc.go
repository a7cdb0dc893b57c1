// Package scope provides cooperative cancellation domains for Go.
// Scopes form a tree: cancelling a scope cancels every child attached
// under it, while a detached child is unreachable from its former
// parent. Cancellation itself may fail (release hooks can raise), and
// Cancel reports that failure instead of swallowing it.
package scope
