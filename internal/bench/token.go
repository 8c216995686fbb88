package bench

import "sync/atomic"

// Token is a shared cancellation flag polled by in-flight benchmark passes.
// The coordinator resets it before a run and may cancel it at any time; the
// worker only ever reads it. All methods are safe for concurrent use.
type Token struct {
	cancelled atomic.Bool
}

// Reset clears the flag ahead of a new run.
func (t *Token) Reset() {
	t.cancelled.Store(false)
}

// Cancel requests cooperative cancellation. Idempotent.
func (t *Token) Cancel() {
	t.cancelled.Store(true)
}

// IsCancelled reports whether cancellation has been requested.
func (t *Token) IsCancelled() bool {
	return t.cancelled.Load()
}
