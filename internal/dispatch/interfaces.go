package dispatch

import "github.com/nikmy/txflow/pkg/errors"

// Dispatcher is the delivery lane for result callbacks.
//
// Post must be safe for concurrent use, must not block until fn
// has run, and must never run fn on the calling goroutine.
// Closures run one at a time in Post order.
type Dispatcher interface {
	Post(fn func()) error
}

var (
	ErrClosed           = errors.Error("dispatcher is closed")
	ErrCallbackPanicked = errors.Error("callback panicked")
)
