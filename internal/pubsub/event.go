package pubsub

import (
	"time"

	"github.com/nikmy/txflow/internal/queue"
	"github.com/nikmy/txflow/internal/txn"
	"github.com/nikmy/txflow/pkg/errors"
)

type Kind string

const (
	KindFailed   Kind = "failed"
	KindPanicked Kind = "panicked"
	KindDispatch Kind = "dispatch"
	KindDropped  Kind = "dropped"
)

// FailureEvent is the message published for every reported failure.
type FailureEvent struct {
	ID    string    `json:"id"`
	Name  string    `json:"name,omitempty"`
	Kind  Kind      `json:"kind"`
	Error string    `json:"error"`
	At    time.Time `json:"at"`
}

func NewFailureEvent(f queue.Failure, at time.Time) FailureEvent {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}

	return FailureEvent{
		ID:    f.ID.String(),
		Name:  f.Name,
		Kind:  kindOf(f.Err),
		Error: msg,
		At:    at.UTC(),
	}
}

func kindOf(err error) Kind {
	switch {
	case errors.Is(err, txn.ErrQueueClosed):
		return KindDropped
	case errors.Is(err, txn.ErrPanicked):
		return KindPanicked
	case errors.Is(err, txn.ErrDispatchFailure):
		return KindDispatch
	default:
		return KindFailed
	}
}
