package txn

import "github.com/nikmy/txflow/pkg/errors"

var (
	// ErrQueryExecution marks failures of the underlying query.
	ErrQueryExecution = errors.Error("query execution failed")

	// ErrQueueClosed is returned to submitters once shutdown started.
	ErrQueueClosed = errors.Error("transaction queue is closed")

	// ErrDispatchFailure means a result could not reach the delivery lane.
	ErrDispatchFailure = errors.Error("callback dispatch failed")

	ErrPanicked  = errors.Error("transaction panicked")
	ErrNotAtomic = errors.Error("handle does not support database transactions")
)
