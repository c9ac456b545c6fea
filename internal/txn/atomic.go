package txn

import (
	"context"

	"github.com/nikmy/txflow/pkg/errors"
)

// Atomic is implemented by handles that can scope work
// to a single database transaction. fn receives a handle
// bound to that transaction.
type Atomic[H any] interface {
	Atomically(ctx context.Context, fn func(h H) error) error
}

// ActiveTxn is a database transaction that has been started.
type ActiveTxn interface {
	Commit(ctx context.Context) error
	Abort(ctx context.Context) error
}

// RunTxn starts a database transaction, runs do inside it and
// commits. When do fails the transaction is aborted and do's
// error is returned together with an abort failure, if any.
// A panic in do also aborts and comes back marked ErrPanicked.
func RunTxn[T ActiveTxn](
	ctx context.Context,
	start func(ctx context.Context) (T, error),
	do func(tx T) error,
) (err error) {
	tx, err := start(ctx)
	if err != nil {
		return errors.WrapFail(err, "start transaction")
	}

	defer func() {
		v := recover()
		if v == nil {
			return
		}

		abortErr := tx.Abort(ctx)
		err = errors.Join(errors.FromPanic(v, ErrPanicked), errors.WrapFail(abortErr, "abort transaction"))
	}()

	err = do(tx)
	if err != nil {
		abortErr := tx.Abort(ctx)
		return errors.Join(err, errors.WrapFail(abortErr, "abort transaction"))
	}

	return errors.WrapFail(tx.Commit(ctx), "commit transaction")
}
