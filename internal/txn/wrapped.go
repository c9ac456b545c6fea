package txn

import (
	"context"

	"github.com/nikmy/txflow/internal/dispatch"
	"github.com/nikmy/txflow/pkg/builder"
	"github.com/nikmy/txflow/pkg/errors"
)

type wrapConfig[H any] struct {
	inner      Transaction[H]
	dispatcher dispatch.Dispatcher

	name      string
	atomic    bool
	onSuccess func(w *Wrapped[H])
	onError   func(w *Wrapped[H], err error)
}

// Wrapped decorates a transaction with a name, success and error
// callbacks delivered on the dispatcher, and optional execution
// inside a database transaction.
type Wrapped[H any] struct {
	cfg wrapConfig[H]
}

func (w *Wrapped[H]) Name() string {
	return w.cfg.name
}

func (w *Wrapped[H]) Inner() Transaction[H] {
	return w.cfg.inner
}

func (w *Wrapped[H]) Execute(ctx context.Context, h H) error {
	err := w.run(ctx, h)
	if err != nil {
		if w.cfg.onError == nil {
			return err
		}

		onError := w.cfg.onError
		postErr := w.cfg.dispatcher.Post(func() { onError(w, err) })
		return errors.Join(err, errors.Mark(errors.WrapFail(postErr, "post error callback"), ErrDispatchFailure))
	}

	if w.cfg.onSuccess == nil {
		return nil
	}

	onSuccess := w.cfg.onSuccess
	postErr := w.cfg.dispatcher.Post(func() { onSuccess(w) })
	return errors.Mark(errors.WrapFail(postErr, "post success callback"), ErrDispatchFailure)
}

func (w *Wrapped[H]) run(ctx context.Context, h H) error {
	if !w.cfg.atomic {
		return w.execute(ctx, h)
	}

	a, ok := any(h).(Atomic[H])
	if !ok {
		return ErrNotAtomic
	}

	return a.Atomically(ctx, func(tx H) error {
		return w.execute(ctx, tx)
	})
}

// execute turns a panic of the inner transaction into an error, so the
// error callback fires and an enclosing database transaction rolls back.
func (w *Wrapped[H]) execute(ctx context.Context, h H) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = errors.FromPanic(v, ErrPanicked)
		}
	}()

	return w.cfg.inner.Execute(ctx, h)
}

func Wrap[H any](d dispatch.Dispatcher, inner Transaction[H]) *WrapBuilder[H] {
	if inner == nil {
		panic("txn: wrap requires a transaction")
	}
	if d == nil {
		panic("txn: wrap requires a dispatcher")
	}

	return &WrapBuilder[H]{
		b: builder.New(wrapConfig[H]{
			inner:      inner,
			dispatcher: d,
		}),
	}
}

type WrapBuilder[H any] struct {
	b *builder.Builder[wrapConfig[H]]
}

func (wb *WrapBuilder[H]) Named(name string) *WrapBuilder[H] {
	wb.b.Use(func(cfg *wrapConfig[H]) { cfg.name = name })
	return wb
}

func (wb *WrapBuilder[H]) OnSuccess(fn func(w *Wrapped[H])) *WrapBuilder[H] {
	wb.b.Use(func(cfg *wrapConfig[H]) { cfg.onSuccess = fn })
	return wb
}

func (wb *WrapBuilder[H]) OnError(fn func(w *Wrapped[H], err error)) *WrapBuilder[H] {
	wb.b.Use(func(cfg *wrapConfig[H]) { cfg.onError = fn })
	return wb
}

// InTransaction makes the inner transaction run inside Atomic.Atomically.
func (wb *WrapBuilder[H]) InTransaction() *WrapBuilder[H] {
	wb.b.Use(func(cfg *wrapConfig[H]) { cfg.atomic = true })
	return wb
}

func (wb *WrapBuilder[H]) Build() *Wrapped[H] {
	return &Wrapped[H]{cfg: wb.b.Snapshot()}
}
