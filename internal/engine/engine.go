package engine

import (
	"context"

	"github.com/nikmy/txflow/internal/dispatch"
	"github.com/nikmy/txflow/internal/queue"
	"github.com/nikmy/txflow/internal/txn"
	"github.com/nikmy/txflow/pkg/errors"
	"github.com/nikmy/txflow/pkg/logger"
	"github.com/nikmy/txflow/pkg/tools/await"
)

// New wires a transaction queue for handle to its own delivery lane.
// The configured shutdown policy can be overridden by opts.
func New[H any](handle H, cfg Config, log logger.Logger, opts ...queue.Option) (*Engine[H], error) {
	log = log.With("engine")

	loop, err := dispatch.NewLoop(log)
	if err != nil {
		return nil, errors.WrapFail(err, "create delivery lane")
	}

	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = defaultCloseTimeout
	}

	opts = append([]queue.Option{queue.WithShutdownPolicy(cfg.ShutdownPolicy)}, opts...)

	return &Engine[H]{
		cfg:   cfg,
		log:   log,
		loop:  loop,
		queue: queue.New(handle, log, opts...),
	}, nil
}

type Engine[H any] struct {
	cfg   Config
	log   logger.Logger
	loop  *dispatch.Loop
	queue *queue.Queue[H]
}

type Stats struct {
	State            string `json:"state"`
	Pending          int    `json:"pending"`
	PendingCallbacks int    `json:"pending_callbacks"`
}

func (e *Engine[H]) Start() {
	e.loop.Start()
	e.queue.Start()
	e.log.Infof("engine started, shutdown policy %s", e.cfg.ShutdownPolicy)
}

func (e *Engine[H]) Submit(t txn.Transaction[H]) (txn.ID, error) {
	return e.queue.Submit(t)
}

func (e *Engine[H]) SubmitWithPriority(t txn.Transaction[H], p queue.Priority) (txn.ID, error) {
	return e.queue.SubmitWithPriority(t, p)
}

func (e *Engine[H]) Cancel(id txn.ID) bool {
	return e.queue.Cancel(id)
}

func (e *Engine[H]) CancelName(name string) int {
	return e.queue.CancelName(name)
}

func (e *Engine[H]) Dispatcher() dispatch.Dispatcher {
	return e.loop
}

func (e *Engine[H]) Queue() *queue.Queue[H] {
	return e.queue
}

func (e *Engine[H]) Stats() Stats {
	return Stats{
		State:            e.queue.State().String(),
		Pending:          e.queue.Pending(),
		PendingCallbacks: e.loop.Pending(),
	}
}

// Close shuts the queue down first, so every callback it produced
// is posted before the delivery lane drains and stops.
func (e *Engine[H]) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.CloseTimeout)
	defer cancel()

	queueErr := errors.WrapFail(e.queue.Close(ctx), "close queue")
	loopErr := errors.WrapFail(e.loop.Close(ctx), "close delivery lane")

	err := errors.Join(queueErr, loopErr)
	if err == nil {
		e.log.Infof("engine stopped")
	}
	return err
}

// Query starts a query transaction builder delivering on e's lane.
func Query[H, T any](e *Engine[H], q txn.Queriable[H, T]) *txn.QueryBuilder[H, T] {
	return txn.NewQueryBuilder(e.Dispatcher(), q)
}

func Wrap[H any](e *Engine[H], t txn.Transaction[H]) *txn.WrapBuilder[H] {
	return txn.Wrap(e.Dispatcher(), t)
}

type outcome[T any] struct {
	rows *txn.CursorResult[T]
	err  error
}

// Await submits q and blocks until its result reaches the delivery
// lane. Giving up on ctx does not cancel the transaction.
func Await[H, T any](ctx context.Context, e *Engine[H], q txn.Queriable[H, T]) (*txn.CursorResult[T], error) {
	done := make(chan outcome[T], 1)

	query := Query(e, q).
		QueryResult(func(_ *txn.QueryTransaction[H, T], rows *txn.CursorResult[T]) {
			done <- outcome[T]{rows: rows}
		}).
		Build()

	tx := Wrap(e, txn.Transaction[H](query)).
		OnError(func(_ *txn.Wrapped[H], err error) {
			done <- outcome[T]{err: err}
		}).
		Build()

	o, err := wait(ctx, e, tx, done)
	if err != nil {
		return nil, err
	}
	return o.rows, o.err
}

// Run submits t and blocks until it has been executed. With atomic
// set, t runs inside one database transaction of the handle.
func Run[H any](ctx context.Context, e *Engine[H], t txn.Transaction[H], atomic bool) error {
	done := make(chan outcome[struct{}], 1)

	b := Wrap(e, t).
		OnSuccess(func(*txn.Wrapped[H]) { done <- outcome[struct{}]{} }).
		OnError(func(_ *txn.Wrapped[H], err error) { done <- outcome[struct{}]{err: err} })
	if atomic {
		b.InTransaction()
	}

	o, err := wait(ctx, e, b.Build(), done)
	if err != nil {
		return err
	}
	return o.err
}

func wait[H, T any](ctx context.Context, e *Engine[H], tx txn.Transaction[H], done chan outcome[T]) (outcome[T], error) {
	id, err := e.Submit(tx)
	if err != nil {
		return outcome[T]{}, errors.WrapFail(err, "submit transaction")
	}

	a := await.FromChan[outcome[T]](done)
	if !a.Await(ctx) {
		return outcome[T]{}, errors.WrapFailf(ctx.Err(), "await transaction %s", id)
	}

	v, _ := a.Value()
	return v.(outcome[T]), nil
}
