package txn

import (
	"context"

	"github.com/nikmy/txflow/internal/dispatch"
	"github.com/nikmy/txflow/pkg/builder"
	"github.com/nikmy/txflow/pkg/errors"
)

// Queriable produces a typed result set when run against a handle.
type Queriable[H, T any] interface {
	QueryResults(ctx context.Context, h H) (*CursorResult[T], error)
}

type QueryFunc[H, T any] func(ctx context.Context, h H) (*CursorResult[T], error)

func (f QueryFunc[H, T]) QueryResults(ctx context.Context, h H) (*CursorResult[T], error) {
	return f(ctx, h)
}

// QueryResultCallback receives the transaction that ran and its result.
type QueryResultCallback[H, T any] func(tx *QueryTransaction[H, T], result *CursorResult[T])

type queryConfig[H, T any] struct {
	query      Queriable[H, T]
	callback   QueryResultCallback[H, T]
	dispatcher dispatch.Dispatcher
}

// QueryTransaction runs a query and hands the result to an optional
// callback on the delivery lane. It is immutable once built.
type QueryTransaction[H, T any] struct {
	cfg queryConfig[H, T]
}

func (q *QueryTransaction[H, T]) Execute(ctx context.Context, h H) error {
	result, err := q.cfg.query.QueryResults(ctx, h)
	if err != nil {
		return errors.Mark(errors.WrapFail(err, "query results"), ErrQueryExecution)
	}

	callback := q.cfg.callback
	if callback == nil {
		return nil
	}

	if result == nil {
		result = NewCursorResult[T](nil)
	}

	err = q.cfg.dispatcher.Post(func() {
		callback(q, result)
	})
	return errors.Mark(errors.WrapFail(err, "post query result"), ErrDispatchFailure)
}

func (q *QueryTransaction[H, T]) Query() Queriable[H, T] {
	return q.cfg.query
}

func (q *QueryTransaction[H, T]) HasCallback() bool {
	return q.cfg.callback != nil
}

// NewQueryBuilder panics when d or query is nil: a query transaction
// without a query or a delivery lane cannot exist.
func NewQueryBuilder[H, T any](d dispatch.Dispatcher, query Queriable[H, T]) *QueryBuilder[H, T] {
	if query == nil {
		panic("txn: query builder requires a queriable")
	}
	if d == nil {
		panic("txn: query builder requires a dispatcher")
	}

	return &QueryBuilder[H, T]{
		b: builder.New(queryConfig[H, T]{
			query:      query,
			dispatcher: d,
		}),
	}
}

type QueryBuilder[H, T any] struct {
	b *builder.Builder[queryConfig[H, T]]
}

// QueryResult sets the callback, replacing the previous one.
func (qb *QueryBuilder[H, T]) QueryResult(callback QueryResultCallback[H, T]) *QueryBuilder[H, T] {
	qb.b.Use(func(cfg *queryConfig[H, T]) {
		cfg.callback = callback
	})
	return qb
}

// Build returns a new transaction. Later builder changes do not affect it.
func (qb *QueryBuilder[H, T]) Build() *QueryTransaction[H, T] {
	return &QueryTransaction[H, T]{cfg: qb.b.Snapshot()}
}
