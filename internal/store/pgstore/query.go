package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/nikmy/txflow/internal/txn"
	"github.com/nikmy/txflow/pkg/errors"
)

// Select builds a query that maps rows onto T by column name.
func Select[T any](sql string, args ...any) txn.QueryFunc[*Handle, T] {
	return SelectWith[T](pgx.RowToStructByName[T], sql, args...)
}

// SelectMaps reads rows as column name to value maps.
func SelectMaps(sql string, args ...any) txn.QueryFunc[*Handle, map[string]any] {
	return SelectWith[map[string]any](pgx.RowToMap, sql, args...)
}

func SelectWith[T any](scan pgx.RowToFunc[T], sql string, args ...any) txn.QueryFunc[*Handle, T] {
	return func(ctx context.Context, h *Handle) (*txn.CursorResult[T], error) {
		rows, err := h.Query(ctx, sql, args...)
		if err != nil {
			return nil, errors.WrapFail(err, "run select")
		}

		items, err := pgx.CollectRows(rows, scan)
		if err != nil {
			return nil, errors.WrapFail(err, "collect rows")
		}
		return txn.NewCursorResult(items), nil
	}
}

// Exec builds a transaction running one statement.
func Exec(sql string, args ...any) txn.Func[*Handle] {
	return func(ctx context.Context, h *Handle) error {
		_, err := h.Exec(ctx, sql, args...)
		return errors.WrapFail(err, "exec statement")
	}
}

// Batch builds a transaction sending queued statements in one round trip.
func Batch(statements ...string) txn.Func[*Handle] {
	return func(ctx context.Context, h *Handle) error {
		b := &pgx.Batch{}
		for _, stmt := range statements {
			b.Queue(stmt)
		}

		var results pgx.BatchResults
		if h.tx != nil {
			results = h.tx.SendBatch(ctx, b)
		} else {
			results = h.pool.SendBatch(ctx, b)
		}

		for i := range statements {
			if _, err := results.Exec(); err != nil {
				return errors.Join(
					errors.WrapFailf(err, "exec statement %d", i+1),
					results.Close(),
				)
			}
		}
		return errors.WrapFail(results.Close(), "close batch")
	}
}
