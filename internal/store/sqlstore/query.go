package sqlstore

import (
	"context"
	"database/sql"

	"github.com/nikmy/txflow/internal/txn"
	"github.com/nikmy/txflow/pkg/errors"
)

type ScanFunc[T any] func(rows *sql.Rows) (T, error)

// Select builds a query that reads every row produced by query.
func Select[T any](scan ScanFunc[T], query string, args ...any) txn.QueryFunc[*Handle, T] {
	return func(ctx context.Context, h *Handle) (*txn.CursorResult[T], error) {
		rows, err := h.Query(ctx, query, args...)
		if err != nil {
			return nil, errors.WrapFail(err, "run select")
		}
		defer rows.Close()

		var items []T
		for rows.Next() {
			item, err := scan(rows)
			if err != nil {
				return nil, errors.WrapFailf(err, "scan row %d", len(items))
			}
			items = append(items, item)
		}
		if err := rows.Err(); err != nil {
			return nil, errors.WrapFail(err, "iterate rows")
		}

		return txn.NewCursorResult(items), nil
	}
}

// Row is a generic result row keyed by column name.
type Row map[string]any

// ScanRow reads the current row into a Row. Text stored as
// bytes comes back as string.
func ScanRow(rows *sql.Rows) (Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	row := make(Row, len(cols))
	for i, col := range cols {
		if b, ok := values[i].([]byte); ok {
			row[col] = string(b)
			continue
		}
		row[col] = values[i]
	}
	return row, nil
}

// Exec builds a transaction running one statement.
func Exec(query string, args ...any) txn.Func[*Handle] {
	return func(ctx context.Context, h *Handle) error {
		_, err := h.Exec(ctx, query, args...)
		return errors.WrapFail(err, "exec statement")
	}
}

// Script builds a transaction running statements in order.
func Script(statements ...string) txn.Func[*Handle] {
	return func(ctx context.Context, h *Handle) error {
		for i, stmt := range statements {
			if _, err := h.Exec(ctx, stmt); err != nil {
				return errors.WrapFailf(err, "exec statement %d", i+1)
			}
		}
		return nil
	}
}
