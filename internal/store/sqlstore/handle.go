package sqlstore

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/nikmy/txflow/internal/txn"
	"github.com/nikmy/txflow/pkg/errors"
	"github.com/nikmy/txflow/pkg/logger"
)

const driverName = "sqlite"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ querier = (*sql.DB)(nil)
	_ querier = (*sql.Tx)(nil)

	_ txn.Atomic[*Handle] = (*Handle)(nil)
)

// Open opens the database file and checks the connection.
// The pool keeps a single connection: SQLite has one writer anyway
// and the queue never runs two transactions at once.
func Open(ctx context.Context, cfg Config, log logger.Logger) (*Handle, error) {
	if cfg.Path == "" {
		return nil, errors.Fail("open sqlite database: empty path")
	}

	db, err := sql.Open(driverName, cfg.dsn())
	if err != nil {
		return nil, errors.WrapFailf(err, "open sqlite database %s", cfg.Path)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Join(
			errors.WrapFailf(err, "ping sqlite database %s", cfg.Path),
			db.Close(),
		)
	}

	log.With("sqlite").Infof("opened %s", cfg.Path)
	return &Handle{db: db, q: db}, nil
}

// Handle is the database capability passed to transactions.
// Inside Atomically it is bound to the open transaction.
type Handle struct {
	db   *sql.DB
	q    querier
	inTx bool
}

func (h *Handle) Close() error {
	if h.inTx {
		return nil
	}
	return h.db.Close()
}

func (h *Handle) InTransaction() bool {
	return h.inTx
}

func (h *Handle) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return h.q.ExecContext(ctx, query, args...)
}

func (h *Handle) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return h.q.QueryContext(ctx, query, args...)
}

func (h *Handle) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return h.q.QueryRowContext(ctx, query, args...)
}

// Atomically runs fn inside one database transaction. A handle that
// is already bound to a transaction runs fn as part of it.
func (h *Handle) Atomically(ctx context.Context, fn func(h *Handle) error) error {
	if h.inTx {
		return fn(h)
	}

	return txn.RunTxn(
		ctx,
		func(ctx context.Context) (sqlTxn, error) {
			tx, err := h.db.BeginTx(ctx, nil)
			return sqlTxn{tx}, err
		},
		func(tx sqlTxn) error {
			return fn(&Handle{db: h.db, q: tx.Tx, inTx: true})
		},
	)
}

type sqlTxn struct {
	*sql.Tx
}

func (t sqlTxn) Commit(context.Context) error {
	return t.Tx.Commit()
}

func (t sqlTxn) Abort(context.Context) error {
	return t.Tx.Rollback()
}
