package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikmy/txflow/internal/txn"
	"github.com/nikmy/txflow/pkg/errors"
	"github.com/nikmy/txflow/pkg/logger"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ querier = (*pgxpool.Pool)(nil)
	_ querier = (pgx.Tx)(nil)

	_ txn.Atomic[*Handle] = (*Handle)(nil)
)

func Connect(ctx context.Context, cfg Config, log logger.Logger) (*Handle, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, errors.WrapFail(err, "parse postgres dsn")
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	isoLevel, err := parseIsoLevel(cfg.IsoLevel)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.WrapFail(err, "create postgres pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.WrapFail(err, "ping postgres")
	}

	log.With("postgres").Infof("connected to %s/%s", poolCfg.ConnConfig.Host, poolCfg.ConnConfig.Database)
	return &Handle{
		pool: pool,
		q:    pool,
		opts: pgx.TxOptions{IsoLevel: isoLevel},
	}, nil
}

// Handle is the database capability passed to transactions.
// Inside Atomically it is bound to the open transaction.
type Handle struct {
	pool *pgxpool.Pool
	q    querier
	tx   pgx.Tx
	opts pgx.TxOptions
}

func (h *Handle) Close() {
	if h.tx == nil {
		h.pool.Close()
	}
}

func (h *Handle) InTransaction() bool {
	return h.tx != nil
}

func (h *Handle) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return h.q.Exec(ctx, sql, args...)
}

func (h *Handle) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return h.q.Query(ctx, sql, args...)
}

func (h *Handle) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return h.q.QueryRow(ctx, sql, args...)
}

// Atomically runs fn inside one database transaction. On a handle
// already bound to a transaction fn runs inside a savepoint.
func (h *Handle) Atomically(ctx context.Context, fn func(h *Handle) error) error {
	return txn.RunTxn(
		ctx,
		func(ctx context.Context) (pgTxn, error) {
			if h.tx != nil {
				tx, err := h.tx.Begin(ctx)
				return pgTxn{tx}, err
			}
			tx, err := h.pool.BeginTx(ctx, h.opts)
			return pgTxn{tx}, err
		},
		func(tx pgTxn) error {
			return fn(&Handle{pool: h.pool, q: tx.Tx, tx: tx.Tx, opts: h.opts})
		},
	)
}

type pgTxn struct {
	pgx.Tx
}

func (t pgTxn) Abort(ctx context.Context) error {
	return t.Tx.Rollback(ctx)
}

func parseIsoLevel(level string) (pgx.TxIsoLevel, error) {
	switch level {
	case "":
		return "", nil
	case "serializable":
		return pgx.Serializable, nil
	case "repeatable_read":
		return pgx.RepeatableRead, nil
	case "read_committed":
		return pgx.ReadCommitted, nil
	case "read_uncommitted":
		return pgx.ReadUncommitted, nil
	default:
		return "", errors.Errorf("unknown isolation level %q", level)
	}
}
