package sqlstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nikmy/txflow/internal/engine"
	"github.com/nikmy/txflow/internal/txn"
	"github.com/nikmy/txflow/pkg/logger"
)

type account struct {
	ID      int64
	Owner   string
	Balance int64
}

func scanAccount(rows *sql.Rows) (account, error) {
	var a account
	err := rows.Scan(&a.ID, &a.Owner, &a.Balance)
	return a, err
}

const schema = `CREATE TABLE accounts (
	id      INTEGER PRIMARY KEY,
	owner   TEXT    NOT NULL UNIQUE,
	balance INTEGER NOT NULL CHECK (balance >= 0)
)`

func openTestHandle(t *testing.T) *Handle {
	h, err := Open(context.Background(), Config{
		Path:        filepath.Join(t.TempDir(), "txflow.db"),
		ForeignKeys: true,
	}, logger.NewStub())
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	require.NoError(t, Script(schema).Execute(context.Background(), h))
	return h
}

func newTestEngine(t *testing.T, h *Handle) *engine.Engine[*Handle] {
	e, err := engine.New(h, engine.Config{CloseTimeout: time.Second}, logger.NewStub())
	require.NoError(t, err)
	e.Start()

	t.Cleanup(func() { _ = e.Close(context.Background()) })
	return e
}

func allAccounts() txn.QueryFunc[*Handle, account] {
	return Select[account](scanAccount, "SELECT id, owner, balance FROM accounts ORDER BY id")
}

func TestOpen_emptyPath(t *testing.T) {
	_, err := Open(context.Background(), Config{}, logger.NewStub())
	require.Error(t, err)
}

func TestSelect(t *testing.T) {
	h := openTestHandle(t)
	ctx := context.Background()

	require.NoError(t, Exec("INSERT INTO accounts (owner, balance) VALUES (?, ?), (?, ?)", "alice", 10, "bob", 20).Execute(ctx, h))

	got, err := allAccounts().QueryResults(ctx, h)
	require.NoError(t, err)
	require.Equal(t, []account{{1, "alice", 10}, {2, "bob", 20}}, got.Items())

	rows, err := Select[Row](ScanRow, "SELECT owner, balance FROM accounts WHERE owner = ?", "bob").QueryResults(ctx, h)
	require.NoError(t, err)
	require.Equal(t, 1, rows.Len())
	require.Equal(t, Row{"owner": "bob", "balance": int64(20)}, rows.At(0))

	_, err = Select[account](scanAccount, "SELECT * FROM missing").QueryResults(ctx, h)
	require.Error(t, err)
}

func TestHandle_Atomically(t *testing.T) {
	type testcase struct {
		name        string
		statements  []string
		wantErr     bool
		wantBalance []int64
	}

	tests := [...]testcase{
		{
			name: "commit",
			statements: []string{
				"UPDATE accounts SET balance = balance - 5 WHERE owner = 'alice'",
				"UPDATE accounts SET balance = balance + 5 WHERE owner = 'bob'",
			},
			wantBalance: []int64{5, 25},
		},
		{
			name: "rollback on constraint",
			statements: []string{
				"UPDATE accounts SET balance = balance + 50 WHERE owner = 'bob'",
				"UPDATE accounts SET balance = balance - 50 WHERE owner = 'alice'",
			},
			wantErr:     true,
			wantBalance: []int64{10, 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := openTestHandle(t)
			ctx := context.Background()
			require.NoError(t, Exec("INSERT INTO accounts (owner, balance) VALUES ('alice', 10), ('bob', 20)").Execute(ctx, h))

			err := h.Atomically(ctx, func(tx *Handle) error {
				require.True(t, tx.InTransaction())
				return Script(tt.statements...).Execute(ctx, tx)
			})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			got, err := allAccounts().QueryResults(ctx, h)
			require.NoError(t, err)

			var balances []int64
			for _, a := range got.Items() {
				balances = append(balances, a.Balance)
			}
			require.Equal(t, tt.wantBalance, balances)
		})
	}
}

func TestEngine_sqlite(t *testing.T) {
	h := openTestHandle(t)
	e := newTestEngine(t, h)
	ctx := context.Background()

	for _, owner := range []string{"alice", "bob", "carol"} {
		_, err := e.Submit(Exec("INSERT INTO accounts (owner, balance) VALUES (?, 0)", owner))
		require.NoError(t, err)
	}

	rows, err := engine.Await(ctx, e, txn.Queriable[*Handle, account](allAccounts()))
	require.NoError(t, err)
	require.Equal(t, 3, rows.Len())

	err = engine.Run(ctx, e, txn.Transaction[*Handle](Script(
		"INSERT INTO accounts (owner, balance) VALUES ('dave', 0)",
		"INSERT INTO accounts (owner, balance) VALUES ('alice', 0)",
	)), true)
	require.Error(t, err)

	rows, err = engine.Await(ctx, e, txn.Queriable[*Handle, account](allAccounts()))
	require.NoError(t, err)
	require.Equal(t, 3, rows.Len(), "failed atomic script must not leave rows behind")

	first, ok := rows.First()
	require.True(t, ok)
	require.Equal(t, "alice", first.Owner)
}

func TestHandle_Atomically_panicReleasesConnection(t *testing.T) {
	h := openTestHandle(t)
	e := newTestEngine(t, h)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	crashed := make(chan error, 1)
	_, err := e.Submit(txn.Func[*Handle](func(ctx context.Context, h *Handle) error {
		err := h.Atomically(ctx, func(tx *Handle) error {
			if _, err := tx.Exec(ctx, "INSERT INTO accounts (owner, balance) VALUES ('mallory', 1)"); err != nil {
				return err
			}
			panic("nil pointer dereference")
		})
		crashed <- err
		return err
	}))
	require.NoError(t, err)
	require.ErrorIs(t, <-crashed, txn.ErrPanicked)

	err = engine.Run(ctx, e, txn.Transaction[*Handle](Exec("INSERT INTO accounts (owner, balance) VALUES ('trent', 2)")), false)
	require.NoError(t, err)

	err = engine.Run(ctx, e, txn.Func[*Handle](func(ctx context.Context, h *Handle) error {
		panic("nil pointer dereference")
	}), true)
	require.ErrorIs(t, err, txn.ErrPanicked)

	rows, err := engine.Await(ctx, e, txn.Queriable[*Handle, account](allAccounts()))
	require.NoError(t, err)
	require.Equal(t, 1, rows.Len())

	first, _ := rows.First()
	require.Equal(t, "trent", first.Owner)
}

func TestProcess_sqlite(t *testing.T) {
	h := openTestHandle(t)
	e := newTestEngine(t, h)
	ctx := context.Background()

	insert := func(ctx context.Context, h *Handle, owner string) error {
		_, err := h.Exec(ctx, "INSERT INTO accounts (owner, balance) VALUES (?, 1)", owner)
		return err
	}

	var progress []int
	p := txn.NewProcess[*Handle, string](e.Dispatcher(), []string{"a", "b", "c"}, insert).
		Progress(func(current, total int, _ string) { progress = append(progress, current) }).
		Build()

	require.NoError(t, engine.Run[*Handle](ctx, e, p, true))

	rows, err := engine.Await(ctx, e, txn.Queriable[*Handle, account](allAccounts()))
	require.NoError(t, err)
	require.Equal(t, 3, rows.Len())

	require.NoError(t, e.Close(ctx))
	require.Equal(t, []int{1, 2, 3}, progress)

	dup := txn.NewProcess[*Handle, string](e.Dispatcher(), []string{"x"}, insert).Build()
	_, err = e.Submit(dup)
	require.ErrorIs(t, err, txn.ErrQueueClosed)
}
