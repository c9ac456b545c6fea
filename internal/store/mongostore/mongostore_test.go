package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/nikmy/txflow/internal/engine"
	"github.com/nikmy/txflow/internal/txn"
	"github.com/nikmy/txflow/pkg/errors"
	"github.com/nikmy/txflow/pkg/logger"
	"github.com/nikmy/txflow/pkg/mongotools"
)

// Transactions need a replica set, e.g. mongodb://localhost:27017/?replicaSet=rs0.
const urlEnv = "TXFLOW_TEST_MONGO_URL"

const collection = "accounts"

type account struct {
	ID      string `bson:"_id"`
	Owner   string `bson:"owner"`
	Balance int64  `bson:"balance"`
}

func connectTestHandle(t *testing.T) *Handle {
	url := os.Getenv(urlEnv)
	if url == "" {
		t.Skipf("%s is not set", urlEnv)
	}

	ctx := context.Background()
	h, err := Connect(ctx, Config{
		URL:      url,
		Timeout:  5 * time.Second,
		Database: "txflow_test",
	}, logger.NewStub())
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close(context.Background()) })

	require.NoError(t, DeleteMany(collection, mongotools.All()).Execute(ctx, h))
	return h
}

func TestEngine_mongo(t *testing.T) {
	h := connectTestHandle(t)

	e, err := engine.New(h, engine.Config{CloseTimeout: 5 * time.Second}, logger.NewStub())
	require.NoError(t, err)
	e.Start()
	t.Cleanup(func() { _ = e.Close(context.Background()) })

	ctx := context.Background()
	require.NoError(t, engine.Run(ctx, e, txn.Transaction[*Handle](InsertMany(collection,
		account{ID: "a", Owner: "alice", Balance: 10},
		account{ID: "b", Owner: "bob", Balance: 20},
	)), false))

	rich := func(a account) bool { return a.Balance > 15 }
	rows, err := engine.Await(ctx, e, txn.Queriable[*Handle, account](Find(collection, nil, rich)))
	require.NoError(t, err)
	require.Equal(t, []account{{ID: "b", Owner: "bob", Balance: 20}}, rows.Items())

	failing := txn.Func[*Handle](func(ctx context.Context, h *Handle) error {
		balance := int64(0)
		if err := SetByID(collection, "a", mongotools.Field("balance", &balance)).Execute(ctx, h); err != nil {
			return err
		}
		return errors.Error("insufficient funds")
	})
	require.Error(t, engine.Run(ctx, e, txn.Transaction[*Handle](failing), true))

	rows, err = engine.Await(ctx, e, txn.Queriable[*Handle, account](
		Find[account](collection, bson.M{"_id": "a"}, nil),
	))
	require.NoError(t, err)
	require.Equal(t, int64(10), rows.At(0).Balance, "aborted update must not be visible")

	require.Error(t, engine.Run(ctx, e, txn.Transaction[*Handle](
		SetByID(collection, "missing", bson.M{"balance": 1}),
	), false))
}
