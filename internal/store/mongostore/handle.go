package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/nikmy/txflow/internal/txn"
	"github.com/nikmy/txflow/pkg/errors"
	"github.com/nikmy/txflow/pkg/logger"
)

var _ txn.Atomic[*Handle] = (*Handle)(nil)

func Connect(ctx context.Context, cfg Config, log logger.Logger) (*Handle, error) {
	opts := options.Client().
		ApplyURI(cfg.URL).
		SetTimeout(cfg.Timeout)

	if cfg.Auth.Username != "" {
		opts.SetAuth(options.Credential{
			Username: cfg.Auth.Username,
			Password: cfg.Auth.Password,
		})
	}
	if cfg.Pool.MinSize > 0 {
		opts.SetMinPoolSize(cfg.Pool.MinSize)
	}
	if cfg.Pool.MaxSize > 0 {
		opts.SetMaxPoolSize(cfg.Pool.MaxSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.WrapFail(err, "connect to mongo db")
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, errors.Join(
			errors.WrapFail(err, "ping mongo db"),
			client.Disconnect(ctx),
		)
	}

	log.With("mongo").Infof("connected to database %s", cfg.Database)
	return &Handle{
		client: client,
		db:     client.Database(cfg.Database),
	}, nil
}

// Handle is the database capability passed to transactions.
// Inside Atomically it carries the session of the running
// transaction, and Bind attaches it to operation contexts.
type Handle struct {
	client *mongo.Client
	db     *mongo.Database
	sess   mongo.Session
}

func (h *Handle) Close(ctx context.Context) error {
	if h.sess != nil {
		return nil
	}
	return errors.WrapFail(h.client.Disconnect(ctx), "disconnect from mongo db")
}

func (h *Handle) InTransaction() bool {
	return h.sess != nil
}

func (h *Handle) Collection(name string) *mongo.Collection {
	return h.db.Collection(name)
}

// Bind returns ctx bound to the running transaction, if any.
// Every driver call made through a handle must use it.
func (h *Handle) Bind(ctx context.Context) context.Context {
	if h.sess == nil {
		return ctx
	}
	return mongo.NewSessionContext(ctx, h.sess)
}

// Atomically runs fn inside a multi-document transaction with
// majority read and write concerns. Nested calls join the outer one.
func (h *Handle) Atomically(ctx context.Context, fn func(h *Handle) error) error {
	if h.sess != nil {
		return fn(h)
	}

	return txn.RunTxn(
		ctx,
		func(ctx context.Context) (*mongoTxn, error) {
			return h.startTxn()
		},
		func(tx *mongoTxn) error {
			return fn(&Handle{client: h.client, db: h.db, sess: tx.sess})
		},
	)
}

func (h *Handle) startTxn() (*mongoTxn, error) {
	sess, err := h.client.StartSession(options.Session())
	if err != nil {
		return nil, errors.WrapFail(err, "start session")
	}

	err = sess.StartTransaction(
		options.Transaction().
			SetReadConcern(readconcern.Majority()).
			SetWriteConcern(writeconcern.Majority()),
	)
	if err != nil {
		sess.EndSession(context.Background())
		return nil, err
	}

	return &mongoTxn{sess: sess}, nil
}

type mongoTxn struct {
	sess mongo.Session
}

func (t *mongoTxn) Commit(ctx context.Context) error {
	defer t.sess.EndSession(ctx)
	return t.sess.CommitTransaction(ctx)
}

func (t *mongoTxn) Abort(ctx context.Context) error {
	defer t.sess.EndSession(ctx)
	return t.sess.AbortTransaction(ctx)
}
