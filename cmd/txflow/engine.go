package main

import (
	"context"

	"github.com/nikmy/txflow/internal/engine"
	"github.com/nikmy/txflow/internal/pubsub"
	"github.com/nikmy/txflow/internal/queue"
	"github.com/nikmy/txflow/internal/store/pgstore"
	"github.com/nikmy/txflow/internal/store/sqlstore"
	"github.com/nikmy/txflow/pkg/errors"
)

// failureReporting logs failures and, with events enabled, also
// publishes them to kafka. The returned func flushes the publisher.
func (a *app) failureReporting() (queue.Option, func() error) {
	if !a.cfg.Events.Enabled {
		return queue.WithReporter(queue.LogReporter(a.log)), func() error { return nil }
	}

	p := pubsub.NewKafkaProducer(a.cfg.Events, a.log)
	return queue.WithReporter(queue.Tee(queue.LogReporter(a.log), p)), p.Close
}

// withEngine runs fn against a started engine over h and closes
// the engine afterwards.
func withEngine[H any](a *app, h H, fn func(e *engine.Engine[H]) error, opts ...queue.Option) error {
	reporting, closeReporting := a.failureReporting()

	e, err := engine.New(h, a.cfg.Engine, a.log, append([]queue.Option{reporting}, opts...)...)
	if err != nil {
		return errors.Join(err, closeReporting())
	}
	e.Start()

	runErr := fn(e)
	return errors.Join(runErr, e.Close(context.Background()), closeReporting())
}

func withSQLite(
	ctx context.Context,
	a *app,
	fn func(e *engine.Engine[*sqlstore.Handle]) error,
	opts ...queue.Option,
) error {
	h, err := sqlstore.Open(ctx, a.cfg.SQLite, a.log)
	if err != nil {
		return err
	}

	err = withEngine(a, h, fn, opts...)
	return errors.Join(err, errors.WrapFail(h.Close(), "close sqlite"))
}

func withPostgres(
	ctx context.Context,
	a *app,
	fn func(e *engine.Engine[*pgstore.Handle]) error,
	opts ...queue.Option,
) error {
	h, err := pgstore.Connect(ctx, a.cfg.Postgres, a.log)
	if err != nil {
		return err
	}
	defer h.Close()

	return withEngine(a, h, fn, opts...)
}
