package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nikmy/txflow/internal/api"
	"github.com/nikmy/txflow/internal/engine"
	"github.com/nikmy/txflow/internal/metrics"
	"github.com/nikmy/txflow/internal/queue"
	"github.com/nikmy/txflow/internal/store/sqlstore"
	"github.com/nikmy/txflow/pkg/errors"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the sqlite engine over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h, err := sqlstore.Open(ctx, a.cfg.SQLite, a.log)
	if err != nil {
		return err
	}

	reporting, closeReporting := a.failureReporting()

	var (
		opts     = []queue.Option{reporting}
		m        *metrics.Metrics
		gatherer prometheus.Gatherer
	)
	if a.cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		m = metrics.New(reg, a.cfg.Metrics.Namespace)
		opts = append(opts, queue.WithObserver(m))
		gatherer = reg
	}

	e, err := engine.New(h, a.cfg.Engine, a.log, opts...)
	if err != nil {
		return errors.Join(err, closeReporting(), h.Close())
	}
	e.Start()

	srv := api.NewServer(a.cfg.API, a.log, e, m, gatherer)

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return srv.Serve(ctx)
	})

	eg.Go(func() error {
		<-ctx.Done()
		a.log.Infof("gracefully shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return errors.Join(
			srv.Shutdown(shutdownCtx),
			e.Close(shutdownCtx),
			closeReporting(),
			errors.WrapFail(h.Close(), "close sqlite"),
		)
	})

	return eg.Wait()
}
