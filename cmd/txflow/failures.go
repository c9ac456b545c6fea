package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nikmy/txflow/internal/pubsub"
	"github.com/nikmy/txflow/pkg/errors"
)

func newFailuresCommand(a *app) *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "failures",
		Short: "Print failure events published to kafka as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg := a.cfg.Events
			if len(cfg.Brokers) == 0 {
				return errors.Error("no kafka brokers configured")
			}
			if group != "" {
				cfg.GroupID = group
			}

			c, err := pubsub.NewKafkaConsumer(cfg, a.log)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			consumeErr := c.Consume(ctx, func(e pubsub.FailureEvent) error {
				return printRows(out, []pubsub.FailureEvent{e})
			})
			return errors.Join(consumeErr, c.Close())
		},
	}

	cmd.Flags().StringVar(&group, "group", "", "consumer group; without it only new events are printed")
	return cmd
}
