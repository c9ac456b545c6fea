package main

import (
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nikmy/txflow/internal/engine"
	"github.com/nikmy/txflow/internal/store/mongostore"
	"github.com/nikmy/txflow/internal/txn"
	"github.com/nikmy/txflow/pkg/errors"
)

func newFindCommand(a *app) *cobra.Command {
	var limit int64

	cmd := &cobra.Command{
		Use:   "find <collection> [filter]",
		Short: "Find mongo documents matching an extended JSON filter",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, out := cmd.Context(), cmd.OutOrStdout()

			filter := bson.M{}
			if len(args) == 2 {
				if err := bson.UnmarshalExtJSON([]byte(args[1]), false, &filter); err != nil {
					return errors.WrapFail(err, "parse filter")
				}
			}

			opts := options.Find()
			if limit > 0 {
				opts.SetLimit(limit)
			}

			h, err := mongostore.Connect(ctx, a.cfg.Mongo, a.log)
			if err != nil {
				return err
			}
			defer func() { _ = h.Close(ctx) }()

			return withEngine(a, h, func(e *engine.Engine[*mongostore.Handle]) error {
				q := mongostore.Find[bson.M](args[0], filter, nil, opts)
				docs, err := engine.Await(ctx, e, txn.Queriable[*mongostore.Handle, bson.M](q))
				if err != nil {
					return err
				}
				return printRows(out, docs.Items())
			})
		},
	}

	cmd.Flags().Int64Var(&limit, "limit", 0, "maximum number of documents, 0 for all")
	return cmd
}
