package main

import (
	"github.com/spf13/cobra"

	"github.com/nikmy/txflow/internal/engine"
	"github.com/nikmy/txflow/internal/store/pgstore"
	"github.com/nikmy/txflow/internal/store/sqlstore"
	"github.com/nikmy/txflow/internal/txn"
)

func newQueryCommand(a *app) *cobra.Command {
	var store string

	cmd := &cobra.Command{
		Use:   "query <sql> [args...]",
		Short: "Run a query and print rows as JSON lines",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, out := cmd.Context(), cmd.OutOrStdout()
			query, params := args[0], parseArgs(args[1:])

			switch store {
			case storeSQLite:
				return withSQLite(ctx, a, func(e *engine.Engine[*sqlstore.Handle]) error {
					q := sqlstore.Select[sqlstore.Row](sqlstore.ScanRow, query, params...)
					rows, err := engine.Await(ctx, e, txn.Queriable[*sqlstore.Handle, sqlstore.Row](q))
					if err != nil {
						return err
					}
					return printRows(out, rows.Items())
				})
			case storePostgres:
				return withPostgres(ctx, a, func(e *engine.Engine[*pgstore.Handle]) error {
					q := pgstore.SelectMaps(query, params...)
					rows, err := engine.Await(ctx, e, txn.Queriable[*pgstore.Handle, map[string]any](q))
					if err != nil {
						return err
					}
					return printRows(out, rows.Items())
				})
			default:
				return unknownStore(store)
			}
		},
	}

	cmd.Flags().StringVar(&store, "store", storeSQLite, "sqlite or postgres")
	return cmd
}

func newExecCommand(a *app) *cobra.Command {
	var (
		store  string
		atomic bool
	)

	cmd := &cobra.Command{
		Use:   "exec <sql> [args...]",
		Short: "Execute a statement",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			stmt, params := args[0], parseArgs(args[1:])

			switch store {
			case storeSQLite:
				return withSQLite(ctx, a, func(e *engine.Engine[*sqlstore.Handle]) error {
					return engine.Run(ctx, e, txn.Transaction[*sqlstore.Handle](sqlstore.Exec(stmt, params...)), atomic)
				})
			case storePostgres:
				return withPostgres(ctx, a, func(e *engine.Engine[*pgstore.Handle]) error {
					return engine.Run(ctx, e, txn.Transaction[*pgstore.Handle](pgstore.Exec(stmt, params...)), atomic)
				})
			default:
				return unknownStore(store)
			}
		},
	}

	cmd.Flags().StringVar(&store, "store", storeSQLite, "sqlite or postgres")
	cmd.Flags().BoolVar(&atomic, "atomic", false, "run inside a database transaction")
	return cmd
}
