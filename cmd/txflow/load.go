package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nikmy/txflow/internal/batch"
	"github.com/nikmy/txflow/internal/engine"
	"github.com/nikmy/txflow/internal/queue"
	"github.com/nikmy/txflow/internal/store/pgstore"
	"github.com/nikmy/txflow/internal/store/sqlstore"
	"github.com/nikmy/txflow/internal/txn"
	"github.com/nikmy/txflow/pkg/errors"
)

const maxRecordSize = 1 << 20

type record map[string]any

type loadReport struct {
	mu       sync.Mutex
	saved    int
	batches  int
	failures []error
}

func (r *loadReport) flushed(items []record) {
	r.mu.Lock()
	r.saved += len(items)
	r.batches++
	r.mu.Unlock()
}

func (r *loadReport) failed(items []record, err error) {
	r.mu.Lock()
	r.failures = append(r.failures, errors.WrapFailf(err, "save batch of %d", len(items)))
	r.mu.Unlock()
}

func (r *loadReport) print(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(w, "saved %d records in %d batches\n", r.saved, r.batches)
	return errors.Join(r.failures...)
}

func newLoadCommand(a *app) *cobra.Command {
	var (
		store  string
		size   int
		atomic bool
	)

	cmd := &cobra.Command{
		Use:   "load <table> <file.jsonl>",
		Short: "Insert JSON lines into a table in batches",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			table, path := args[0], args[1]

			cfg := a.cfg.Batch
			if cfg.Name == "" {
				cfg.Name = "load:" + table
			}
			if cmd.Flags().Changed("size") {
				cfg.Size = size
			}
			if cmd.Flags().Changed("atomic") {
				cfg.Atomic = atomic
			}

			f, err := os.Open(path)
			if err != nil {
				return errors.WrapFailf(err, "open %s", path)
			}
			defer f.Close()

			report := &loadReport{}
			drainAll := queue.WithShutdownPolicy(queue.DrainAll)

			switch store {
			case storeSQLite:
				save := insertInto[*sqlstore.Handle](table, sqlitePlaceholder, func(ctx context.Context, h *sqlstore.Handle, q string, args ...any) error {
					_, err := h.Exec(ctx, q, args...)
					return err
				})
				err = withSQLite(ctx, a, func(e *engine.Engine[*sqlstore.Handle]) error {
					return loadRecords(ctx, a, e, f, save, cfg, report)
				}, drainAll)
			case storePostgres:
				save := insertInto[*pgstore.Handle](table, postgresPlaceholder, func(ctx context.Context, h *pgstore.Handle, q string, args ...any) error {
					_, err := h.Exec(ctx, q, args...)
					return err
				})
				err = withPostgres(ctx, a, func(e *engine.Engine[*pgstore.Handle]) error {
					return loadRecords(ctx, a, e, f, save, cfg, report)
				}, drainAll)
			default:
				return unknownStore(store)
			}

			return errors.Join(err, report.print(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().StringVar(&store, "store", storeSQLite, "sqlite or postgres")
	cmd.Flags().IntVar(&size, "size", 0, "records per batch")
	cmd.Flags().BoolVar(&atomic, "atomic", false, "save every batch inside a database transaction")
	return cmd
}

func loadRecords[H any](
	ctx context.Context,
	a *app,
	e *engine.Engine[H],
	r io.Reader,
	save txn.ProcessFunc[H, record],
	cfg batch.Config,
	report *loadReport,
) error {
	saver := batch.New[H, record](e, e.Dispatcher(), save, cfg, a.log).
		OnFlushed(report.flushed).
		OnFailed(report.failed)

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	var eg errgroup.Group
	eg.Go(func() error { return saver.Run(runCtx) })

	readErr := readRecords(r, func(rec record) { saver.Add(rec) })
	stop()

	return errors.Join(readErr, eg.Wait())
}

func readRecords(r io.Reader, add func(record)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)

	line := 0
	for scanner.Scan() {
		line++

		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return errors.WrapFailf(err, "parse line %d", line)
		}
		add(rec)
	}

	return errors.WrapFail(scanner.Err(), "read records")
}

type execFunc[H any] func(ctx context.Context, h H, q string, args ...any) error

func insertInto[H any](table string, placeholder func(n int) string, exec execFunc[H]) txn.ProcessFunc[H, record] {
	return func(ctx context.Context, h H, rec record) error {
		q, args := insertStatement(table, rec, placeholder)
		return errors.WrapFailf(exec(ctx, h, q, args...), "insert into %s", table)
	}
}

// insertStatement builds an INSERT for the record's keys in sorted order.
func insertStatement(table string, rec record, placeholder func(n int) string) (string, []any) {
	if len(rec) == 0 {
		return "INSERT INTO " + quoteIdent(table) + " DEFAULT VALUES", nil
	}

	columns := make([]string, 0, len(rec))
	for column := range rec {
		columns = append(columns, column)
	}
	slices.Sort(columns)

	names := make([]string, len(columns))
	marks := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, column := range columns {
		names[i] = quoteIdent(column)
		marks[i] = placeholder(i + 1)
		args[i] = rec[column]
	}

	q := "INSERT INTO " + quoteIdent(table) +
		" (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
	return q, args
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func sqlitePlaceholder(int) string {
	return "?"
}

func postgresPlaceholder(n int) string {
	return "$" + strconv.Itoa(n)
}
