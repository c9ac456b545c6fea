package txn

import (
	"context"
	"slices"

	"github.com/nikmy/txflow/internal/dispatch"
	"github.com/nikmy/txflow/pkg/builder"
	"github.com/nikmy/txflow/pkg/errors"
)

type ProcessFunc[H, T any] func(ctx context.Context, h H, item T) error

// ProgressListener is told how many of total items are done.
type ProgressListener[T any] func(current, total int, item T)

type processConfig[H, T any] struct {
	items      []T
	process    ProcessFunc[H, T]
	progress   ProgressListener[T]
	dispatcher dispatch.Dispatcher
}

// Process applies one function to every item, in order, within
// a single transaction execution. It stops at the first failure.
// Progress is posted as items are processed, so inside a database
// transaction a listener may see items that are rolled back later.
type Process[H, T any] struct {
	cfg processConfig[H, T]
}

func (p *Process[H, T]) Len() int {
	return len(p.cfg.items)
}

func (p *Process[H, T]) Execute(ctx context.Context, h H) error {
	total := len(p.cfg.items)

	var postErr error
	for i, item := range p.cfg.items {
		if err := ctx.Err(); err != nil {
			return errors.WrapFailf(err, "process item %d of %d", i+1, total)
		}

		if err := p.cfg.process(ctx, h, item); err != nil {
			return errors.WrapFailf(err, "process item %d of %d", i+1, total)
		}

		if p.cfg.progress == nil || postErr != nil {
			continue
		}

		progress, current := p.cfg.progress, i+1
		postErr = p.cfg.dispatcher.Post(func() { progress(current, total, item) })
	}

	return errors.Mark(errors.WrapFail(postErr, "post progress"), ErrDispatchFailure)
}

func NewProcess[H, T any](d dispatch.Dispatcher, items []T, fn ProcessFunc[H, T]) *ProcessBuilder[H, T] {
	if fn == nil {
		panic("txn: process requires a function")
	}
	if d == nil {
		panic("txn: process requires a dispatcher")
	}

	return &ProcessBuilder[H, T]{
		b: builder.New(processConfig[H, T]{
			items:      items,
			process:    fn,
			dispatcher: d,
		}),
	}
}

type ProcessBuilder[H, T any] struct {
	b *builder.Builder[processConfig[H, T]]
}

func (pb *ProcessBuilder[H, T]) Add(items ...T) *ProcessBuilder[H, T] {
	pb.b.Use(func(cfg *processConfig[H, T]) {
		cfg.items = append(slices.Clip(cfg.items), items...)
	})
	return pb
}

func (pb *ProcessBuilder[H, T]) Progress(fn ProgressListener[T]) *ProcessBuilder[H, T] {
	pb.b.Use(func(cfg *processConfig[H, T]) { cfg.progress = fn })
	return pb
}

func (pb *ProcessBuilder[H, T]) Build() *Process[H, T] {
	cfg := pb.b.Snapshot()
	cfg.items = slices.Clone(cfg.items)
	return &Process[H, T]{cfg: cfg}
}
