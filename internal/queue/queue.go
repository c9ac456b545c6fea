package queue

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nikmy/txflow/internal/txn"
	"github.com/nikmy/txflow/pkg/errors"
	"github.com/nikmy/txflow/pkg/logger"
	"github.com/nikmy/txflow/pkg/tools/await"
)

type State int

const (
	Idle State = iota
	Running
	Shutdown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Shutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// New creates a queue that runs transactions against handle one
// at a time on its own goroutine. Nothing runs before Start.
func New[H any](handle H, log logger.Logger, opts ...Option) *Queue[H] {
	log = log.With("queue")

	o := defaultOptions(log)
	for _, opt := range opts {
		opt(&o)
	}

	return &Queue[H]{
		handle:  handle,
		log:     log,
		opts:    o,
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

type Queue[H any] struct {
	handle H
	log    logger.Logger
	opts   options

	mu       sync.Mutex
	pending  pending[H]
	seq      uint64
	inFlight bool
	closing  bool

	start   sync.Once
	wake    chan struct{}
	stopped chan struct{}
}

// Submit accepts t with normal priority. It never blocks.
func (q *Queue[H]) Submit(t txn.Transaction[H]) (txn.ID, error) {
	return q.SubmitWithPriority(t, PriorityNormal)
}

// SubmitWithPriority accepts t ahead of queued work with lower priority.
// Work with equal priority keeps acceptance order.
func (q *Queue[H]) SubmitWithPriority(t txn.Transaction[H], p Priority) (txn.ID, error) {
	if t == nil {
		return txn.NilID, ErrNilTransaction
	}

	e := &entry[H]{
		id:       txn.NewID(),
		name:     nameOf(t),
		priority: p,
		accepted: time.Now(),
		tx:       t,
	}

	q.mu.Lock()
	if q.closing {
		q.mu.Unlock()
		return txn.NilID, txn.ErrQueueClosed
	}
	e.seq = q.seq
	q.seq++
	q.pending.push(e)
	depth := q.pending.Len()
	q.mu.Unlock()

	q.opts.observer.Depth(depth)
	q.notify()
	return e.id, nil
}

// Cancel removes a queued transaction. It reports false when the
// transaction already started, finished or was never accepted.
func (q *Queue[H]) Cancel(id txn.ID) bool {
	q.mu.Lock()
	_, ok := q.pending.remove(id)
	depth := q.pending.Len()
	q.mu.Unlock()

	if ok {
		q.opts.observer.Dropped(DropCancelled, 1)
		q.opts.observer.Depth(depth)
	}
	return ok
}

// CancelName removes every queued transaction whose txn.Named name
// equals name and returns how many were removed.
func (q *Queue[H]) CancelName(name string) int {
	if name == "" {
		return 0
	}

	q.mu.Lock()
	removed := q.pending.removeWhere(func(e *entry[H]) bool { return e.name == name })
	depth := q.pending.Len()
	q.mu.Unlock()

	if len(removed) != 0 {
		q.opts.observer.Dropped(DropCancelled, len(removed))
		q.opts.observer.Depth(depth)
	}
	return len(removed)
}

// Start launches the worker lane; repeated calls are no-ops.
func (q *Queue[H]) Start() {
	q.start.Do(func() {
		go q.run()
	})
}

func (q *Queue[H]) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()

	switch {
	case q.closing:
		return Shutdown
	case q.inFlight:
		return Running
	default:
		return Idle
	}
}

// Pending reports how many transactions wait for execution.
func (q *Queue[H]) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending.Len()
}

// Close stops accepting transactions and applies the shutdown policy.
// Transactions dropped by DrainInFlight are reported with
// txn.ErrQueueClosed before Close waits for the worker lane.
// Close gives up waiting when ctx is done; the lane still stops
// on its own afterwards.
func (q *Queue[H]) Close(ctx context.Context) error {
	q.mu.Lock()
	var dropped []*entry[H]
	if !q.closing {
		q.closing = true
		if q.opts.policy == DrainInFlight {
			dropped = q.pending.drain()
		}
	}
	q.mu.Unlock()

	if len(dropped) != 0 {
		q.log.Infof("dropping %d queued transactions on shutdown", len(dropped))
		for _, e := range dropped {
			q.report(e, txn.ErrQueueClosed)
		}
		q.opts.observer.Dropped(DropShutdown, len(dropped))
		q.opts.observer.Depth(0)
	}

	q.Start()
	q.notify()

	if !await.FromChan[struct{}](q.stopped).Await(ctx) {
		return errors.WrapFail(ctx.Err(), "wait for worker lane")
	}
	return nil
}

func (q *Queue[H]) notify() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue[H]) run() {
	defer close(q.stopped)

	for {
		e, closing := q.next()
		if e != nil {
			q.execute(e)
			continue
		}
		if closing {
			return
		}
		<-q.wake
	}
}

func (q *Queue[H]) next() (*entry[H], bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.inFlight = false
	if q.pending.Len() == 0 {
		return nil, q.closing
	}

	e := q.pending.pop()
	q.inFlight = true
	q.opts.observer.Depth(q.pending.Len())
	return e, q.closing
}

func (q *Queue[H]) execute(e *entry[H]) {
	ctx, span := q.opts.tracer.Start(
		context.Background(),
		"txflow.transaction",
		trace.WithAttributes(
			attribute.String("txflow.txn.id", e.id.String()),
			attribute.String("txflow.txn.name", e.name),
			attribute.String("txflow.txn.priority", e.priority.String()),
			attribute.Int64("txflow.txn.wait_ms", time.Since(e.accepted).Milliseconds()),
		),
	)
	defer span.End()

	started := time.Now()
	err := q.safeExecute(ctx, e.tx)
	q.opts.observer.Executed(time.Since(started), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		q.report(e, err)
	}
}

func (q *Queue[H]) safeExecute(ctx context.Context, t txn.Transaction[H]) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = errors.FromPanic(v, txn.ErrPanicked)
		}
	}()

	return t.Execute(ctx, q.handle)
}

func (q *Queue[H]) report(e *entry[H], err error) {
	defer func() {
		if v := recover(); v != nil {
			q.log.Error(errors.Wrap(errors.FromPanic(v, txn.ErrPanicked), "reporter"))
		}
	}()

	q.opts.reporter.Report(Failure{ID: e.id, Name: e.name, Err: err})
}

func nameOf(t any) string {
	if n, ok := t.(txn.Named); ok {
		return n.Name()
	}
	return ""
}
