package batch

import (
	"context"
	"slices"
	"sync"

	"github.com/nikmy/txflow/internal/dispatch"
	"github.com/nikmy/txflow/internal/txn"
	"github.com/nikmy/txflow/pkg/errors"
	"github.com/nikmy/txflow/pkg/logger"
	"github.com/nikmy/txflow/pkg/tools/await"
)

type Submitter[H any] interface {
	Submit(t txn.Transaction[H]) (txn.ID, error)
}

// New creates a saver that buffers items and stores them with save,
// one process transaction per batch.
func New[H, T any](
	s Submitter[H],
	d dispatch.Dispatcher,
	save txn.ProcessFunc[H, T],
	cfg Config,
	log logger.Logger,
) *Saver[H, T] {
	return &Saver[H, T]{
		submitter:  s,
		dispatcher: d,
		save:       save,
		cfg:        cfg.withDefaults(),
		log:        log.With("batch"),
		kick:       make(chan struct{}, 1),
	}
}

type Saver[H, T any] struct {
	submitter  Submitter[H]
	dispatcher dispatch.Dispatcher
	save       txn.ProcessFunc[H, T]
	cfg        Config
	log        logger.Logger

	mu        sync.Mutex
	buf       []T
	onFlushed func(items []T)
	onFailed  func(items []T, err error)
	onEmpty   func()

	kick chan struct{}
}

// OnFlushed is called on the delivery lane after a batch was saved.
func (s *Saver[H, T]) OnFlushed(fn func(items []T)) *Saver[H, T] {
	s.mu.Lock()
	s.onFlushed = fn
	s.mu.Unlock()
	return s
}

// OnFailed is called on the delivery lane when saving a batch failed.
func (s *Saver[H, T]) OnFailed(fn func(items []T, err error)) *Saver[H, T] {
	s.mu.Lock()
	s.onFailed = fn
	s.mu.Unlock()
	return s
}

// OnEmpty is called on the delivery lane when a periodic flush
// finds nothing to save.
func (s *Saver[H, T]) OnEmpty(fn func()) *Saver[H, T] {
	s.mu.Lock()
	s.onEmpty = fn
	s.mu.Unlock()
	return s
}

// Add buffers items. Reaching the configured size wakes Run.
func (s *Saver[H, T]) Add(items ...T) {
	s.mu.Lock()
	s.buf = append(s.buf, items...)
	full := len(s.buf) >= s.cfg.Size
	s.mu.Unlock()

	if full {
		select {
		case s.kick <- struct{}{}:
		default:
		}
	}
}

// Purge drops buffered items and returns how many there were.
func (s *Saver[H, T]) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.buf)
	s.buf = nil
	return n
}

func (s *Saver[H, T]) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

// Flush submits everything buffered as one transaction. With an empty
// buffer it does nothing and returns txn.NilID. When the submitter
// rejects the batch, the items go back to the buffer.
func (s *Saver[H, T]) Flush() (txn.ID, error) {
	s.mu.Lock()
	items := s.buf
	s.buf = nil
	onFlushed, onFailed := s.onFlushed, s.onFailed
	s.mu.Unlock()

	if len(items) == 0 {
		return txn.NilID, nil
	}

	process := txn.NewProcess[H, T](s.dispatcher, items, s.save).Build()

	b := txn.Wrap[H](s.dispatcher, process).Named(s.cfg.Name)
	if onFlushed != nil {
		b.OnSuccess(func(*txn.Wrapped[H]) { onFlushed(slices.Clone(items)) })
	}
	if onFailed != nil {
		b.OnError(func(_ *txn.Wrapped[H], err error) { onFailed(slices.Clone(items), err) })
	}
	if s.cfg.Atomic {
		b.InTransaction()
	}

	id, err := s.submitter.Submit(b.Build())
	if err != nil {
		s.mu.Lock()
		s.buf = append(items, s.buf...)
		s.mu.Unlock()
		return txn.NilID, errors.WrapFailf(err, "submit batch of %d", len(items))
	}

	s.log.Debugf("submitted batch %s of %d items", id, len(items))
	return id, nil
}

// Run flushes every interval and whenever Add fills the buffer.
// When ctx is done it flushes what is left and returns.
func (s *Saver[H, T]) Run(ctx context.Context) error {
	tick, stop := await.Tick(s.cfg.Interval)
	defer stop()

	wake := await.FirstOf(tick, await.FromChan[struct{}](s.kick))
	for wake.Await(ctx) {
		if s.Pending() == 0 {
			if wake.Chosen() == 0 {
				s.empty()
			}
			continue
		}

		_, err := s.Flush()
		if errors.Is(err, txn.ErrQueueClosed) {
			return err
		}
		if err != nil {
			s.log.Error(err)
		}
	}

	_, err := s.Flush()
	return errors.WrapFail(err, "flush on stop")
}

func (s *Saver[H, T]) empty() {
	s.mu.Lock()
	onEmpty := s.onEmpty
	s.mu.Unlock()

	if onEmpty == nil {
		return
	}
	if err := s.dispatcher.Post(onEmpty); err != nil {
		s.log.Warn(errors.WrapFail(err, "post empty notification"))
	}
}
