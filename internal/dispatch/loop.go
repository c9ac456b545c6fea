package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/nikmy/txflow/pkg/errors"
	"github.com/nikmy/txflow/pkg/logger"
	"github.com/nikmy/txflow/pkg/tools/await"
)

const releaseTimeout = 3 * time.Second

// NewLoop creates a delivery lane. Closures are handed to a
// single-worker pool one by one, so a panicking callback is
// logged and the lane keeps going.
func NewLoop(log logger.Logger) (*Loop, error) {
	l := &Loop{
		log:     log.With("dispatch_loop"),
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}

	pool, err := ants.NewPool(
		1,
		ants.WithPanicHandler(func(v any) {
			l.log.Error(errors.FromPanic(v, ErrCallbackPanicked))
		}),
		ants.WithLogger(poolLogger{l.log}),
	)
	if err != nil {
		return nil, errors.WrapFail(err, "create delivery pool")
	}

	l.pool = pool
	return l, nil
}

type Loop struct {
	log  logger.Logger
	pool *ants.Pool

	mu     sync.Mutex
	todo   []func()
	closed bool

	once    sync.Once
	wake    chan struct{}
	stopped chan struct{}

	release    sync.Once
	releaseErr error
}

func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.todo = append(l.todo, fn)
	l.mu.Unlock()

	l.notify()
	return nil
}

// Start launches the lane goroutine; repeated calls are no-ops.
func (l *Loop) Start() {
	l.once.Do(func() {
		go l.run()
	})
}

// Pending reports closures posted but not yet taken by the lane.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.todo)
}

// Close rejects further posts, runs everything already posted
// and releases the pool. It gives up waiting when ctx is done;
// the lane then keeps draining and releases the pool once it stops.
func (l *Loop) Close(ctx context.Context) error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	l.Start()
	l.notify()

	if !await.FromChan[struct{}](l.stopped).Await(ctx) {
		go func() {
			<-l.stopped
			if err := l.releasePool(); err != nil {
				l.log.Error(err)
			}
		}()
		return errors.WrapFail(ctx.Err(), "drain delivery lane")
	}

	return l.releasePool()
}

func (l *Loop) releasePool() error {
	l.release.Do(func() {
		l.releaseErr = errors.WrapFail(l.pool.ReleaseTimeout(releaseTimeout), "release delivery pool")
	})
	return l.releaseErr
}

func (l *Loop) notify() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) run() {
	defer close(l.stopped)

	for {
		batch, closed := l.take()
		for _, fn := range batch {
			l.deliver(fn)
		}

		if len(batch) != 0 {
			continue
		}
		if closed {
			return
		}
		<-l.wake
	}
}

func (l *Loop) take() ([]func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	batch := l.todo
	l.todo = nil
	return batch, l.closed
}

func (l *Loop) deliver(fn func()) {
	done := make(chan struct{})
	err := l.pool.Submit(func() {
		defer close(done)
		fn()
	})
	if err != nil {
		l.log.Error(errors.WrapFail(err, "submit callback to delivery pool"))
		return
	}
	<-done
}

type poolLogger struct {
	log logger.Logger
}

func (p poolLogger) Printf(format string, args ...any) {
	p.log.Warnf(format, args...)
}
