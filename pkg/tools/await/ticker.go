package await

import (
	"context"
	"reflect"
	"time"
)

// Tick fires every interval until stop is called. Value is the
// time of the last tick.
func Tick(interval time.Duration) (a Awaiter, stop func()) {
	t := &tickerAwaiter{ticker: time.NewTicker(interval)}
	return t, t.ticker.Stop
}

type tickerAwaiter struct {
	ticker *time.Ticker
	last   time.Time
}

func (t *tickerAwaiter) Await(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case t.last = <-t.ticker.C:
		return true
	}
}

func (t *tickerAwaiter) Value() (any, bool) {
	return t.last, !t.last.IsZero()
}

func (t *tickerAwaiter) bind() reflect.SelectCase {
	return reflect.SelectCase{
		Dir:  reflect.SelectRecv,
		Chan: reflect.ValueOf(t.ticker.C),
	}
}
