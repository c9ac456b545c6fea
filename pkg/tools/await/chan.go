package await

import (
	"context"
	"reflect"
)

// FromChan waits for a value on ch. Value reports false once ch is closed.
func FromChan[T any](ch <-chan T) Awaiter {
	return &chanAwaiter[T]{recv: ch}
}

type chanAwaiter[T any] struct {
	recv <-chan T
	val  T
	ok   bool
}

func (a *chanAwaiter[T]) Await(ctx context.Context) (waited bool) {
	select {
	case <-ctx.Done():
		return false
	case a.val, a.ok = <-a.recv:
		return true
	}
}

func (a *chanAwaiter[T]) Value() (any, bool) {
	return a.val, a.ok
}

func (a *chanAwaiter[T]) bind() reflect.SelectCase {
	return reflect.SelectCase{
		Dir:  reflect.SelectRecv,
		Chan: reflect.ValueOf(a.recv),
	}
}
