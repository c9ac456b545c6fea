package await

import (
	"context"
	"reflect"
)

// FirstOf completes as soon as any of waiters does.
// Chosen reports the index of the winner after a successful Await.
func FirstOf(waiters ...Awaiter) *FirstOfAwaiter {
	cases := make([]reflect.SelectCase, 0, len(waiters)+1)
	for _, a := range waiters {
		cases = append(cases, a.bind())
	}

	return &FirstOfAwaiter{cases: cases, chosen: -1}
}

type FirstOfAwaiter struct {
	cases  []reflect.SelectCase
	val    any
	chosen int
}

func (a *FirstOfAwaiter) Await(ctx context.Context) (waited bool) {
	a.cases = append(a.cases, reflect.SelectCase{
		Dir:  reflect.SelectRecv,
		Chan: reflect.ValueOf(ctx.Done()),
	})
	defer func() { a.cases = a.cases[:len(a.cases)-1] }()

	choice, val, ok := reflect.Select(a.cases)
	if choice == len(a.cases)-1 {
		a.chosen = -1
		return false
	}

	a.chosen = choice
	a.val = nil
	if ok {
		a.val = val.Interface()
	}
	return true
}

func (a *FirstOfAwaiter) Chosen() int {
	return a.chosen
}

func (a *FirstOfAwaiter) Value() (any, bool) {
	return a.val, a.val != nil
}

func (a *FirstOfAwaiter) bind() reflect.SelectCase {
	panic("await: FirstOf cannot be nested")
}
