package await

import (
	"context"
	"reflect"
)

// Awaiter is a single event that can be waited for, alone or
// combined with others through FirstOf.
type Awaiter interface {
	// Await blocks until the event happens or ctx is done.
	Await(ctx context.Context) (waited bool)

	// Value returns what the last successful Await received.
	Value() (any, bool)

	bind() reflect.SelectCase
}
