package txn

import (
	"context"

	"github.com/google/uuid"
)

// Transaction is one unit of work run against a database handle.
// The queue calls Execute exactly once, on its worker lane.
// Results leave a transaction only through callbacks it posts itself.
type Transaction[H any] interface {
	Execute(ctx context.Context, h H) error
}

// Func adapts an ordinary function to Transaction.
type Func[H any] func(ctx context.Context, h H) error

func (f Func[H]) Execute(ctx context.Context, h H) error {
	return f(ctx, h)
}

// Named transactions can be cancelled by name while still queued.
type Named interface {
	Name() string
}

// ID identifies an accepted transaction inside a queue.
type ID uuid.UUID

var NilID = ID(uuid.Nil)

func NewID() ID {
	return ID(uuid.New())
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

func ParseID(s string) (ID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return NilID, err
	}
	return ID(id), nil
}
