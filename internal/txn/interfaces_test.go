package txn

import "context"

type row struct {
	ID   int
	Name string
}

type fakeHandle struct {
	name string
}

type rowsQuery interface {
	QueryResults(ctx context.Context, h *fakeHandle) (*CursorResult[row], error)
}
