package txn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/nikmy/txflow/internal/dispatch"
	"github.com/nikmy/txflow/pkg/errors"
)

func TestQueryTransaction_Execute(t *testing.T) {
	type want struct {
		err       error
		posted    int
		delivered int
	}

	type testcase struct {
		name        string
		withCB      bool
		closed      bool
		queryResult *CursorResult[row]
		queryErr    error
		want        want
	}

	rows := NewCursorResult([]row{{ID: 1, Name: "alice"}, {ID: 2, Name: "bob"}})

	tests := [...]testcase{
		{
			name:        "callback gets result",
			withCB:      true,
			queryResult: rows,
			want:        want{posted: 1, delivered: 1},
		},
		{
			name:        "no callback no delivery",
			withCB:      false,
			queryResult: rows,
			want:        want{posted: 0},
		},
		{
			name:     "query failure skips callback",
			withCB:   true,
			queryErr: errors.Error("constraint violation"),
			want:     want{err: ErrQueryExecution},
		},
		{
			name:        "closed delivery lane",
			withCB:      true,
			closed:      true,
			queryResult: rows,
			want:        want{err: ErrDispatchFailure},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			h := &fakeHandle{name: "main"}

			q := NewMockrowsQuery(ctrl)
			q.EXPECT().
				QueryResults(gomock.Any(), h).
				Return(tt.queryResult, tt.queryErr).
				Times(1)

			d := dispatch.NewRecorder()
			if tt.closed {
				d.Close()
			}

			delivered := 0
			b := NewQueryBuilder[*fakeHandle, row](d, q)
			if tt.withCB {
				b.QueryResult(func(tx *QueryTransaction[*fakeHandle, row], result *CursorResult[row]) {
					delivered++
					require.Same(t, tt.queryResult, result)
					require.True(t, tx.HasCallback())
				})
			}
			tx := b.Build()

			err := tx.Execute(context.Background(), h)
			if tt.want.err != nil {
				require.ErrorIs(t, err, tt.want.err)
			} else {
				require.NoError(t, err)
			}

			require.Zero(t, delivered, "callback must not run inside Execute")
			require.Equal(t, tt.want.posted, d.Posted())

			d.RunAll()
			require.Equal(t, tt.want.delivered, delivered)
		})
	}
}

func TestQueryTransaction_nilResultIsEmpty(t *testing.T) {
	d := dispatch.NewRecorder()

	var got *CursorResult[row]
	tx := NewQueryBuilder[*fakeHandle, row](d, QueryFunc[*fakeHandle, row](
		func(ctx context.Context, h *fakeHandle) (*CursorResult[row], error) {
			return nil, nil
		},
	)).
		QueryResult(func(_ *QueryTransaction[*fakeHandle, row], result *CursorResult[row]) {
			got = result
		}).
		Build()

	require.NoError(t, tx.Execute(context.Background(), &fakeHandle{}))
	d.RunAll()

	require.NotNil(t, got)
	require.True(t, got.Empty())
}

func TestQueryBuilder_reuse(t *testing.T) {
	d := dispatch.NewRecorder()
	query := QueryFunc[*fakeHandle, row](func(ctx context.Context, h *fakeHandle) (*CursorResult[row], error) {
		return NewCursorResult([]row{{ID: 7}}), nil
	})

	var calls []string
	c1 := func(*QueryTransaction[*fakeHandle, row], *CursorResult[row]) { calls = append(calls, "c1") }
	c2 := func(*QueryTransaction[*fakeHandle, row], *CursorResult[row]) { calls = append(calls, "c2") }

	b := NewQueryBuilder[*fakeHandle, row](d, query)
	first := b.QueryResult(c1).Build()
	second := b.QueryResult(c2).Build()

	require.NotSame(t, first, second)

	require.NoError(t, first.Execute(context.Background(), &fakeHandle{}))
	d.RunAll()
	require.Equal(t, []string{"c1"}, calls)

	require.NoError(t, second.Execute(context.Background(), &fakeHandle{}))
	d.RunAll()
	require.Equal(t, []string{"c1", "c2"}, calls)
}

func TestNewQueryBuilder_requiresQuery(t *testing.T) {
	require.Panics(t, func() {
		NewQueryBuilder[*fakeHandle, row](dispatch.NewRecorder(), nil)
	})
	require.Panics(t, func() {
		NewQueryBuilder[*fakeHandle, row](nil, NewMockrowsQuery(gomock.NewController(t)))
	})
}

func TestCursorResult(t *testing.T) {
	var empty *CursorResult[row]
	require.Zero(t, empty.Len())
	require.Nil(t, empty.Items())

	_, ok := empty.First()
	require.False(t, ok)

	r := NewCursorResult([]row{{ID: 1}, {ID: 2}})
	first, ok := r.First()
	require.True(t, ok)
	require.Equal(t, row{ID: 1}, first)
	require.Equal(t, row{ID: 2}, r.At(1))

	items := r.Items()
	items[0].ID = 100
	require.Equal(t, 1, r.At(0).ID)
}
