package await

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromChan(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 42

	a := FromChan[int](ch)
	require.True(t, a.Await(context.Background()))

	v, ok := a.Value()
	require.True(t, ok)
	require.Equal(t, 42, v)
}

func TestFromChan_cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.False(t, FromChan[struct{}](make(chan struct{})).Await(ctx))
}

func TestFromChan_closed(t *testing.T) {
	ch := make(chan string)
	close(ch)

	a := FromChan[string](ch)
	require.True(t, a.Await(context.Background()))

	_, ok := a.Value()
	require.False(t, ok)
}

func TestTick(t *testing.T) {
	tick, stop := Tick(time.Millisecond)
	defer stop()

	_, ok := tick.Value()
	require.False(t, ok)

	require.True(t, tick.Await(context.Background()))
	v, ok := tick.Value()
	require.True(t, ok)
	require.False(t, v.(time.Time).IsZero())
}

func TestFirstOf(t *testing.T) {
	tick, stop := Tick(time.Hour)
	defer stop()

	signal := make(chan struct{}, 1)
	signal <- struct{}{}

	a := FirstOf(tick, FromChan[struct{}](signal))
	require.True(t, a.Await(context.Background()))
	require.Equal(t, 1, a.Chosen())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	require.False(t, a.Await(ctx))
	require.Equal(t, -1, a.Chosen())
}
