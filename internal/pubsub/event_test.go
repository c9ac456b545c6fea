package pubsub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nikmy/txflow/internal/queue"
	"github.com/nikmy/txflow/internal/txn"
	"github.com/nikmy/txflow/pkg/errors"
)

func TestNewFailureEvent(t *testing.T) {
	type testcase struct {
		name string
		err  error
		want Kind
	}

	tests := [...]testcase{
		{name: "plain", err: errors.Error("constraint failed"), want: KindFailed},
		{name: "dropped", err: txn.ErrQueueClosed, want: KindDropped},
		{name: "panicked", err: errors.FromPanic("boom", txn.ErrPanicked), want: KindPanicked},
		{name: "dispatch", err: errors.Mark(errors.Error("pool closed"), txn.ErrDispatchFailure), want: KindDispatch},
		{name: "nil error", err: nil, want: KindFailed},
	}

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("MSK", 3*60*60))
	id := txn.NewID()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := NewFailureEvent(queue.Failure{ID: id, Name: "import", Err: tt.err}, at)

			require.Equal(t, tt.want, event.Kind)
			require.Equal(t, id.String(), event.ID)
			require.Equal(t, "import", event.Name)
			require.Equal(t, time.UTC, event.At.Location())
			require.True(t, event.At.Equal(at))
			if tt.err != nil {
				require.Equal(t, tt.err.Error(), event.Error)
			}
		})
	}
}

func TestConfig_withDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	require.Equal(t, defaultTopic, cfg.Topic)
	require.Equal(t, defaultBatchTimeout, cfg.BatchTimeout)

	cfg = Config{Topic: "audit", BatchTimeout: time.Second}.withDefaults()
	require.Equal(t, "audit", cfg.Topic)
	require.Equal(t, time.Second, cfg.BatchTimeout)
}
