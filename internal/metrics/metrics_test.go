package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/nikmy/txflow/internal/queue"
	"github.com/nikmy/txflow/internal/txn"
	"github.com/nikmy/txflow/pkg/errors"
	"github.com/nikmy/txflow/pkg/logger"
)

func TestMetrics_observesQueue(t *testing.T) {
	m := New(prometheus.NewRegistry(), "")

	q := queue.New(struct{}{}, logger.NewStub(),
		queue.WithObserver(m),
		queue.WithShutdownPolicy(queue.DrainInFlight),
	)

	noop := txn.Func[struct{}](func(context.Context, struct{}) error { return nil })
	failing := txn.Func[struct{}](func(context.Context, struct{}) error { return errors.Error("timeout") })
	panicking := txn.Func[struct{}](func(context.Context, struct{}) error { panic("nil map") })

	for _, tx := range []txn.Func[struct{}]{noop, noop, failing, panicking} {
		_, err := q.Submit(tx)
		require.NoError(t, err)
	}

	cancelled, err := q.Submit(noop)
	require.NoError(t, err)
	require.True(t, q.Cancel(cancelled))
	require.Equal(t, 4.0, testutil.ToFloat64(m.depth))

	q.Start()
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.executed.WithLabelValues(outcomePanicked)) == 1
	}, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, q.Close(ctx))

	require.Equal(t, 2.0, testutil.ToFloat64(m.executed.WithLabelValues(outcomeOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.executed.WithLabelValues(outcomeFailed)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.dropped.WithLabelValues(string(queue.DropCancelled))))
	require.Zero(t, testutil.ToFloat64(m.depth))
}

func TestMetrics_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "test")

	m.ObserveRequest("POST", "/query", 200, 5*time.Millisecond)
	m.ObserveRequest("POST", "/query", 200, 7*time.Millisecond)
	m.ObserveRequest("POST", "/exec", 500, time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "/query", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "/exec", "500")))

	count, err := testutil.GatherAndCount(reg, "test_http_request_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
