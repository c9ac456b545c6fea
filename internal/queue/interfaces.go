package queue

//go:generate mockgen -source=interfaces.go -destination=mock_interfaces_test.go -package=queue

import (
	"time"

	"github.com/nikmy/txflow/internal/txn"
	"github.com/nikmy/txflow/pkg/errors"
	"github.com/nikmy/txflow/pkg/logger"
)

var ErrNilTransaction = errors.Error("nil transaction")

// Failure describes a transaction that did not complete.
type Failure struct {
	ID   txn.ID
	Name string
	Err  error
}

// Reporter receives failures of executed transactions and
// transactions dropped at shutdown. It is called on the worker
// lane, or inside Close for dropped ones.
type Reporter interface {
	Report(f Failure)
}

type ReporterFunc func(f Failure)

func (fn ReporterFunc) Report(f Failure) {
	fn(f)
}

type DropReason string

const (
	DropCancelled DropReason = "cancelled"
	DropShutdown  DropReason = "shutdown"
)

// Observer is notified about queue activity, mostly for metrics.
type Observer interface {
	Depth(n int)
	Executed(elapsed time.Duration, err error)
	Dropped(reason DropReason, n int)
}

// LogReporter logs every failure, which is what a queue does
// without WithReporter.
func LogReporter(log logger.Logger) Reporter {
	return logReporter{log}
}

// Tee reports every failure to each of rs in order.
func Tee(rs ...Reporter) Reporter {
	return ReporterFunc(func(f Failure) {
		for _, r := range rs {
			r.Report(f)
		}
	})
}

type logReporter struct {
	log logger.Logger
}

func (r logReporter) Report(f Failure) {
	if f.Name == "" {
		r.log.Error(errors.Wrapf(f.Err, "transaction %s", f.ID))
		return
	}
	r.log.Error(errors.Wrapf(f.Err, "transaction %s (%s)", f.ID, f.Name))
}

type noopObserver struct{}

func (noopObserver) Depth(int)                     {}
func (noopObserver) Executed(time.Duration, error) {}
func (noopObserver) Dropped(DropReason, int)       {}
