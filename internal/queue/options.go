package queue

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/nikmy/txflow/pkg/errors"
	"github.com/nikmy/txflow/pkg/logger"
)

const tracerName = "github.com/nikmy/txflow/internal/queue"

// ShutdownPolicy decides what Close does with accepted work.
type ShutdownPolicy int

const (
	// DrainInFlight lets the running transaction finish and
	// drops everything still queued.
	DrainInFlight ShutdownPolicy = iota

	// DrainAll executes every accepted transaction before stopping.
	DrainAll
)

func (p ShutdownPolicy) String() string {
	switch p {
	case DrainInFlight:
		return "drain_in_flight"
	case DrainAll:
		return "drain_all"
	default:
		return "unknown"
	}
}

func (p *ShutdownPolicy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "drain_in_flight":
		*p = DrainInFlight
	case "drain_all":
		*p = DrainAll
	default:
		return errors.Errorf("unknown shutdown policy %q", string(text))
	}
	return nil
}

type Option func(o *options)

type options struct {
	reporter Reporter
	observer Observer
	tracer   trace.Tracer
	policy   ShutdownPolicy
}

func defaultOptions(log logger.Logger) options {
	return options{
		reporter: logReporter{log},
		observer: noopObserver{},
		tracer:   otel.Tracer(tracerName),
		policy:   DrainInFlight,
	}
}

func WithReporter(r Reporter) Option {
	return func(o *options) {
		if r != nil {
			o.reporter = r
		}
	}
}

func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

func WithShutdownPolicy(p ShutdownPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}
