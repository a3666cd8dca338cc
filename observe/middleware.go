package observe

import (
	"context"
	"time"
)

// EvaluateFunc evaluates one probe. healthy carries the probe's verdict and
// err any failure raised by its check.
type EvaluateFunc func(ctx context.Context, probe ProbeMeta) (healthy bool, err error)

// Middleware wraps probe evaluation with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe EvaluateFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Results of the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability
// components. Nil components are replaced with no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps an EvaluateFunc with tracing, metrics and logging.
func (m *Middleware) Wrap(fn EvaluateFunc) EvaluateFunc {
	return func(ctx context.Context, probe ProbeMeta) (bool, error) {
		ctx, span := m.tracer.StartSpan(ctx, probe)
		start := time.Now()

		healthy, err := fn(ctx, probe)

		duration := time.Since(start)
		m.tracer.EndSpan(span, healthy, err)
		m.metrics.RecordEvaluation(ctx, probe, duration, healthy, err)

		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
			{Key: "healthy", Value: healthy},
		}
		probeLogger := m.logger.WithProbe(probe)
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			probeLogger.Warn(ctx, "probe check failed", fields...)
		} else {
			// Scrapes evaluate every probe, so routine results stay at debug.
			probeLogger.Debug(ctx, "probe evaluated", fields...)
		}

		return healthy, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(newTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
