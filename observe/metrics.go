package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records probe evaluation metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordEvaluation records one probe evaluation with its outcome.
	RecordEvaluation(ctx context.Context, meta ProbeMeta, duration time.Duration, healthy bool, err error)
}

type metricsImpl struct {
	evaluations  metric.Int64Counter
	unhealthy    metric.Int64Counter
	failures     metric.Int64Counter
	durationHist metric.Float64Histogram
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	evaluations, err := meter.Int64Counter(
		"health.probe.evaluations",
		metric.WithDescription("Total number of probe evaluations"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return nil, err
	}

	unhealthy, err := meter.Int64Counter(
		"health.probe.unhealthy",
		metric.WithDescription("Number of probe evaluations with an unhealthy result"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"health.probe.failures",
		metric.WithDescription("Number of probe evaluations that failed with an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"health.probe.duration_ms",
		metric.WithDescription("Probe evaluation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		evaluations:  evaluations,
		unhealthy:    unhealthy,
		failures:     failures,
		durationHist: durationHist,
	}, nil
}

// RecordEvaluation records metrics for a probe evaluation.
func (m *metricsImpl) RecordEvaluation(ctx context.Context, meta ProbeMeta, duration time.Duration, healthy bool, err error) {
	opt := metric.WithAttributes(
		attribute.String("probe.name", meta.Name),
		attribute.String("probe.mode", meta.Mode()),
	)

	m.evaluations.Add(ctx, 1, opt)
	if !healthy {
		m.unhealthy.Add(ctx, 1, opt)
	}
	if err != nil {
		m.failures.Add(ctx, 1, opt)
	}

	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

type noopMetrics struct{}

func (noopMetrics) RecordEvaluation(ctx context.Context, meta ProbeMeta, duration time.Duration, healthy bool, err error) {
}
