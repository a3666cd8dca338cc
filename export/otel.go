package export

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/promhealth/health"
)

// RegisterGauge attaches an observable gauge to meter that reports every
// probe in reg on each collection. Unregister the returned registration to
// stop reporting.
func RegisterGauge(meter metric.Meter, reg *health.Registry, config ...MetricConfig) (metric.Registration, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	cfg := resolve(config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gauge, err := meter.Float64ObservableGauge(
		cfg.Name,
		metric.WithDescription(cfg.Help),
	)
	if err != nil {
		return nil, fmt.Errorf("export: create gauge: %w", err)
	}

	constAttrs := make([]attribute.KeyValue, 0, len(cfg.ConstLabels))
	for k, v := range cfg.ConstLabels {
		constAttrs = append(constAttrs, attribute.String(k, v))
	}

	return meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		if cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()
		}
		for _, s := range reg.Collect(ctx) {
			attrs := append([]attribute.KeyValue{attribute.String(cfg.Label, s.Name)}, constAttrs...)
			o.ObserveFloat64(gauge, s.Value(), metric.WithAttributes(attrs...))
		}
		return nil
	}, gauge)
}
