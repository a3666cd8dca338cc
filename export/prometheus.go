package export

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonwraymond/promhealth/health"
)

// Collector exposes a health.Registry as a prometheus.Collector.
//
// Contract:
//   - Concurrency: safe for concurrent scrapes; each Collect works on its
//     own registry snapshot.
//   - Errors: probe failures appear as 0-valued samples, never as scrape errors.
//     A sample that cannot be encoded is left out of the scrape.
type Collector struct {
	registry *health.Registry
	config   MetricConfig
	desc     *prometheus.Desc
}

// NewCollector creates a Collector for reg.
func NewCollector(reg *health.Registry, config ...MetricConfig) (*Collector, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	cfg := resolve(config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Collector{
		registry: reg,
		config:   cfg,
		desc: prometheus.NewDesc(
			cfg.Name,
			cfg.Help,
			[]string{cfg.Label},
			cfg.ConstLabels,
		),
	}, nil
}

// Register creates a Collector for reg and registers it with r.
func Register(r prometheus.Registerer, reg *health.Registry, config ...MetricConfig) (*Collector, error) {
	c, err := NewCollector(reg, config...)
	if err != nil {
		return nil, err
	}
	if err := r.Register(c); err != nil {
		return nil, fmt.Errorf("export: register collector: %w", err)
	}
	return c, nil
}

// Config returns the resolved metric configuration.
func (c *Collector) Config() MetricConfig {
	return c.config
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx := context.Background()
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	for _, s := range c.registry.Collect(ctx) {
		m, err := prometheus.NewConstMetric(c.desc, prometheus.GaugeValue, s.Value(), s.Name)
		if err != nil {
			continue
		}
		ch <- m
	}
}
