package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/model"
)

const (
	// DefaultMetricName is the sample name used when MetricConfig.Name is empty.
	DefaultMetricName = "health_check_status"

	// DefaultHelp is the sample help text used when MetricConfig.Help is empty.
	DefaultHelp = "Health check status results"

	// DefaultLabel is the label carrying the probe name.
	DefaultLabel = "system"
)

// MetricConfig names the exported samples.
type MetricConfig struct {
	// Name is the metric name.
	// Default: health_check_status
	Name string

	// Help is the metric description.
	// Default: Health check status results
	Help string

	// Label is the label carrying the probe name.
	// Default: system
	Label string

	// ConstLabels are attached to every sample.
	ConstLabels prometheus.Labels

	// Timeout bounds one collection pass. Zero means no bound beyond the
	// caller's context.
	Timeout time.Duration
}

// DefaultMetricConfig returns the default naming.
func DefaultMetricConfig() MetricConfig {
	return MetricConfig{
		Name:  DefaultMetricName,
		Help:  DefaultHelp,
		Label: DefaultLabel,
	}
}

func resolve(config []MetricConfig) MetricConfig {
	cfg := DefaultMetricConfig()
	if len(config) == 0 {
		return cfg
	}
	c := config[0]
	if c.Name != "" {
		cfg.Name = c.Name
	}
	if c.Help != "" {
		cfg.Help = c.Help
	}
	if c.Label != "" {
		cfg.Label = c.Label
	}
	cfg.ConstLabels = c.ConstLabels
	cfg.Timeout = c.Timeout
	return cfg
}

// Validate checks names against the legacy Prometheus naming rules, which
// every scraper accepts.
func (c MetricConfig) Validate() error {
	if !model.LegacyValidation.IsValidMetricName(c.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidMetricName, c.Name)
	}
	if !model.LegacyValidation.IsValidLabelName(c.Label) || strings.HasPrefix(c.Label, "__") {
		return fmt.Errorf("%w: %q", ErrInvalidLabelName, c.Label)
	}
	for name := range c.ConstLabels {
		if name == c.Label || !model.LegacyValidation.IsValidLabelName(name) {
			return fmt.Errorf("%w: constant label %q", ErrInvalidLabelName, name)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("export: timeout must not be negative, got %v", c.Timeout)
	}
	return nil
}
