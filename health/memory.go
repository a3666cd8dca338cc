package health

import (
	"context"
	"fmt"
	"runtime"
)

// MemoryProbeConfig configures the memory probe.
type MemoryProbeConfig struct {
	// Threshold is the fraction of MaxAlloc at which the probe turns unhealthy.
	// Value should be between 0 and 1. Default: 0.95 (95%)
	Threshold float64

	// MaxAlloc is the maximum expected allocation in bytes.
	// If zero, the memory obtained from the OS is used.
	// Default: 0 (auto-detect)
	MaxAlloc uint64
}

// MemoryProbe reports unhealthy when heap allocation crosses a threshold.
type MemoryProbe struct {
	config   MemoryProbeConfig
	readFunc func(*runtime.MemStats)
}

// NewMemoryProbe creates a memory probe.
func NewMemoryProbe(config MemoryProbeConfig) *MemoryProbe {
	if config.Threshold <= 0 || config.Threshold >= 1 {
		config.Threshold = 0.95
	}
	return &MemoryProbe{config: config, readFunc: runtime.ReadMemStats}
}

// Usage returns the current allocation as a fraction of the configured maximum.
func (m *MemoryProbe) Usage() float64 {
	var stats runtime.MemStats
	m.readFunc(&stats)

	maxAlloc := m.config.MaxAlloc
	if maxAlloc == 0 {
		maxAlloc = stats.Sys
	}
	if maxAlloc == 0 {
		return 0
	}
	return float64(stats.Alloc) / float64(maxAlloc)
}

// Check performs the memory check.
func (m *MemoryProbe) Check(ctx context.Context) (Status, error) {
	if err := ctx.Err(); err != nil {
		return StatusUnhealthy, err
	}

	usage := m.Usage()
	if usage >= m.config.Threshold {
		return StatusUnhealthy, fmt.Errorf("memory usage critical: %.1f%%", usage*100)
	}
	return StatusHealthy, nil
}
