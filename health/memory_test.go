package health

import (
	"context"
	"runtime"
	"testing"
)

func fakeMemStats(alloc, sys uint64) func(*runtime.MemStats) {
	return func(m *runtime.MemStats) {
		m.Alloc = alloc
		m.Sys = sys
	}
}

func TestNewMemoryProbe_Defaults(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		want      float64
	}{
		{"zero", 0, 0.95},
		{"above one", 1.5, 0.95},
		{"negative", -0.1, 0.95},
		{"custom", 0.7, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewMemoryProbe(MemoryProbeConfig{Threshold: tt.threshold})
			if p.config.Threshold != tt.want {
				t.Errorf("Threshold = %v, want %v", p.config.Threshold, tt.want)
			}
		})
	}
}

func TestMemoryProbe_Check(t *testing.T) {
	tests := []struct {
		name     string
		maxAlloc uint64
		alloc    uint64
		sys      uint64
		want     Status
		wantErr  bool
	}{
		{"below threshold", 1000, 500, 0, StatusHealthy, false},
		{"at threshold", 1000, 950, 0, StatusUnhealthy, true},
		{"auto max from sys", 0, 990, 1000, StatusUnhealthy, true},
		{"no stats", 0, 10, 0, StatusHealthy, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewMemoryProbe(MemoryProbeConfig{MaxAlloc: tt.maxAlloc})
			p.readFunc = fakeMemStats(tt.alloc, tt.sys)

			got, err := p.Check(context.Background())
			if got != tt.want {
				t.Errorf("Check() = %v, want %v", got, tt.want)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMemoryProbe_ContextCancelled(t *testing.T) {
	p := NewMemoryProbe(MemoryProbeConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := p.Check(ctx)
	if got != StatusUnhealthy || err == nil {
		t.Errorf("Check() = %v, %v; want unhealthy with error", got, err)
	}
}

func TestMemoryProbe_Real(t *testing.T) {
	p := NewMemoryProbe(MemoryProbeConfig{})
	if u := p.Usage(); u < 0 || u > 1 {
		t.Errorf("Usage() = %v, want within [0, 1]", u)
	}
}
