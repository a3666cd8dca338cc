package health

import (
	"context"
	"maps"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Sample is one probe's result in a collection pass.
type Sample struct {
	Name   string
	Status Status
}

// Value returns the numeric sample value: 1 for healthy, 0 otherwise.
func (s Sample) Value() float64 {
	return s.Status.Value()
}

// Collect evaluates every registered probe against a single snapshot and
// returns one sample per probe in name order. Probes added or removed while
// Collect runs do not affect the result. An empty registry yields an empty,
// non-nil slice.
func (r *Registry) Collect(ctx context.Context) []Sample {
	snap := r.snapshot()
	names := slices.Sorted(maps.Keys(snap))
	samples := make([]Sample, len(names))

	if r.config.CollectParallelism < 2 || len(names) < 2 {
		for i, name := range names {
			samples[i] = Sample{Name: name, Status: snap[name].eval(ctx)}
		}
		return samples
	}

	var g errgroup.Group
	g.SetLimit(r.config.CollectParallelism)
	for i, name := range names {
		e := snap[name]
		g.Go(func() error {
			samples[i] = Sample{Name: name, Status: e.eval(ctx)}
			return nil
		})
	}
	_ = g.Wait()
	return samples
}

// Overall reports StatusHealthy when every sample is healthy. An empty
// slice is healthy.
func Overall(samples []Sample) Status {
	for _, s := range samples {
		if !s.Status.IsHealthy() {
			return StatusUnhealthy
		}
	}
	return StatusHealthy
}
