package health

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"
)

// BenchmarkEvaluate measures a single isolated evaluation.
func BenchmarkEvaluate(b *testing.B) {
	p := healthy()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Evaluate(ctx, p)
	}
}

// BenchmarkRegistry_Collect measures sequential collection.
func BenchmarkRegistry_Collect(b *testing.B) {
	for _, n := range []int{1, 10, 100} {
		b.Run(fmt.Sprintf("probes=%d", n), func(b *testing.B) {
			reg := NewRegistry()
			defer reg.Shutdown(context.Background())
			for i := 0; i < n; i++ {
				_ = reg.Add(fmt.Sprintf("probe-%03d", i), healthy())
			}
			ctx := context.Background()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = reg.Collect(ctx)
			}
		})
	}
}

// BenchmarkRegistry_Collect_Parallel measures parallel collection of slow probes.
func BenchmarkRegistry_Collect_Parallel(b *testing.B) {
	reg := NewRegistry(RegistryConfig{CollectParallelism: 8})
	defer reg.Shutdown(context.Background())
	slow := ProbeFunc(func(context.Context) (Status, error) {
		time.Sleep(time.Millisecond)
		return StatusHealthy, nil
	})
	for i := 0; i < 16; i++ {
		_ = reg.Add(fmt.Sprintf("probe-%02d", i), slow)
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = reg.Collect(ctx)
	}
}

// BenchmarkAsyncProbe_Check measures cached reads.
func BenchmarkAsyncProbe_Check(b *testing.B) {
	reg := NewRegistry()
	defer reg.Shutdown(context.Background())
	_ = reg.Add("cached", WithSchedule(healthy(), Schedule{Period: time.Hour}))
	p, _ := reg.Get("cached")
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = p.Check(ctx)
		}
	})
}

// BenchmarkRegistry_AddRemove measures copy-on-write mutation cost.
func BenchmarkRegistry_AddRemove(b *testing.B) {
	reg := NewRegistry()
	defer reg.Shutdown(context.Background())
	for i := 0; i < 50; i++ {
		_ = reg.Add(fmt.Sprintf("probe-%02d", i), healthy())
	}
	p := healthy()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = reg.Add("bench", p)
		reg.Remove("bench")
	}
}

// BenchmarkReadinessHandler measures the readiness endpoint.
func BenchmarkReadinessHandler(b *testing.B) {
	reg := NewRegistry()
	defer reg.Shutdown(context.Background())
	_ = reg.Add("database", healthy())
	_ = reg.Add("filesystem", healthy())
	handler := ReadinessHandler(reg)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest("GET", "/readyz", nil))
	}
}
