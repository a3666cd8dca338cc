package health_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/jonwraymond/promhealth/health"
)

func ExampleRegistry_Collect() {
	reg := health.NewRegistry()
	defer reg.Shutdown(context.Background())

	_ = reg.Add("database", health.PingProbe(func(ctx context.Context) error {
		return nil
	}))
	_ = reg.Add("filesystem", health.PingProbe(func(ctx context.Context) error {
		return errors.New("read-only file system")
	}))

	for _, s := range reg.Collect(context.Background()) {
		fmt.Printf("%s %.1f\n", s.Name, s.Value())
	}
	// Output:
	// database 1.0
	// filesystem 0.0
}

func ExampleRegistry_Add_duplicate() {
	reg := health.NewRegistry()
	defer reg.Shutdown(context.Background())

	_ = reg.Add("database", health.StaticProbe(health.StatusHealthy))
	err := reg.Add("database", health.StaticProbe(health.StatusUnhealthy))

	fmt.Println("Already exists:", errors.Is(err, health.ErrAlreadyExists))
	fmt.Println("Names:", reg.Names())
	// Output:
	// Already exists: true
	// Names: [database]
}

func ExampleRegistry_RunOnce() {
	reg := health.NewRegistry()
	defer reg.Shutdown(context.Background())

	_, err := reg.RunOnce(context.Background(), "missing-name")
	fmt.Println("Not found:", errors.Is(err, health.ErrNotFound))
	// Output:
	// Not found: true
}

func ExampleWithSchedule() {
	reg := health.NewRegistry()
	defer reg.Shutdown(context.Background())

	slow := health.ProbeFunc(func(ctx context.Context) (health.Status, error) {
		return health.StatusHealthy, nil
	})
	_ = reg.Add("filesystem", health.WithSchedule(slow, health.Schedule{
		InitialState: health.StatusUnhealthy,
		InitialDelay: time.Minute,
		Period:       time.Minute,
		Type:         health.FixedDelay,
	}))

	p, _ := reg.Get("filesystem")
	async := p.(*health.AsyncProbe)
	status, _ := reg.RunOnce(context.Background(), "filesystem")

	fmt.Println("State:", async.State())
	fmt.Println("Cached:", status)
	// Output:
	// State: scheduled
	// Cached: unhealthy
}

func ExampleEvaluate() {
	broken := health.ProbeFunc(func(ctx context.Context) (health.Status, error) {
		panic("driver not loaded")
	})

	fmt.Println(health.Evaluate(context.Background(), broken))
	// Output:
	// unhealthy
}

func ExampleWithTimeout() {
	hung := health.ProbeFunc(func(ctx context.Context) (health.Status, error) {
		<-ctx.Done()
		return health.StatusUnhealthy, ctx.Err()
	})

	status, err := health.WithTimeout(hung, 10*time.Millisecond).Check(context.Background())
	fmt.Println("Status:", status)
	fmt.Println("Timeout:", errors.Is(err, health.ErrProbeTimeout))
	// Output:
	// Status: unhealthy
	// Timeout: true
}

func ExampleOverall() {
	samples := []health.Sample{
		{Name: "database", Status: health.StatusHealthy},
		{Name: "filesystem", Status: health.StatusUnhealthy},
	}
	fmt.Println(health.Overall(samples))
	// Output:
	// unhealthy
}

func ExampleRegisterHandlers() {
	reg := health.NewRegistry()
	defer reg.Shutdown(context.Background())
	_ = reg.Add("database", health.StaticProbe(health.StatusHealthy))

	mux := http.NewServeMux()
	health.RegisterHandlers(mux, reg)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	fmt.Println("Status:", rec.Code)
	fmt.Println("Body:", rec.Body.String())
	// Output:
	// Status: 200
	// Body: OK
}
