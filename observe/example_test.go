package observe_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/promhealth/observe"
)

func ExampleNewObserver() {
	ctx := context.Background()
	obs, err := observe.NewObserver(ctx, observe.Config{
		ServiceName: "example-service",
		Version:     "1.0.0",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "none"},
		Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
	})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer func() {
		_ = obs.Shutdown(ctx)
	}()

	fmt.Println("Observer created successfully")
	// Output:
	// Observer created successfully
}

func ExampleNewObserver_validation() {
	_, err := observe.NewObserver(context.Background(), observe.Config{})
	if errors.Is(err, observe.ErrMissingServiceName) {
		fmt.Println("Caught: missing service name")
	}
	// Output:
	// Caught: missing service name
}

func ExampleProbeMeta_SpanName() {
	meta := observe.ProbeMeta{Name: "database"}
	fmt.Println(meta.SpanName())
	fmt.Println(meta.Mode())
	// Output:
	// health.probe.database
	// sync
}

func ExampleLogger_WithProbe() {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("info", &buf).WithProbe(observe.ProbeMeta{Name: "filesystem"})

	logger.Warn(context.Background(), "probe check failed", observe.Field{Key: "error", Value: "disk full"})

	out := buf.String()
	fmt.Println("Contains probe.name:", strings.Contains(out, `"probe.name":"filesystem"`))
	fmt.Println("Contains level:", strings.Contains(out, `"level":"warn"`))
	// Output:
	// Contains probe.name: true
	// Contains level: true
}

func ExampleMiddleware_Wrap() {
	ctx := context.Background()
	obs, _ := observe.NewObserver(ctx, observe.Config{
		ServiceName: "example",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "none"},
		Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "none"},
	})
	defer func() {
		_ = obs.Shutdown(ctx)
	}()

	mw, _ := observe.MiddlewareFromObserver(obs)
	evaluate := mw.Wrap(func(ctx context.Context, probe observe.ProbeMeta) (bool, error) {
		return true, nil
	})

	healthy, err := evaluate(ctx, observe.ProbeMeta{Name: "database"})
	fmt.Println("Healthy:", healthy, "Error:", err)
	// Output:
	// Healthy: true Error: <nil>
}

func ExampleParseLogLevel() {
	for _, s := range []string{"debug", "info", "warn", "error", "unknown"} {
		fmt.Printf("%s -> %s\n", s, observe.ParseLogLevel(s))
	}
	// Output:
	// debug -> debug
	// info -> info
	// warn -> warn
	// error -> error
	// unknown -> info
}
