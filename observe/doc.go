// Package observe provides observability primitives for probe evaluation.
//
// It is a pure instrumentation library: it never runs probes itself. The
// health registry and the scheduler take a Logger, and the registry can wrap
// every probe evaluation in a Middleware that records a span, evaluation and
// failure counters, and a duration histogram.
//
// # Setup
//
//	obs, err := observe.NewObserver(ctx, observe.Config{
//	    ServiceName: "checkout",
//	    Tracing:     observe.TracingConfig{Enabled: true, Exporter: "otlp", SamplePct: 0.1},
//	    Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
//	    Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
//	})
//	defer obs.Shutdown(ctx)
//
//	mw, err := observe.MiddlewareFromObserver(obs)
package observe
