// Package daemon assembles the promhealthd server from its configuration.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/promhealth/export"
	"github.com/jonwraymond/promhealth/health"
	"github.com/jonwraymond/promhealth/internal/config"
	"github.com/jonwraymond/promhealth/observe"
)

// Daemon serves health endpoints and metrics for the configured probes.
type Daemon struct {
	cfg      *config.Config
	observer observe.Observer
	logger   observe.Logger
	registry *health.Registry
	gatherer *prometheus.Registry
	gauge    interface{ Unregister() error }
	closers  []func() error
	server   *http.Server
	handler  http.Handler

	stopOnce sync.Once
	stopErr  error
}

// New builds a Daemon. Nothing listens until Start is called, but async
// probes begin running immediately.
func New(ctx context.Context, cfg *config.Config, version string) (_ *Daemon, err error) {
	gatherer := prometheus.NewRegistry()
	gatherer.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	obs, err := observe.NewObserver(ctx, observe.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   cfg.Telemetry.Tracing.Enabled,
			Exporter:  cfg.Telemetry.Tracing.Exporter,
			SamplePct: cfg.Telemetry.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:    cfg.Telemetry.Metrics.Enabled,
			Exporter:   cfg.Telemetry.Metrics.Exporter,
			Registerer: gatherer,
		},
		Logging: observe.LoggingConfig{Enabled: true, Level: cfg.Log.Level},
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		cfg:      cfg,
		observer: obs,
		logger:   obs.Logger(),
		gatherer: gatherer,
		registry: health.NewRegistry(health.RegistryConfig{
			PoolSize:           cfg.Registry.PoolSize,
			ShutdownGrace:      cfg.Registry.ShutdownGrace,
			CollectParallelism: cfg.Registry.CollectParallelism,
			Logger:             obs.Logger(),
			Middleware:         mw,
		}),
	}
	defer func() {
		if err != nil {
			_ = d.Stop(context.Background())
		}
	}()

	for _, pc := range cfg.Probes {
		p, closer, err := buildProbe(ctx, pc)
		if err != nil {
			return nil, err
		}
		if closer != nil {
			d.closers = append(d.closers, closer)
		}
		if err := d.registry.Add(pc.Name, p); err != nil {
			return nil, err
		}
	}

	metricCfg := export.MetricConfig{
		Name:    cfg.Metric.Name,
		Help:    cfg.Metric.Help,
		Label:   cfg.Metric.Label,
		Timeout: cfg.Metric.Timeout,
	}
	if _, err := export.Register(gatherer, d.registry, metricCfg); err != nil {
		return nil, err
	}
	// The prometheus exporter already serves samples from the gatherer;
	// push exporters need the gauge.
	if cfg.Telemetry.Metrics.Enabled && cfg.Telemetry.Metrics.Exporter != "prometheus" {
		reg, err := export.RegisterGauge(obs.Meter(), d.registry, metricCfg)
		if err != nil {
			return nil, err
		}
		d.gauge = reg
	}

	mux := http.NewServeMux()
	health.RegisterHandlers(mux, d.registry)
	mux.Handle(cfg.Metric.Path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	d.handler = mux

	return d, nil
}

// Handler returns the daemon's HTTP handler.
func (d *Daemon) Handler() http.Handler {
	return d.handler
}

// Registry returns the probe registry.
func (d *Daemon) Registry() *health.Registry {
	return d.registry
}

// Start listens on the configured address and serves until Stop. It returns
// once the listener is bound.
func (d *Daemon) Start() (net.Addr, error) {
	ln, err := net.Listen("tcp", d.cfg.Listen)
	if err != nil {
		return nil, err
	}
	d.server = &http.Server{
		Handler:           d.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := d.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error(context.Background(), "server stopped", observe.Field{Key: "error", Value: err.Error()})
		}
	}()

	d.logger.Info(context.Background(), "listening",
		observe.Field{Key: "addr", Value: ln.Addr().String()},
		observe.Field{Key: "probes", Value: d.registry.Len()},
	)
	return ln.Addr(), nil
}

// Stop shuts down the server, the probe scheduler, probe clients and
// telemetry. It is idempotent.
func (d *Daemon) Stop(ctx context.Context) error {
	d.stopOnce.Do(func() {
		var errs []error
		if d.server != nil {
			errs = append(errs, d.server.Shutdown(ctx))
		}
		if d.gauge != nil {
			errs = append(errs, d.gauge.Unregister())
		}
		errs = append(errs, d.registry.Shutdown(ctx))
		for _, closer := range d.closers {
			errs = append(errs, closer())
		}
		errs = append(errs, d.observer.Shutdown(ctx))
		d.stopErr = errors.Join(errs...)
	})
	return d.stopErr
}
