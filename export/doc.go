// Package export renders a health.Registry as metric samples.
//
// Every registered probe becomes one gauge sample named health_check_status
// by default, labelled with the probe name and valued 1 (healthy) or 0
// (unhealthy). Samples are produced at scrape time from a single registry
// snapshot.
//
// Two exposition paths are provided:
//
//   - Collector implements prometheus.Collector for client_golang registries.
//   - RegisterGauge attaches an OpenTelemetry observable gauge to a Meter.
//
// Handler wires a Collector into a private Prometheus registry and serves
// the text exposition format.
package export
