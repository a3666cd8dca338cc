// Package health keeps a live registry of named health probes and reports
// their status as metric samples.
//
// A Probe answers healthy or unhealthy. Any error or panic raised by a probe
// is absorbed and reported as StatusUnhealthy, so one broken probe never
// affects the others.
//
// # Synchronous and Asynchronous Probes
//
// A plain Probe is evaluated inline each time its status is read. A probe
// built with WithSchedule is wrapped in an AsyncProbe on registration: a
// shared scheduler runs it in the background and reads return the cached
// result of the last run.
//
//	reg := health.NewRegistry()
//	defer reg.Shutdown(context.Background())
//
//	reg.Add("database", health.PingProbe(db.PingContext))
//	reg.Add("filesystem", health.WithSchedule(fsProbe, health.Schedule{
//	    InitialState: health.StatusHealthy,
//	    Period:       30 * time.Second,
//	}))
//
//	for _, s := range reg.Collect(ctx) {
//	    fmt.Println(s.Name, s.Value())
//	}
//
// # Decorators
//
// WithTimeout and WithRetry turn slow or flaky checks into well-behaved
// probes. WithBreaker stops calling a dependency that keeps failing until a
// reset timeout passes. All of them preserve a probe's schedule.
//
// # HTTP Endpoints
//
//	health.RegisterHandlers(mux, reg)
//
// registers /healthz (liveness), /readyz (all probes healthy), /health
// (JSON detail) and /health/{name} (one probe).
package health
