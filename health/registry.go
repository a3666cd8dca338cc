package health

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/jonwraymond/promhealth/observe"
	"github.com/jonwraymond/promhealth/scheduler"
)

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	// Scheduler runs async probes. When nil the registry creates one from
	// PoolSize, ShutdownGrace and Logger.
	Scheduler *scheduler.Scheduler

	// PoolSize bounds concurrent background runs across all async probes.
	// Ignored when Scheduler is set.
	// Default: 2
	PoolSize int

	// ShutdownGrace bounds how long Shutdown waits for in-flight runs.
	// Ignored when Scheduler is set.
	// Default: 1 second
	ShutdownGrace time.Duration

	// CollectParallelism is the number of probes Collect evaluates at once.
	// Values below 2 evaluate sequentially.
	// Default: 1
	CollectParallelism int

	// Logger receives registration events and probe failures.
	// Default: no-op logger
	Logger observe.Logger

	// Middleware instruments every real probe evaluation. Reads of an async
	// probe's cache are not instrumented; its background runs are.
	Middleware *observe.Middleware
}

// Validate reports ErrInvalidArgument for negative sizes or durations.
func (c RegistryConfig) Validate() error {
	if c.PoolSize < 0 {
		return fmt.Errorf("%w: pool size must not be negative", ErrInvalidArgument)
	}
	if c.ShutdownGrace < 0 {
		return fmt.Errorf("%w: shutdown grace must not be negative", ErrInvalidArgument)
	}
	if c.CollectParallelism < 0 {
		return fmt.Errorf("%w: collect parallelism must not be negative", ErrInvalidArgument)
	}
	return nil
}

// Registry holds named probes and evaluates them on demand.
//
// Contract:
//   - Concurrency: all methods are safe for concurrent use. Writers are
//     serialized; readers work on an immutable snapshot and never block.
//   - Lifecycle: async probes are wrapped in an AsyncProbe on Add and
//     cancelled on Remove. Shutdown stops the shared scheduler.
type Registry struct {
	config  RegistryConfig
	sched   *scheduler.Scheduler
	logger  observe.Logger
	mu      sync.Mutex
	entries atomic.Pointer[map[string]*entry]
}

type entry struct {
	probe Probe
	meta  observe.ProbeMeta
	eval  func(context.Context) Status

	// owned is the decorator the registry created for a ScheduledProbe.
	// An *AsyncProbe the caller built and registered directly stays nil.
	owned *AsyncProbe
}

// NewRegistry creates a Registry with the given configuration. Invalid
// values fall back to their defaults.
func NewRegistry(config ...RegistryConfig) *Registry {
	var cfg RegistryConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = scheduler.DefaultPoolSize
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = scheduler.DefaultShutdownGrace
	}
	if cfg.CollectParallelism <= 0 {
		cfg.CollectParallelism = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}

	sched := cfg.Scheduler
	if sched == nil {
		sched = scheduler.New(scheduler.Config{
			PoolSize:      cfg.PoolSize,
			ShutdownGrace: cfg.ShutdownGrace,
			Logger:        cfg.Logger,
		})
	}

	r := &Registry{
		config: cfg,
		sched:  sched,
		logger: cfg.Logger,
	}
	empty := map[string]*entry{}
	r.entries.Store(&empty)
	return r
}

func (r *Registry) snapshot() map[string]*entry {
	return *r.entries.Load()
}

// Add registers p under name. A ScheduledProbe is wrapped in an AsyncProbe
// and starts running in the background.
func (r *Registry) Add(name string, p Probe) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidArgument)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: name %q is not valid UTF-8", ErrInvalidArgument, name)
	}
	if p == nil {
		return fmt.Errorf("%w: probe %q is nil", ErrInvalidArgument, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.snapshot()
	if _, exists := current[name]; exists {
		return fmt.Errorf("%w: %q", ErrAlreadyExists, name)
	}

	e, err := r.newEntry(name, p)
	if err != nil {
		return err
	}

	next := make(map[string]*entry, len(current)+1)
	maps.Copy(next, current)
	next[name] = e
	r.entries.Store(&next)

	r.logger.WithProbe(e.meta).Info(context.Background(), "probe registered")
	return nil
}

// AddAll registers every probe in lexicographic name order, stopping at the
// first failure. Probes added before the failure stay registered.
func (r *Registry) AddAll(probes map[string]Probe) error {
	for _, name := range slices.Sorted(maps.Keys(probes)) {
		if err := r.Add(name, probes[name]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) newEntry(name string, p Probe) (*entry, error) {
	meta := observe.ProbeMeta{Name: name}

	sp, async := p.(ScheduledProbe)
	if !async {
		return &entry{probe: p, meta: meta, eval: r.evaluator(meta, p)}, nil
	}

	schedule := sp.Schedule()
	meta.Async = true
	meta.Period = schedule.Period

	ap, err := newAsyncProbe(p, schedule, r.sched, r.evaluator(meta, p))
	if err != nil {
		return nil, err
	}
	if r.sched.IsShutdown() {
		ap.Cancel()
		r.logger.WithProbe(meta).Warn(context.Background(),
			"async probe registered after scheduler shutdown; it will keep its initial state")
	}
	return &entry{
		probe: ap,
		owned: ap,
		meta:  meta,
		eval: func(ctx context.Context) Status {
			return Evaluate(ctx, ap)
		},
	}, nil
}

// evaluator returns the isolated, instrumented evaluation of p.
func (r *Registry) evaluator(meta observe.ProbeMeta, p Probe) func(context.Context) Status {
	fn := func(ctx context.Context, _ observe.ProbeMeta) (bool, error) {
		status, err := check(ctx, p)
		return status.IsHealthy(), err
	}

	if r.config.Middleware != nil {
		wrapped := r.config.Middleware.Wrap(fn)
		return func(ctx context.Context) Status {
			healthy, _ := wrapped(ctx, meta)
			return StatusOf(healthy)
		}
	}

	logger := r.logger.WithProbe(meta)
	return func(ctx context.Context) Status {
		healthy, err := fn(ctx, meta)
		if err != nil {
			logger.Warn(ctx, "probe check failed", observe.Field{Key: "error", Value: err.Error()})
		}
		return StatusOf(healthy)
	}
}

// Remove unregisters name and cancels its background task. Unknown names
// are ignored.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.snapshot()
	e, ok := current[name]
	if !ok {
		return
	}

	next := make(map[string]*entry, len(current))
	maps.Copy(next, current)
	delete(next, name)
	r.entries.Store(&next)

	cancelEntry(e)
	r.logger.WithProbe(e.meta).Info(context.Background(), "probe removed")
}

// Clear removes every probe, cancels their background tasks and shuts
// down the scheduler. Async probes added afterwards are accepted but never
// refresh.
func (r *Registry) Clear(ctx context.Context) error {
	r.mu.Lock()
	current := r.snapshot()
	empty := map[string]*entry{}
	r.entries.Store(&empty)
	for _, e := range current {
		cancelEntry(e)
	}
	r.mu.Unlock()

	r.logger.Info(ctx, "registry cleared", observe.Field{Key: "removed", Value: len(current)})
	return r.Shutdown(ctx)
}

// cancelEntry cancels the decorator the registry created for e, if any.
func cancelEntry(e *entry) {
	if e.owned != nil {
		e.owned.Cancel()
	}
}

// Get returns the stored probe for name. Async probes are returned as
// their *AsyncProbe decorator.
func (r *Registry) Get(name string) (Probe, bool) {
	e, ok := r.snapshot()[name]
	if !ok {
		return nil, false
	}
	return e.probe, true
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.snapshot()))
}

// Len returns the number of registered probes.
func (r *Registry) Len() int {
	return len(r.snapshot())
}

// RunOnce evaluates a single probe. An async probe returns its cached value.
func (r *Registry) RunOnce(ctx context.Context, name string) (Status, error) {
	e, ok := r.snapshot()[name]
	if !ok {
		return StatusUnhealthy, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return e.eval(ctx), nil
}

// Shutdown stops the scheduler, waiting up to the grace period for
// in-flight runs before interrupting them, then moves every async probe the
// registry created to StateCancelled. It is idempotent.
func (r *Registry) Shutdown(ctx context.Context) error {
	err := r.sched.Shutdown(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.snapshot() {
		cancelEntry(e)
	}
	return err
}

// Scheduler returns the scheduler running async probes.
func (r *Registry) Scheduler() *scheduler.Scheduler {
	return r.sched
}
