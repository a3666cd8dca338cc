package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jonwraymond/promhealth/observe"
)

// DefaultPoolSize is the number of concurrent firings allowed when Config.PoolSize is unset.
const DefaultPoolSize = 2

// DefaultShutdownGrace is how long Shutdown waits for in-flight firings by default.
const DefaultShutdownGrace = time.Second

// Config configures a Scheduler.
type Config struct {
	// PoolSize is the maximum number of firings running at once.
	// Default: 2
	PoolSize int

	// ShutdownGrace bounds how long Shutdown waits for in-flight firings
	// before cancelling them.
	// Default: 1 second
	ShutdownGrace time.Duration

	// Logger receives recovered panics and forced shutdowns.
	// Default: no-op logger
	Logger observe.Logger
}

// Scheduler runs periodic tasks on a bounded pool of execution slots.
//
// Contract:
//   - Concurrency: all methods are safe for concurrent use.
//   - Lifecycle: Shutdown is explicit and idempotent; a Scheduler is never
//     stopped implicitly.
type Scheduler struct {
	config Config
	slots  *semaphore.Weighted

	// ctx is the parent of every task context; cancelling it interrupts
	// in-flight firings.
	ctx    context.Context
	cancel context.CancelFunc
	stop   chan struct{}

	mu       sync.Mutex
	shutdown bool
	tasks    map[*Task]struct{}
	wg       sync.WaitGroup

	shutdownOnce sync.Once
	shutdownErr  error
}

// New creates a Scheduler.
func New(config ...Config) *Scheduler {
	cfg := Config{
		PoolSize:      DefaultPoolSize,
		ShutdownGrace: DefaultShutdownGrace,
	}
	if len(config) > 0 {
		cfg = config[0]
		if cfg.PoolSize <= 0 {
			cfg.PoolSize = DefaultPoolSize
		}
		if cfg.ShutdownGrace <= 0 {
			cfg.ShutdownGrace = DefaultShutdownGrace
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		config: cfg,
		slots:  semaphore.NewWeighted(int64(cfg.PoolSize)),
		ctx:    ctx,
		cancel: cancel,
		stop:   make(chan struct{}),
		tasks:  make(map[*Task]struct{}),
	}
}

// Config returns the effective configuration.
func (s *Scheduler) Config() Config {
	return s.config
}

// ScheduleAtFixedRate runs fn first after initialDelay and then every period,
// measured from the first firing's scheduled time.
func (s *Scheduler) ScheduleAtFixedRate(fn func(context.Context), initialDelay, period time.Duration) (*Task, error) {
	return s.schedule(fn, initialDelay, period, true)
}

// ScheduleWithFixedDelay runs fn first after initialDelay and then period
// after each firing completes.
func (s *Scheduler) ScheduleWithFixedDelay(fn func(context.Context), initialDelay, period time.Duration) (*Task, error) {
	return s.schedule(fn, initialDelay, period, false)
}

// IsShutdown reports whether Shutdown has been called.
func (s *Scheduler) IsShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

// Len returns the number of live tasks. Cancelled tasks are dropped as soon
// as their timing loop exits.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Shutdown stops all tasks. In-flight firings get up to ShutdownGrace (or
// until ctx is done) to complete; after that their contexts are cancelled and
// ErrShutdownTimeout is returned. Subsequent calls return the first result.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.shutdownErr = s.drain(ctx)
	})
	return s.shutdownErr
}

func (s *Scheduler) drain(ctx context.Context) error {
	s.mu.Lock()
	s.shutdown = true
	close(s.stop)
	s.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(drained)
	}()

	timer := time.NewTimer(s.config.ShutdownGrace)
	defer timer.Stop()

	select {
	case <-drained:
		s.cancel()
		return nil
	case <-timer.C:
	case <-ctx.Done():
	}

	s.cancel()
	s.config.Logger.Warn(ctx, "scheduler shutdown forced",
		observe.Field{Key: "grace", Value: s.config.ShutdownGrace.String()},
	)
	return ErrShutdownTimeout
}

func (s *Scheduler) schedule(fn func(context.Context), initialDelay, period time.Duration, fixedRate bool) (*Task, error) {
	if fn == nil {
		return nil, ErrNilTask
	}
	if period <= 0 {
		return nil, fmt.Errorf("%w: period must be positive, got %v", ErrInvalidSchedule, period)
	}
	if initialDelay < 0 {
		return nil, fmt.Errorf("%w: initial delay must not be negative, got %v", ErrInvalidSchedule, initialDelay)
	}

	ctx, cancel := context.WithCancel(s.ctx)
	t := &Task{
		fn:     fn,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shutdown {
		// Inert task: accepted, never fires.
		cancel()
		close(t.done)
		return t, nil
	}

	s.tasks[t] = struct{}{}
	s.wg.Add(1)
	go s.run(t, initialDelay, period, fixedRate)

	return t, nil
}

func (s *Scheduler) run(t *Task, initialDelay, period time.Duration, fixedRate bool) {
	defer s.wg.Done()
	defer s.forget(t)
	defer close(t.done)

	next := time.Now().Add(initialDelay)
	timer := time.NewTimer(initialDelay)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
		case <-t.ctx.Done():
			return
		case <-s.stop:
			return
		}

		if !s.fire(t) {
			return
		}

		if fixedRate {
			// A negative wait fires immediately, letting an overrun catch up.
			next = next.Add(period)
			timer.Reset(time.Until(next))
		} else {
			timer.Reset(period)
		}
	}
}

// fire runs one firing once a slot is free. It reports false when the task
// or the scheduler stopped while waiting.
func (s *Scheduler) fire(t *Task) bool {
	if err := s.slots.Acquire(t.ctx, 1); err != nil {
		return false
	}
	defer s.slots.Release(1)

	if t.ctx.Err() != nil {
		return false
	}
	select {
	case <-s.stop:
		return false
	default:
	}

	s.invoke(t)
	return true
}

func (s *Scheduler) invoke(t *Task) {
	defer func() {
		if r := recover(); r != nil {
			s.config.Logger.Error(t.ctx, "scheduled task panicked",
				observe.Field{Key: "panic", Value: fmt.Sprint(r)},
				observe.Field{Key: "stack", Value: string(debug.Stack())},
			)
		}
	}()
	t.fn(t.ctx)
}

func (s *Scheduler) forget(t *Task) {
	s.mu.Lock()
	delete(s.tasks, t)
	s.mu.Unlock()
}
