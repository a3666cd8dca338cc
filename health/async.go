package health

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonwraymond/promhealth/scheduler"
)

// State is the lifecycle state of an AsyncProbe.
type State int32

const (
	// StateScheduled means no background run has completed yet.
	StateScheduled State = iota
	// StateRunning means a background run is in progress.
	StateRunning
	// StateCached means the last background run completed and its result is cached.
	StateCached
	// StateCancelled is terminal; no further runs will start.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateScheduled:
		return "scheduled"
	case StateRunning:
		return "running"
	case StateCached:
		return "cached"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// AsyncProbe runs a probe on a background schedule and serves the most
// recent result from a cache. Check never blocks on the wrapped probe.
type AsyncProbe struct {
	probe    Probe
	schedule Schedule
	evaluate func(context.Context) Status

	result  atomic.Int32
	state   atomic.Int32
	updated atomic.Int64
	task    *scheduler.Task
}

// NewAsyncProbe wraps p and registers its periodic evaluation on sched.
// The cache is seeded with schedule.InitialState before the first run.
func NewAsyncProbe(p Probe, schedule Schedule, sched *scheduler.Scheduler) (*AsyncProbe, error) {
	return newAsyncProbe(p, schedule, sched, func(ctx context.Context) Status {
		return Evaluate(ctx, p)
	})
}

func newAsyncProbe(p Probe, schedule Schedule, sched *scheduler.Scheduler, evaluate func(context.Context) Status) (*AsyncProbe, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: probe is nil", ErrInvalidArgument)
	}
	if sched == nil {
		return nil, fmt.Errorf("%w: scheduler is nil", ErrInvalidArgument)
	}
	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	a := &AsyncProbe{
		probe:    p,
		schedule: schedule,
		evaluate: evaluate,
	}
	a.result.Store(int32(StatusOf(schedule.InitialState.IsHealthy())))
	a.state.Store(int32(StateScheduled))

	var (
		task *scheduler.Task
		err  error
	)
	switch schedule.Type {
	case FixedDelay:
		task, err = sched.ScheduleWithFixedDelay(a.fire, schedule.InitialDelay, schedule.Period)
	default:
		task, err = sched.ScheduleAtFixedRate(a.fire, schedule.InitialDelay, schedule.Period)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	a.task = task
	return a, nil
}

// fire is one background run. An interrupted run drops its result and
// leaves the probe cancelled, since only Cancel or a scheduler shutdown
// cancels ctx.
func (a *AsyncProbe) fire(ctx context.Context) {
	if !a.transition(StateRunning) {
		return
	}

	status := a.evaluate(ctx)
	if ctx.Err() != nil {
		a.state.Store(int32(StateCancelled))
		return
	}

	a.result.Store(int32(status))
	a.updated.Store(time.Now().UnixNano())
	a.transition(StateCached)
}

// transition moves to the given state unless the probe is cancelled.
func (a *AsyncProbe) transition(to State) bool {
	for {
		cur := a.state.Load()
		if State(cur) == StateCancelled {
			return false
		}
		if a.state.CompareAndSwap(cur, int32(to)) {
			return true
		}
	}
}

// Check returns the cached result. It never runs the wrapped probe.
func (a *AsyncProbe) Check(context.Context) (Status, error) {
	return Status(a.result.Load()), nil
}

// Cancel stops future runs and interrupts an in-flight run.
// It reports whether this call stopped a live background task.
func (a *AsyncProbe) Cancel() bool {
	a.state.Store(int32(StateCancelled))
	return a.task.Cancel()
}

// State returns the current lifecycle state.
func (a *AsyncProbe) State() State {
	return State(a.state.Load())
}

// LastUpdated returns when the cache was last refreshed by a background run,
// or the zero time if no run has completed.
func (a *AsyncProbe) LastUpdated() time.Time {
	ns := a.updated.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Interval returns the schedule the probe runs on.
func (a *AsyncProbe) Interval() Schedule {
	return a.schedule
}

// Unwrap returns the wrapped probe.
func (a *AsyncProbe) Unwrap() Probe {
	return a.probe
}
