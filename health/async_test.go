package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonwraymond/promhealth/scheduler"
)

func newTestScheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()
	sched := scheduler.New()
	t.Cleanup(func() { _ = sched.Shutdown(context.Background()) })
	return sched
}

func TestNewAsyncProbe_InvalidArgument(t *testing.T) {
	sched := newTestScheduler(t)

	tests := []struct {
		name     string
		probe    Probe
		schedule Schedule
		sched    *scheduler.Scheduler
	}{
		{"nil probe", nil, Schedule{Period: time.Second}, sched},
		{"nil scheduler", healthy(), Schedule{Period: time.Second}, nil},
		{"zero period", healthy(), Schedule{}, sched},
		{"negative delay", healthy(), Schedule{Period: time.Second, InitialDelay: -1}, sched},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAsyncProbe(tt.probe, tt.schedule, tt.sched)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("NewAsyncProbe() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestAsyncProbe_InitialState(t *testing.T) {
	sched := newTestScheduler(t)

	for _, initial := range []Status{StatusHealthy, StatusUnhealthy} {
		ap, err := NewAsyncProbe(unhealthy(), Schedule{
			InitialState: initial,
			InitialDelay: time.Hour,
			Period:       time.Hour,
		}, sched)
		if err != nil {
			t.Fatal(err)
		}

		got, _ := ap.Check(context.Background())
		if got != initial {
			t.Errorf("Check() = %v, want initial state %v", got, initial)
		}
		if ap.State() != StateScheduled {
			t.Errorf("State() = %v, want scheduled", ap.State())
		}
		if !ap.LastUpdated().IsZero() {
			t.Error("LastUpdated() should be zero before the first run")
		}
	}
}

func TestAsyncProbe_TransitionsAfterFiring(t *testing.T) {
	reg := newTestRegistry(t)
	period := 20 * time.Millisecond

	release := make(chan struct{})
	gated := ProbeFunc(func(ctx context.Context) (Status, error) {
		select {
		case <-release:
			return StatusHealthy, nil
		case <-ctx.Done():
			return StatusUnhealthy, ctx.Err()
		}
	})

	err := reg.Add("filesystem", WithSchedule(gated, Schedule{
		InitialState: StatusUnhealthy,
		Period:       period,
	}))
	if err != nil {
		t.Fatal(err)
	}

	samples := reg.Collect(context.Background())
	if len(samples) != 1 || samples[0].Value() != 0 {
		t.Fatalf("Collect() = %v, want filesystem at 0.0 before the first run", samples)
	}
	close(release)

	ok := waitFor(t, 50*period, func() bool {
		s := reg.Collect(context.Background())
		return len(s) == 1 && s[0].Value() == 1
	})
	if !ok {
		t.Fatal("async probe never reported the wrapped probe's result")
	}

	got, _ := reg.Get("filesystem")
	ap := got.(*AsyncProbe)
	if ap.LastUpdated().IsZero() {
		t.Error("LastUpdated() should be set after a run")
	}
	if s := ap.State(); s != StateCached && s != StateRunning {
		t.Errorf("State() = %v, want cached or running", s)
	}
}

func TestAsyncProbe_FixedDelay(t *testing.T) {
	sched := newTestScheduler(t)
	var runs atomic.Int32

	ap, err := NewAsyncProbe(ProbeFunc(func(context.Context) (Status, error) {
		runs.Add(1)
		return StatusHealthy, nil
	}), Schedule{Period: 10 * time.Millisecond, Type: FixedDelay}, sched)
	if err != nil {
		t.Fatal(err)
	}
	defer ap.Cancel()

	if !waitFor(t, time.Second, func() bool { return runs.Load() >= 3 }) {
		t.Fatalf("runs = %d, want at least 3", runs.Load())
	}
	if got, _ := ap.Check(context.Background()); got != StatusHealthy {
		t.Errorf("Check() = %v, want healthy", got)
	}
}

func TestAsyncProbe_CheckNeverRunsProbe(t *testing.T) {
	sched := newTestScheduler(t)
	var runs atomic.Int32

	ap, err := NewAsyncProbe(ProbeFunc(func(context.Context) (Status, error) {
		runs.Add(1)
		return StatusHealthy, nil
	}), Schedule{InitialDelay: time.Hour, Period: time.Hour}, sched)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 100; i++ {
		_, _ = ap.Check(context.Background())
	}
	if runs.Load() != 0 {
		t.Errorf("wrapped probe ran %d times, want 0", runs.Load())
	}
}

func TestAsyncProbe_FailureCachesUnhealthy(t *testing.T) {
	sched := newTestScheduler(t)

	ap, err := NewAsyncProbe(ProbeFunc(func(context.Context) (Status, error) {
		panic("disk gone")
	}), Schedule{InitialState: StatusHealthy, Period: 10 * time.Millisecond}, sched)
	if err != nil {
		t.Fatal(err)
	}
	defer ap.Cancel()

	ok := waitFor(t, time.Second, func() bool {
		got, _ := ap.Check(context.Background())
		return got == StatusUnhealthy
	})
	if !ok {
		t.Error("panicking probe should be cached as unhealthy")
	}
}

func TestAsyncProbe_Cancel(t *testing.T) {
	sched := newTestScheduler(t)
	var runs atomic.Int32

	ap, err := NewAsyncProbe(ProbeFunc(func(context.Context) (Status, error) {
		runs.Add(1)
		return StatusHealthy, nil
	}), Schedule{Period: 5 * time.Millisecond}, sched)
	if err != nil {
		t.Fatal(err)
	}
	waitFor(t, time.Second, func() bool { return runs.Load() > 0 })

	if !ap.Cancel() {
		t.Error("first Cancel() should report true")
	}
	if ap.Cancel() {
		t.Error("second Cancel() should report false")
	}
	if ap.State() != StateCancelled {
		t.Errorf("State() = %v, want cancelled", ap.State())
	}

	time.Sleep(20 * time.Millisecond)
	before := runs.Load()
	time.Sleep(50 * time.Millisecond)
	if after := runs.Load(); after != before {
		t.Errorf("runs went from %d to %d after Cancel", before, after)
	}
}

func TestAsyncProbe_CancelInterruptsRun(t *testing.T) {
	sched := newTestScheduler(t)
	started := make(chan struct{})
	interrupted := make(chan struct{})

	ap, err := NewAsyncProbe(ProbeFunc(func(ctx context.Context) (Status, error) {
		close(started)
		<-ctx.Done()
		close(interrupted)
		return StatusUnhealthy, ctx.Err()
	}), Schedule{InitialState: StatusHealthy, Period: time.Hour}, sched)
	if err != nil {
		t.Fatal(err)
	}

	<-started
	ap.Cancel()

	select {
	case <-interrupted:
	case <-time.After(time.Second):
		t.Fatal("Cancel() did not interrupt the in-flight run")
	}
	time.Sleep(10 * time.Millisecond)
	if got, _ := ap.Check(context.Background()); got != StatusHealthy {
		t.Errorf("Check() = %v, interrupted run should not replace the cache", got)
	}
}

func TestAsyncProbe_StopsUpdatingAfterShutdown(t *testing.T) {
	reg := NewRegistry()
	var flip atomic.Bool

	err := reg.Add("flapping", WithSchedule(ProbeFunc(func(context.Context) (Status, error) {
		return StatusOf(flip.Load()), nil
	}), Schedule{InitialState: StatusHealthy, Period: 5 * time.Millisecond}))
	if err != nil {
		t.Fatal(err)
	}

	// Let at least one run land, then stop the scheduler.
	got, _ := reg.Get("flapping")
	ap := got.(*AsyncProbe)
	waitFor(t, time.Second, func() bool { return !ap.LastUpdated().IsZero() })
	if err := reg.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	frozen, _ := reg.RunOnce(context.Background(), "flapping")
	flip.Store(!frozen.IsHealthy())

	for i := 0; i < 10; i++ {
		time.Sleep(5 * time.Millisecond)
		now, _ := reg.RunOnce(context.Background(), "flapping")
		if now != frozen {
			t.Fatalf("cached value changed from %v to %v after Shutdown", frozen, now)
		}
	}
}

func TestAsyncProbe_Unwrap(t *testing.T) {
	sched := newTestScheduler(t)
	inner := healthy()
	schedule := Schedule{InitialDelay: time.Hour, Period: time.Hour, Type: FixedDelay}

	ap, err := NewAsyncProbe(inner, schedule, sched)
	if err != nil {
		t.Fatal(err)
	}
	if ap.Interval() != schedule {
		t.Errorf("Interval() = %+v, want %+v", ap.Interval(), schedule)
	}
	if ap.Unwrap() == nil {
		t.Error("Unwrap() returned nil")
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateScheduled, "scheduled"},
		{StateRunning, "running"},
		{StateCached, "cached"},
		{StateCancelled, "cancelled"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestAsync_ForcedShutdownCancels(t *testing.T) {
	sched := scheduler.New(scheduler.Config{ShutdownGrace: 10 * time.Millisecond})
	started := make(chan struct{})

	ap, err := NewAsyncProbe(ProbeFunc(func(ctx context.Context) (Status, error) {
		close(started)
		<-ctx.Done()
		return StatusUnhealthy, ctx.Err()
	}), Schedule{InitialState: StatusHealthy, Period: time.Hour}, sched)
	if err != nil {
		t.Fatal(err)
	}

	<-started
	if err := sched.Shutdown(context.Background()); !errors.Is(err, scheduler.ErrShutdownTimeout) {
		t.Errorf("Shutdown() error = %v, want ErrShutdownTimeout", err)
	}
	if !waitFor(t, time.Second, func() bool { return ap.State() == StateCancelled }) {
		t.Errorf("State() = %v, want cancelled after an interrupted run", ap.State())
	}
	if got, _ := ap.Check(context.Background()); got != StatusHealthy {
		t.Errorf("Check() = %v, interrupted run should not replace the cache", got)
	}
}
