package scheduler

import (
	"context"
	"sync/atomic"
)

// Task is a handle to a periodic task registered on a Scheduler.
type Task struct {
	fn        func(context.Context)
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	cancelled atomic.Bool
}

// Cancel stops future firings and cancels the context of an in-flight firing.
// It reports whether this call stopped a live task; it returns false for a
// task that was already cancelled, already stopped by Shutdown, or inert.
func (t *Task) Cancel() bool {
	if !t.cancelled.CompareAndSwap(false, true) {
		return false
	}
	select {
	case <-t.done:
		return false
	default:
	}
	t.cancel()
	return true
}

// Done is closed once the task's timing loop has exited.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Cancelled reports whether Cancel has been called.
func (t *Task) Cancelled() bool {
	return t.cancelled.Load()
}
