package scheduler

import "errors"

var (
	// ErrInvalidSchedule indicates a non-positive period or a negative initial delay.
	ErrInvalidSchedule = errors.New("scheduler: invalid schedule")

	// ErrNilTask indicates a nil task function was provided.
	ErrNilTask = errors.New("scheduler: task function is nil")

	// ErrShutdownTimeout indicates in-flight firings did not finish within the
	// grace period and were cancelled.
	ErrShutdownTimeout = errors.New("scheduler: shutdown grace period exceeded")
)
