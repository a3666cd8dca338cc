package health

import "errors"

var (
	// ErrInvalidArgument indicates an empty name, a nil probe or an invalid schedule.
	ErrInvalidArgument = errors.New("health: invalid argument")

	// ErrAlreadyExists indicates a probe with the same name is already registered.
	ErrAlreadyExists = errors.New("health: probe already exists")

	// ErrNotFound indicates no probe is registered under the given name.
	ErrNotFound = errors.New("health: probe not found")

	// ErrProbeFailed wraps a panic raised by a probe's check. It never reaches
	// registry callers; it is only visible to loggers and telemetry.
	ErrProbeFailed = errors.New("health: probe failed")

	// ErrProbeTimeout indicates a probe wrapped with WithTimeout did not finish in time.
	ErrProbeTimeout = errors.New("health: probe timeout")

	// ErrBreakerOpen indicates a probe wrapped with WithBreaker was skipped.
	ErrBreakerOpen = errors.New("health: breaker open")
)
