package health

// Status is the two-valued outcome of a probe.
type Status int

const (
	// StatusUnhealthy indicates the component is not functioning. It is the
	// zero value, so an unset Status never reads as healthy.
	StatusUnhealthy Status = iota
	// StatusHealthy indicates the component is functioning normally.
	StatusHealthy
)

// Value returns the numeric projection used in metric samples: 1 for
// healthy, 0 for anything else.
func (s Status) Value() float64 {
	if s == StatusHealthy {
		return 1
	}
	return 0
}

// IsHealthy reports whether s is StatusHealthy.
func (s Status) IsHealthy() bool {
	return s == StatusHealthy
}

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// StatusOf maps a boolean verdict to a Status.
func StatusOf(healthy bool) Status {
	if healthy {
		return StatusHealthy
	}
	return StatusUnhealthy
}
