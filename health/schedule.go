package health

import (
	"fmt"
	"time"
)

// ScheduleType selects how consecutive background firings are spaced.
type ScheduleType int

const (
	// FixedRate anchors firings to initialDelay + k*period from registration.
	FixedRate ScheduleType = iota
	// FixedDelay starts the next firing period after the previous one completes.
	FixedDelay
)

func (t ScheduleType) String() string {
	switch t {
	case FixedRate:
		return "fixed_rate"
	case FixedDelay:
		return "fixed_delay"
	default:
		return "unknown"
	}
}

// Schedule declares that a probe runs in the background and how often.
type Schedule struct {
	// InitialState is reported until the first background run completes.
	// Default: StatusUnhealthy
	InitialState Status

	// InitialDelay postpones the first run. Must not be negative.
	InitialDelay time.Duration

	// Period is the spacing between runs. Must be positive.
	Period time.Duration

	// Type selects fixed-rate or fixed-delay spacing.
	// Default: FixedRate
	Type ScheduleType
}

// Validate reports ErrInvalidArgument for a non-positive period, a negative
// initial delay or an unknown schedule type.
func (s Schedule) Validate() error {
	if s.Period <= 0 {
		return fmt.Errorf("%w: period must be positive, got %v", ErrInvalidArgument, s.Period)
	}
	if s.InitialDelay < 0 {
		return fmt.Errorf("%w: initial delay must not be negative, got %v", ErrInvalidArgument, s.InitialDelay)
	}
	if s.Type != FixedRate && s.Type != FixedDelay {
		return fmt.Errorf("%w: unknown schedule type %d", ErrInvalidArgument, int(s.Type))
	}
	return nil
}

// ScheduledProbe is a Probe that must be evaluated asynchronously. The
// Registry wraps every ScheduledProbe in an AsyncProbe when it is added.
type ScheduledProbe interface {
	Probe
	Schedule() Schedule
}

// WithSchedule attaches a schedule to p, making it asynchronous when
// registered. The schedule is validated at registration time.
func WithSchedule(p Probe, schedule Schedule) ScheduledProbe {
	return &scheduledProbe{Probe: p, schedule: schedule}
}

type scheduledProbe struct {
	Probe
	schedule Schedule
}

func (p *scheduledProbe) Schedule() Schedule {
	return p.schedule
}
