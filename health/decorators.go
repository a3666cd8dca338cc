package health

import (
	"context"
	"fmt"
	"time"
)

// WithTimeout bounds each evaluation of p. A check that does not finish
// within d reports StatusUnhealthy with ErrProbeTimeout; the check itself
// sees a cancelled context. A ScheduledProbe keeps its schedule. A d of
// zero or less means no timeout and returns p unchanged.
func WithTimeout(p Probe, d time.Duration) Probe {
	if d <= 0 {
		return p
	}
	wrapped := ProbeFunc(func(parent context.Context) (Status, error) {
		ctx, cancel := context.WithTimeout(parent, d)
		defer cancel()

		type outcome struct {
			status Status
			err    error
		}
		done := make(chan outcome, 1)
		go func() {
			status, err := check(ctx, p)
			done <- outcome{status, err}
		}()

		select {
		case o := <-done:
			if o.err != nil && parent.Err() == nil && ctx.Err() != nil {
				return StatusUnhealthy, fmt.Errorf("%w after %v: %v", ErrProbeTimeout, d, o.err)
			}
			return o.status, o.err
		case <-ctx.Done():
			return StatusUnhealthy, fmt.Errorf("%w after %v", ErrProbeTimeout, d)
		}
	})
	return keepSchedule(p, wrapped)
}

// RetryConfig configures WithRetry.
type RetryConfig struct {
	// MaxAttempts is the total number of checks per evaluation.
	// Default: 3
	MaxAttempts int

	// InitialDelay is the wait before the first retry.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the wait between retries.
	// Default: 5s
	MaxDelay time.Duration

	// Multiplier grows the wait after each retry.
	// Default: 2.0
	Multiplier float64
}

// DefaultRetryConfig returns sensible defaults for probe retries.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}

// WithRetry re-runs p until it reports healthy or attempts run out. The last
// failure is returned. A ScheduledProbe keeps its schedule.
func WithRetry(p Probe, config RetryConfig) Probe {
	def := DefaultRetryConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = def.MaxAttempts
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = def.InitialDelay
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = def.MaxDelay
	}
	if config.Multiplier < 1 {
		config.Multiplier = def.Multiplier
	}

	wrapped := ProbeFunc(func(ctx context.Context) (Status, error) {
		var (
			status Status
			err    error
		)
		delay := config.InitialDelay
		for attempt := 1; ; attempt++ {
			status, err = check(ctx, p)
			if err == nil && status.IsHealthy() {
				return status, nil
			}
			if attempt >= config.MaxAttempts {
				return StatusUnhealthy, err
			}

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				if err == nil {
					err = ctx.Err()
				}
				return StatusUnhealthy, err
			case <-timer.C:
			}

			delay = time.Duration(float64(delay) * config.Multiplier)
			if delay > config.MaxDelay {
				delay = config.MaxDelay
			}
		}
	})
	return keepSchedule(p, wrapped)
}

func keepSchedule(original, wrapped Probe) Probe {
	if sp, ok := original.(ScheduledProbe); ok {
		return WithSchedule(wrapped, sp.Schedule())
	}
	return wrapped
}
