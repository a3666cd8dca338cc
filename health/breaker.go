package health

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// BreakerState is the position of a probe breaker.
type BreakerState int

const (
	// BreakerClosed means checks run normally.
	BreakerClosed BreakerState = iota
	// BreakerOpen means checks are skipped and the probe reports unhealthy.
	BreakerOpen
	// BreakerHalfOpen means a single trial check is allowed through.
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures WithBreaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive unhealthy checks that open
	// the breaker.
	// Default: 5
	MaxFailures int

	// ResetTimeout is how long the breaker stays open before a trial check.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// OnStateChange is called with the breaker lock held; it must not block.
	OnStateChange func(from, to BreakerState)
}

// Breaker stops calling a dependency that keeps failing. While open, the
// wrapped probe reports StatusUnhealthy with ErrBreakerOpen without running.
type Breaker struct {
	probe  Probe
	config BreakerConfig
	now    func() time.Time

	mu          sync.Mutex
	state       BreakerState
	failures    int
	lastFailure time.Time
	trial       bool
}

// WithBreaker wraps p with a Breaker. A ScheduledProbe keeps its schedule.
func WithBreaker(p Probe, config BreakerConfig) Probe {
	return keepSchedule(p, NewBreaker(p, config))
}

// NewBreaker returns a closed Breaker around p.
func NewBreaker(p Probe, config BreakerConfig) *Breaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	return &Breaker{probe: p, config: config, now: time.Now}
}

// Check runs the wrapped probe unless the breaker is open.
func (b *Breaker) Check(ctx context.Context) (Status, error) {
	if err := b.before(); err != nil {
		return StatusUnhealthy, err
	}
	status, err := check(ctx, b.probe)
	b.after(err == nil && status.IsHealthy())
	return status, err
}

// State returns the current breaker position.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentLocked()
}

// Reset closes the breaker and forgets past failures.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.trial = false
	b.setLocked(BreakerClosed)
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentLocked() {
	case BreakerOpen:
		return fmt.Errorf("%w after %d failures", ErrBreakerOpen, b.failures)
	case BreakerHalfOpen:
		if b.trial {
			return fmt.Errorf("%w: trial check in flight", ErrBreakerOpen)
		}
		b.trial = true
	}
	return nil
}

func (b *Breaker) after(healthy bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		if healthy {
			b.failures = 0
			return
		}
		b.failures++
		b.lastFailure = b.now()
		if b.failures >= b.config.MaxFailures {
			b.setLocked(BreakerOpen)
		}
	case BreakerHalfOpen:
		b.trial = false
		if healthy {
			b.failures = 0
			b.setLocked(BreakerClosed)
			return
		}
		b.lastFailure = b.now()
		b.setLocked(BreakerOpen)
	}
}

func (b *Breaker) currentLocked() BreakerState {
	if b.state == BreakerOpen && b.now().Sub(b.lastFailure) >= b.config.ResetTimeout {
		b.trial = false
		b.setLocked(BreakerHalfOpen)
	}
	return b.state
}

func (b *Breaker) setLocked(to BreakerState) {
	from := b.state
	b.state = to
	if from != to && b.config.OnStateChange != nil {
		b.config.OnStateChange(from, to)
	}
}
