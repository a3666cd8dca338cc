package health

import (
	"context"
	"fmt"
)

// Probe is the interface for health checks.
//
// Check may block for as long as the underlying check takes and may return
// an error or even panic; callers inside this package never see either; they
// go through Evaluate, which maps every failure to StatusUnhealthy.
type Probe interface {
	Check(ctx context.Context) (Status, error)
}

// ProbeFunc is an adapter to allow ordinary functions to be used as Probes.
type ProbeFunc func(ctx context.Context) (Status, error)

// Check calls f(ctx).
func (f ProbeFunc) Check(ctx context.Context) (Status, error) {
	return f(ctx)
}

// PingProbe adapts a function that returns nil when a component is reachable,
// such as a database Ping, into a Probe.
func PingProbe(ping func(ctx context.Context) error) Probe {
	return ProbeFunc(func(ctx context.Context) (Status, error) {
		if err := ping(ctx); err != nil {
			return StatusUnhealthy, err
		}
		return StatusHealthy, nil
	})
}

// StaticProbe always reports status.
func StaticProbe(status Status) Probe {
	return ProbeFunc(func(context.Context) (Status, error) {
		return status, nil
	})
}

// Evaluate runs p and absorbs any failure: a returned error, a panic or an
// out-of-range status all yield StatusUnhealthy.
func Evaluate(ctx context.Context, p Probe) Status {
	status, _ := check(ctx, p)
	return status
}

// check runs p, returning the failure that Evaluate absorbs.
func check(ctx context.Context, p Probe) (status Status, err error) {
	defer func() {
		if r := recover(); r != nil {
			status = StatusUnhealthy
			err = fmt.Errorf("%w: panic: %v", ErrProbeFailed, r)
		}
	}()

	status, err = p.Check(ctx)
	if err != nil {
		return StatusUnhealthy, err
	}
	if status != StatusHealthy {
		status = StatusUnhealthy
	}
	return status, nil
}
