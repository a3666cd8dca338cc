package observe

import "time"

// ProbeMeta describes a probe for telemetry purposes.
type ProbeMeta struct {
	Name   string        // Registry name (required)
	Async  bool          // Evaluated on a background schedule
	Period time.Duration // Schedule period, zero for synchronous probes
}

// Mode returns "async" for scheduled probes and "sync" otherwise.
func (m ProbeMeta) Mode() string {
	if m.Async {
		return "async"
	}
	return "sync"
}

// SpanName returns the deterministic span name for this probe.
// Format: health.probe.<name>
func (m ProbeMeta) SpanName() string {
	return "health.probe." + m.Name
}

// Validate checks that the metadata can label telemetry.
func (m ProbeMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingProbeName
	}
	return nil
}
