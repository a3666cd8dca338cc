package probes

import "errors"

var (
	// ErrNilClient indicates a probe was built around a nil client.
	ErrNilClient = errors.New("probes: client is nil")

	// ErrUnexpectedStatus indicates an HTTP service answered with a failing status code.
	ErrUnexpectedStatus = errors.New("probes: unexpected status")

	// ErrMissingConfig indicates required configuration values are empty.
	ErrMissingConfig = errors.New("probes: missing required configuration")

	// ErrNotWritable indicates a filesystem path rejected a test write.
	ErrNotWritable = errors.New("probes: path not writable")
)
