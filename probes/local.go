package probes

import (
	"context"
	"fmt"
	"net"
	"os"
	"slices"

	"github.com/jonwraymond/promhealth/health"
)

// TCP dials addr and closes the connection.
func TCP(addr string) health.Probe {
	var d net.Dialer
	return health.ProbeFunc(func(ctx context.Context) (health.Status, error) {
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return health.StatusUnhealthy, fmt.Errorf("dial %s: %w", addr, err)
		}
		_ = conn.Close()
		return health.StatusHealthy, nil
	})
}

// FilesystemConfig configures a filesystem probe.
type FilesystemConfig struct {
	// Path is the directory to check.
	Path string

	// Writable additionally creates and removes a temporary file in Path.
	Writable bool
}

// Filesystem checks that a directory exists and, optionally, accepts writes.
func Filesystem(config FilesystemConfig) health.Probe {
	return health.ProbeFunc(func(ctx context.Context) (health.Status, error) {
		if err := ctx.Err(); err != nil {
			return health.StatusUnhealthy, err
		}

		info, err := os.Stat(config.Path)
		if err != nil {
			return health.StatusUnhealthy, err
		}
		if !info.IsDir() {
			return health.StatusUnhealthy, fmt.Errorf("%s is not a directory", config.Path)
		}
		if !config.Writable {
			return health.StatusHealthy, nil
		}

		f, err := os.CreateTemp(config.Path, ".promhealth-*")
		if err != nil {
			return health.StatusUnhealthy, fmt.Errorf("%w: %v", ErrNotWritable, err)
		}
		name := f.Name()
		_ = f.Close()
		if err := os.Remove(name); err != nil {
			return health.StatusUnhealthy, fmt.Errorf("%w: %v", ErrNotWritable, err)
		}
		return health.StatusHealthy, nil
	})
}

// Required reports unhealthy while any of the named values is empty.
func Required(values map[string]string) health.Probe {
	return health.ProbeFunc(func(context.Context) (health.Status, error) {
		var missing []string
		for key, value := range values {
			if value == "" {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			slices.Sort(missing)
			return health.StatusUnhealthy, fmt.Errorf("%w: %v", ErrMissingConfig, missing)
		}
		return health.StatusHealthy, nil
	})
}
