package probes

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonwraymond/promhealth/health"
)

func TestTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()

	if got, err := TCP(addr).Check(context.Background()); got != health.StatusHealthy {
		t.Errorf("Check() = %v (%v), want healthy", got, err)
	}

	_ = ln.Close()
	if got, _ := TCP(addr).Check(context.Background()); got != health.StatusUnhealthy {
		t.Errorf("Check() after close = %v, want unhealthy", got)
	}
}

func TestFilesystem(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "data.txt")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		config FilesystemConfig
		want   health.Status
	}{
		{"dir", FilesystemConfig{Path: dir}, health.StatusHealthy},
		{"writable dir", FilesystemConfig{Path: dir, Writable: true}, health.StatusHealthy},
		{"missing", FilesystemConfig{Path: filepath.Join(dir, "missing")}, health.StatusUnhealthy},
		{"file", FilesystemConfig{Path: file}, health.StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, err := Filesystem(tt.config).Check(context.Background()); got != tt.want {
				t.Errorf("Check() = %v (%v), want %v", got, err, tt.want)
			}
		})
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("write check left %d entries in %s, want 1", len(entries), dir)
	}
}

func TestFilesystem_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got, _ := Filesystem(FilesystemConfig{Path: t.TempDir()}).Check(ctx); got != health.StatusUnhealthy {
		t.Errorf("Check() = %v, want unhealthy", got)
	}
}

func TestRequired(t *testing.T) {
	p := Required(map[string]string{"DATABASE_URL": "postgres://db", "API_KEY": "", "REGION": ""})

	got, err := p.Check(context.Background())
	if got != health.StatusUnhealthy {
		t.Errorf("Check() = %v, want unhealthy", got)
	}
	if !errors.Is(err, ErrMissingConfig) {
		t.Fatalf("Check() error = %v, want ErrMissingConfig", err)
	}
	if want := "probes: missing required configuration: [API_KEY REGION]"; err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}

	if got, err := Required(map[string]string{"A": "1"}).Check(context.Background()); got != health.StatusHealthy || err != nil {
		t.Errorf("Check() = %v, %v; want healthy", got, err)
	}
}
