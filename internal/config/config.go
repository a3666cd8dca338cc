// Package config loads the promhealthd configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// Probe types understood by the daemon.
const (
	ProbeHTTP       = "http"
	ProbeTCP        = "tcp"
	ProbeFilesystem = "filesystem"
	ProbePostgres   = "postgres"
	ProbeRedis      = "redis"
	ProbeKafka      = "kafka"
	ProbeS3         = "s3"
	ProbeMemory     = "memory"
	ProbeRequired   = "required"
)

var probeTypes = []string{
	ProbeHTTP, ProbeTCP, ProbeFilesystem, ProbePostgres, ProbeRedis,
	ProbeKafka, ProbeS3, ProbeMemory, ProbeRequired,
}

// Config is the daemon configuration.
type Config struct {
	Listen    string          `yaml:"listen" default:":9090"`
	Log       LogConfig       `yaml:"log"`
	Registry  RegistryConfig  `yaml:"registry"`
	Metric    MetricConfig    `yaml:"metric"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Probes    []ProbeConfig   `yaml:"probes"`
}

type LogConfig struct {
	Level string `yaml:"level" default:"info"`
}

type RegistryConfig struct {
	PoolSize           int           `yaml:"pool_size" default:"2"`
	ShutdownGrace      time.Duration `yaml:"shutdown_grace" default:"1s"`
	CollectParallelism int           `yaml:"collect_parallelism" default:"1"`
}

type MetricConfig struct {
	Path    string        `yaml:"path" default:"/metrics"`
	Name    string        `yaml:"name" default:"health_check_status"`
	Help    string        `yaml:"help" default:"Health check status results"`
	Label   string        `yaml:"label" default:"system"`
	Timeout time.Duration `yaml:"timeout" default:"10s"`
}

type TelemetryConfig struct {
	ServiceName string        `yaml:"service_name" default:"promhealthd"`
	Tracing     TracingConfig `yaml:"tracing"`
	Metrics     MetricsConfig `yaml:"metrics"`
}

type TracingConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Exporter  string  `yaml:"exporter" default:"otlp"`
	SamplePct float64 `yaml:"sample_pct" default:"1"`
}

type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter" default:"prometheus"`
}

// ProbeConfig declares one probe.
type ProbeConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`

	// Target is the URL, address, path, DSN or bucket the probe checks.
	Target string `yaml:"target"`
	// Targets lists seed brokers or cluster nodes for kafka and redis.
	Targets []string `yaml:"targets"`

	Method       string            `yaml:"method"`
	Header       map[string]string `yaml:"header"`
	ExpectStatus []int             `yaml:"expect_status"`
	Writable     bool              `yaml:"writable"`
	Threshold    float64           `yaml:"threshold"`
	Env          []string          `yaml:"env"`

	Timeout  time.Duration `yaml:"timeout" default:"5s"`
	Attempts int           `yaml:"attempts" default:"1"`
	Async    AsyncConfig   `yaml:"async"`
	Breaker  BreakerConfig `yaml:"breaker"`
}

// BreakerConfig skips checks of a dependency after MaxFailures consecutive
// unhealthy results. A zero MaxFailures disables it.
type BreakerConfig struct {
	MaxFailures  int           `yaml:"max_failures"`
	ResetTimeout time.Duration `yaml:"reset_timeout" default:"30s"`
}

// AsyncConfig schedules a probe in the background. A zero Period keeps the
// probe synchronous.
type AsyncConfig struct {
	Period       time.Duration `yaml:"period"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	InitialState string        `yaml:"initial_state" default:"unhealthy"`
	Type         string        `yaml:"type" default:"fixed_rate"`
}

// Enabled reports whether the probe runs in the background.
func (c AsyncConfig) Enabled() bool {
	return c.Period > 0
}

// New returns a Config with defaults applied.
func New() *Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}

// Load reads filename into a defaulted Config and validates it.
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}
	return Parse(b)
}

// Parse expands ${VAR} references in content, decodes it into a defaulted
// Config and validates it.
func Parse(content []byte) (*Config, error) {
	expanded, err := ExpandEnv(string(content))
	if err != nil {
		return nil, fmt.Errorf("could not parse configuration: %w", err)
	}
	cfg := New()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("could not parse configuration: %w", err)
	}
	for i := range cfg.Probes {
		if err := defaults.Set(&cfg.Probes[i]); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (cfg Config) Validate() error {
	if cfg.Listen == "" {
		return errors.New("listen address is required")
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.Log.Level) {
		return fmt.Errorf("invalid log level: '%s'", cfg.Log.Level)
	}
	if cfg.Registry.PoolSize < 1 {
		return fmt.Errorf("pool_size must be at least 1")
	}
	if cfg.Registry.ShutdownGrace <= 0 {
		return fmt.Errorf("shutdown_grace must be positive")
	}
	if cfg.Metric.Path == "" || cfg.Metric.Path[0] != '/' {
		return fmt.Errorf("invalid metric path: '%s'", cfg.Metric.Path)
	}

	seen := make(map[string]bool, len(cfg.Probes))
	for i, p := range cfg.Probes {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("probes[%d]: %w", i, err)
		}
		if seen[p.Name] {
			return fmt.Errorf("probes[%d]: duplicate name '%s'", i, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

func (p ProbeConfig) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if !slices.Contains(probeTypes, p.Type) {
		return fmt.Errorf("invalid type: '%s'", p.Type)
	}
	switch p.Type {
	case ProbeHTTP, ProbeTCP, ProbeFilesystem, ProbePostgres, ProbeS3:
		if p.Target == "" {
			return fmt.Errorf("%s probe '%s' requires target", p.Type, p.Name)
		}
	case ProbeRedis, ProbeKafka:
		if p.Target == "" && len(p.Targets) == 0 {
			return fmt.Errorf("%s probe '%s' requires target or targets", p.Type, p.Name)
		}
	case ProbeRequired:
		if len(p.Env) == 0 {
			return fmt.Errorf("required probe '%s' lists no env", p.Name)
		}
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if p.Attempts < 1 {
		return fmt.Errorf("attempts must be at least 1")
	}
	if p.Async.Period < 0 || p.Async.InitialDelay < 0 {
		return fmt.Errorf("async period and initial_delay must not be negative")
	}
	if !slices.Contains([]string{"healthy", "unhealthy"}, p.Async.InitialState) {
		return fmt.Errorf("invalid async initial_state: '%s'", p.Async.InitialState)
	}
	if !slices.Contains([]string{"fixed_rate", "fixed_delay"}, p.Async.Type) {
		return fmt.Errorf("invalid async type: '%s'", p.Async.Type)
	}
	if p.Breaker.MaxFailures < 0 || p.Breaker.ResetTimeout <= 0 {
		return fmt.Errorf("breaker max_failures must not be negative and reset_timeout must be positive")
	}
	return nil
}

// Addrs returns Targets, or Target alone when Targets is empty.
func (p ProbeConfig) Addrs() []string {
	if len(p.Targets) > 0 {
		return p.Targets
	}
	return []string{p.Target}
}
