package daemon

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/jonwraymond/promhealth/health"
	"github.com/jonwraymond/promhealth/internal/config"
	"github.com/jonwraymond/promhealth/probes"
)

// buildProbe turns a probe declaration into a decorated health.Probe. The
// returned closer releases any client the probe owns; it may be nil.
func buildProbe(ctx context.Context, pc config.ProbeConfig) (health.Probe, func() error, error) {
	p, closer, err := newProbe(ctx, pc)
	if err != nil {
		return nil, nil, fmt.Errorf("probe '%s': %w", pc.Name, err)
	}

	if pc.Attempts > 1 {
		p = health.WithRetry(p, health.RetryConfig{MaxAttempts: pc.Attempts})
	}
	p = health.WithTimeout(p, pc.Timeout)
	if pc.Breaker.MaxFailures > 0 {
		p = health.WithBreaker(p, health.BreakerConfig{
			MaxFailures:  pc.Breaker.MaxFailures,
			ResetTimeout: pc.Breaker.ResetTimeout,
		})
	}

	if pc.Async.Enabled() {
		schedule := health.Schedule{
			InitialState: health.StatusOf(pc.Async.InitialState == "healthy"),
			InitialDelay: pc.Async.InitialDelay,
			Period:       pc.Async.Period,
			Type:         health.FixedRate,
		}
		if pc.Async.Type == "fixed_delay" {
			schedule.Type = health.FixedDelay
		}
		p = health.WithSchedule(p, schedule)
	}
	return p, closer, nil
}

func newProbe(ctx context.Context, pc config.ProbeConfig) (health.Probe, func() error, error) {
	switch pc.Type {
	case config.ProbeHTTP:
		p, err := probes.NewHTTP(probes.HTTPConfig{
			URL:          pc.Target,
			Method:       pc.Method,
			Header:       pc.Header,
			ExpectStatus: pc.ExpectStatus,
		})
		return p, nil, err

	case config.ProbeTCP:
		return probes.TCP(pc.Target), nil, nil

	case config.ProbeFilesystem:
		return probes.Filesystem(probes.FilesystemConfig{Path: pc.Target, Writable: pc.Writable}), nil, nil

	case config.ProbePostgres:
		db, err := sql.Open("postgres", pc.Target)
		if err != nil {
			return nil, nil, err
		}
		return probes.SQL(db), db.Close, nil

	case config.ProbeRedis:
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: pc.Addrs()})
		return probes.Redis(client), client.Close, nil

	case config.ProbeKafka:
		client, err := kgo.NewClient(kgo.SeedBrokers(pc.Addrs()...))
		if err != nil {
			return nil, nil, err
		}
		return probes.Kafka(client), func() error { client.Close(); return nil }, nil

	case config.ProbeS3:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, err
		}
		return probes.S3Bucket(s3.NewFromConfig(awsCfg), pc.Target), nil, nil

	case config.ProbeMemory:
		return health.NewMemoryProbe(health.MemoryProbeConfig{Threshold: pc.Threshold}), nil, nil

	case config.ProbeRequired:
		values := make(map[string]string, len(pc.Env))
		for _, name := range pc.Env {
			values[name] = os.Getenv(name)
		}
		return probes.Required(values), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown type '%s'", pc.Type)
	}
}
