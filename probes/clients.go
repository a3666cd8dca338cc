package probes

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/jonwraymond/promhealth/health"
)

func verdict(err error, format string) (health.Status, error) {
	if err != nil {
		return health.StatusUnhealthy, fmt.Errorf(format, err)
	}
	return health.StatusHealthy, nil
}

// SQL pings a database/sql connection pool.
func SQL(db *sql.DB) health.Probe {
	return health.ProbeFunc(func(ctx context.Context) (health.Status, error) {
		if db == nil {
			return health.StatusUnhealthy, fmt.Errorf("%w: sql", ErrNilClient)
		}
		return verdict(db.PingContext(ctx), "database ping failed: %w")
	})
}

// Redis pings a Redis server, sentinel group or cluster.
func Redis(client redis.UniversalClient) health.Probe {
	return health.ProbeFunc(func(ctx context.Context) (health.Status, error) {
		if client == nil {
			return health.StatusUnhealthy, fmt.Errorf("%w: redis", ErrNilClient)
		}
		return verdict(client.Ping(ctx).Err(), "redis ping failed: %w")
	})
}

// Kafka checks broker connectivity of a franz-go client.
func Kafka(client *kgo.Client) health.Probe {
	return health.ProbeFunc(func(ctx context.Context) (health.Status, error) {
		if client == nil {
			return health.StatusUnhealthy, fmt.Errorf("%w: kafka", ErrNilClient)
		}
		return verdict(client.Ping(ctx), "kafka ping failed: %w")
	})
}

// BucketHeader is the subset of the S3 client used by S3Bucket.
type BucketHeader interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Bucket checks that bucket exists and is accessible.
func S3Bucket(client BucketHeader, bucket string) health.Probe {
	return health.ProbeFunc(func(ctx context.Context) (health.Status, error) {
		if client == nil {
			return health.StatusUnhealthy, fmt.Errorf("%w: s3", ErrNilClient)
		}
		_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
		return verdict(err, "s3 head bucket failed: %w")
	})
}
