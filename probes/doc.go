// Package probes provides health.Probe implementations for common
// dependencies: SQL databases, Redis, Kafka brokers, HTTP services, TCP
// endpoints, S3 buckets, filesystems and required configuration.
//
// Probes impose no timeout of their own; wrap them with health.WithTimeout.
package probes
