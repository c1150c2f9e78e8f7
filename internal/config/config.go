// Package config defines service configuration and how it is loaded.
//
// Values are layered: defaults from New, then an optional YAML file named by
// SKILLMATCH_CONFIG, then SKILLMATCH_* environment variables (a .env file in
// the working directory is read first when present).
package config

import (
	"runtime"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// DefaultTopN is used when a request omits top_n.
	DefaultTopN int `koanf:"default_top_n" validate:"gte=1,ltefield=MaxTopN"`

	// MaxTopN caps the number of results; larger top_n values are clamped.
	MaxTopN int `koanf:"max_top_n" validate:"gte=1"`

	// ScoringParallelism bounds concurrent employee scoring per request. Zero uses GOMAXPROCS.
	ScoringParallelism int `koanf:"scoring_parallelism" validate:"gte=0"`

	// RequestTimeoutMS bounds synchronous recommendation requests.
	RequestTimeoutMS int `koanf:"request_timeout_ms" validate:"gte=1"`

	// JobTimeoutMS bounds one asynchronous job.
	JobTimeoutMS int `koanf:"job_timeout_ms" validate:"gte=1"`

	// ShutdownTimeoutMS bounds graceful shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms" validate:"gte=1"`

	// WorkerCount sets the number of job workers.
	WorkerCount int `koanf:"worker_count" validate:"gte=1"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size" validate:"gte=1"`

	// JobRetention caps stored jobs; the oldest finished ones are evicted.
	JobRetention int `koanf:"job_retention" validate:"gte=1"`

	// ProfileSource selects where profiles come from: file or postgres.
	ProfileSource string `koanf:"profile_source" validate:"oneof=file postgres"`

	// ProfilePath is the JSON profile export read by the file source.
	ProfilePath string `koanf:"profile_path" validate:"required_if=ProfileSource file"`

	// DatabaseURL is the Postgres DSN read by the postgres source.
	DatabaseURL string `koanf:"database_url" validate:"required_if=ProfileSource postgres"`

	// ModelURI locates the model bundle: a file path or s3://bucket/key.
	ModelURI string `koanf:"model_uri" validate:"required"`

	// S3 settings for s3:// model URIs. Empty credentials use the default AWS chain.
	S3Region    string `koanf:"s3_region"`
	S3Endpoint  string `koanf:"s3_endpoint" validate:"omitempty,url"`
	S3AccessKey string `koanf:"s3_access_key"`
	S3SecretKey string `koanf:"s3_secret_key" validate:"required_with=S3AccessKey"`

	// AMQPURL enables job intake from RabbitMQ when set.
	AMQPURL string `koanf:"amqp_url" validate:"omitempty,url"`

	// AMQPQueue names the durable queue jobs are read from.
	AMQPQueue string `koanf:"amqp_queue" validate:"required_with=AMQPURL"`

	// RateLimitPerMinute limits recommendation requests per client IP. Zero disables it.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute" validate:"gte=0"`

	// CORSOrigins is a comma separated list of allowed origins.
	CORSOrigins string `koanf:"cors_origins"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		DefaultTopN:        10,
		MaxTopN:            1000,
		ScoringParallelism: 0,
		RequestTimeoutMS:   10_000,
		JobTimeoutMS:       30_000,
		ShutdownTimeoutMS:  15_000,
		WorkerCount:        runtime.NumCPU(),
		QueueSize:          1000,
		JobRetention:       10_000,
		ProfileSource:      "file",
		ProfilePath:        "data/profiles.json",
		ModelURI:           "data/model.json",
		AMQPQueue:          "recommendation_jobs",
		RateLimitPerMinute: 600,
		CORSOrigins:        "*",
	}
}

// Origins splits CORSOrigins into trimmed, non-empty entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// JobTimeout returns JobTimeoutMS as a duration.
func (c *Config) JobTimeout() time.Duration {
	return time.Duration(c.JobTimeoutMS) * time.Millisecond
}

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}
