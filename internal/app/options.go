package service

import (
	"time"

	"github.com/okian/skillmatch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of job worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithJobRetention sets how many jobs are kept before finished ones are evicted.
func WithJobRetention(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.jobRetention = n
		}
	}
}

// WithJobTimeout bounds a single asynchronous job.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.jobTimeout = d
		}
	}
}

// WithScoringParallelism bounds concurrent employee scoring per request.
func WithScoringParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// WithTopNLimits sets the default and maximum result counts.
func WithTopNLimits(defaultTopN, maxTopN int) Option {
	return func(s *Service) {
		if defaultTopN > 0 {
			s.defaultTopN = defaultTopN
		}
		if maxTopN > 0 {
			s.maxTopN = maxTopN
		}
	}
}

// WithAMQP enables job intake from queue on the broker at url.
func WithAMQP(url, queue string) Option {
	return func(s *Service) {
		s.amqpURL = url
		if queue != "" {
			s.amqpQueue = queue
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
