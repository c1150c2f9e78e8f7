package worker

import (
	"sync/atomic"
	"time"

	"github.com/okian/skillmatch/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithJobTimeout bounds how long a single job may run.
func WithJobTimeout(timeout time.Duration) Option {
	return func(w *InMemoryWorker) {
		if timeout > 0 {
			w.jobTimeout = timeout
		}
	}
}

// withBusyCounter shares the busy-worker gauge across a pool.
func withBusyCounter(c *atomic.Int64) Option {
	return func(w *InMemoryWorker) {
		w.busy = c
	}
}
