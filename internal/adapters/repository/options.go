package repository

import (
	"time"

	"github.com/okian/skillmatch/pkg/logger"
)

const defaultLoadTimeout = 30 * time.Second

// loaderConfig is shared by every Loader implementation.
type loaderConfig struct {
	timeout time.Duration
	logger  logger.Logger
}

func newLoaderConfig(opts []Option) loaderConfig {
	c := loaderConfig{timeout: defaultLoadTimeout, logger: logger.Nop()}

	// Apply all options
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// Option applies a configuration option to a Loader.
type Option func(*loaderConfig)

// WithLoadTimeout bounds a single Load call.
func WithLoadTimeout(timeout time.Duration) Option {
	return func(c *loaderConfig) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets the logger used to report load results.
func WithLogger(l logger.Logger) Option {
	return func(c *loaderConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
