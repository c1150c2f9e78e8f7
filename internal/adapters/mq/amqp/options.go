package amqp

import (
	"time"

	"github.com/okian/skillmatch/pkg/logger"
)

// Option applies a configuration option to the Consumer.
type Option func(*Consumer)

// WithRetryable decides which submit errors requeue the message instead of
// rejecting it.
func WithRetryable(fn func(error) bool) Option {
	return func(c *Consumer) {
		if fn != nil {
			c.retryable = fn
		}
	}
}

// WithPrefetch sets how many unacknowledged deliveries the broker may push.
func WithPrefetch(n int) Option {
	return func(c *Consumer) {
		if n > 0 {
			c.prefetch = n
		}
	}
}

// WithRequeueDelay sets the pause before a requeued message is released.
func WithRequeueDelay(d time.Duration) Option {
	return func(c *Consumer) {
		if d >= 0 {
			c.requeueDelay = d
		}
	}
}

// WithDefaultTopN sets top_n for messages that omit it.
func WithDefaultTopN(n int) Option {
	return func(c *Consumer) {
		if n > 0 {
			c.defaultTopN = n
		}
	}
}

// WithLogger sets a custom logger for the consumer.
func WithLogger(l logger.Logger) Option {
	return func(c *Consumer) {
		if l != nil {
			c.logger = l
		}
	}
}
