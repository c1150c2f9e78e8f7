package ranking

import (
	"runtime"

	"github.com/okian/skillmatch/pkg/logger"
)

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithParallelism bounds how many employees are scored at once.
func WithParallelism(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.parallelism = n
		}
	}
}

// WithLogger sets the logger used for scoring diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(r *Ranker) {
		if l != nil {
			r.logger = l
		}
	}
}

func defaultParallelism() int {
	return runtime.GOMAXPROCS(0)
}
