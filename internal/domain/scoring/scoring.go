// Package scoring combines the outputs of independently trained regression
// predictors into one efficiency score.
package scoring

import (
	"fmt"
	"math"

	"github.com/okian/skillmatch/internal/domain/model"
)

// Score bounds. Efficiency is a percentage.
const (
	minScoreValue = 0
	maxScoreValue = 100
)

// Predictor is a trained regression model. Implementations must be safe
// for concurrent use and must not mutate their parameters after loading.
type Predictor interface {
	// Name identifies the predictor in logs and errors.
	Name() string
	// Predict returns the raw (unclamped) estimate for v.
	Predict(v model.FeatureVector) (float64, error)
}

// Option applies a configuration option to the Ensemble.
type Option func(*Ensemble)

// WithClampRange overrides the score bounds. Ignored unless lo < hi.
func WithClampRange(lo, hi float64) Option {
	return func(e *Ensemble) {
		if lo < hi {
			e.lo = lo
			e.hi = hi
		}
	}
}

// Ensemble averages an ordered, immutable list of predictors.
type Ensemble struct {
	predictors []Predictor
	lo, hi     float64
}

// NewEnsemble builds an ensemble. At least one predictor is required.
func NewEnsemble(predictors []Predictor, opts ...Option) (*Ensemble, error) {
	if len(predictors) == 0 {
		return nil, ErrEmptyEnsemble
	}
	for i, p := range predictors {
		if p == nil {
			return nil, fmt.Errorf("predictor %d is nil: %w", i, ErrInvalidModel)
		}
	}
	e := &Ensemble{
		predictors: append([]Predictor(nil), predictors...),
		lo:         minScoreValue,
		hi:         maxScoreValue,
	}

	// Apply all options
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Score runs every predictor on v, averages the outputs and clamps the mean
// into the score range. A failing or non-finite predictor fails the score.
func (e *Ensemble) Score(v model.FeatureVector) (float64, error) {
	var sum float64
	for _, p := range e.predictors {
		out, err := p.Predict(v)
		if err != nil {
			return 0, &PredictorError{Predictor: p.Name(), Err: err}
		}
		if math.IsNaN(out) || math.IsInf(out, 0) {
			return 0, &PredictorError{Predictor: p.Name(), Err: ErrInvalidPrediction}
		}
		sum += out
	}
	mean := sum / float64(len(e.predictors))
	return Clamp(mean, e.lo, e.hi), nil
}

// Size returns the number of predictors.
func (e *Ensemble) Size() int { return len(e.predictors) }

// Names returns predictor names in ensemble order.
func (e *Ensemble) Names() []string {
	out := make([]string, len(e.predictors))
	for i, p := range e.predictors {
		out[i] = p.Name()
	}
	return out
}

// Clamp truncates x into [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
