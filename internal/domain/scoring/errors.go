package scoring

import (
	"errors"
	"fmt"
)

// Sentinel kinds for scoring errors.
var (
	ErrEmptyEnsemble     = errors.New("ensemble has no predictors")
	ErrInvalidModel      = errors.New("invalid model parameters")
	ErrInvalidPrediction = errors.New("predictor returned a non-finite value")
)

// PredictorError names the predictor that failed.
type PredictorError struct {
	Predictor string
	Err       error
}

func (e *PredictorError) Error() string {
	return fmt.Sprintf("predictor %s: %v", e.Predictor, e.Err)
}

func (e *PredictorError) Unwrap() error { return e.Err }
