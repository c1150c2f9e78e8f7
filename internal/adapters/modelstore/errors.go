package modelstore

import "errors"

// Sentinel kinds for model loading errors.
var (
	ErrUnknownKind = errors.New("unknown predictor kind")
	ErrInvalidURI  = errors.New("invalid model uri")
)
