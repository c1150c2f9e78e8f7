package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	// ErrConfiguration marks a missing or invalid ensemble or encoder. Fatal at startup.
	ErrConfiguration = errors.New("ranking configuration error")
	// ErrDataUnavailable marks a profile store that could not be read.
	ErrDataUnavailable = errors.New("profile data unavailable")
	// ErrScoring marks a request failed by one employee's score.
	ErrScoring = errors.New("scoring failed")
)
