package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrNotReady is returned before Start completes or after Stop.
	ErrNotReady = errors.New("service not ready")
	// ErrQueueFull is returned when the job queue rejects a submission.
	ErrQueueFull = errors.New("job queue full")
	// ErrJobNotFound is returned for unknown job ids.
	ErrJobNotFound = errors.New("job not found")
)
