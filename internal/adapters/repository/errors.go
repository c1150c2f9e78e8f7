package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound          = errors.New("employee not found")
	ErrInvalidProfile    = errors.New("invalid employee profile")
	ErrDuplicateEmployee = errors.New("duplicate employee id")
	ErrJobNotFound       = errors.New("job not found")
	ErrUnknownSource     = errors.New("unknown profile source")
)
