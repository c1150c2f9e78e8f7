package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/skillmatch/internal/app"
	"github.com/okian/skillmatch/internal/domain/ranking"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("service unavailable")
	ErrTimeout      = errors.New("request timed out")
	ErrInternal     = errors.New("internal error")
)

// Error tags a failure with the handler operation and an API kind.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	case e.Kind != nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	default:
		return e.Op
	}
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// Wrap tags err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapKind tags err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// classify maps a service error to a status, a response code and an API kind.
func classify(err error) (int, string, error) {
	switch {
	case errors.Is(err, service.ErrQueueFull):
		return http.StatusTooManyRequests, "backpressure", ErrBackpressure
	case errors.Is(err, service.ErrJobNotFound):
		return http.StatusNotFound, "not_found", ErrNotFound
	case errors.Is(err, service.ErrNotReady),
		errors.Is(err, ranking.ErrDataUnavailable),
		errors.Is(err, ranking.ErrConfiguration):
		return http.StatusServiceUnavailable, "unavailable", ErrUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout", ErrTimeout
	case errors.Is(err, ranking.ErrScoring):
		return http.StatusInternalServerError, "scoring_failed", ErrInternal
	default:
		return http.StatusInternalServerError, "internal_error", ErrInternal
	}
}
