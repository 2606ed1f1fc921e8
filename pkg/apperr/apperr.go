package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel error kinds shared across services and HTTP mapping.
// Every error leaving a repository or service wraps exactly one of these,
// so callers can classify with errors.Is without string matching.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the actor lacks the specific relationship the
	// operation requires (e.g. not a captain of either participating team).
	// This is distinct from being unauthenticated.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict indicates the operation lost a race or targets an already
	// resolved request/verification.
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates malformed input: score bounds, dispute reason
	// too short, non-monotonic ball ordinal, invalid transition, etc.
	ErrValidation = errors.New("validation failed")

	// ErrTransient indicates storage contention that may succeed on retry.
	// Only the auto-approval sweep retries these; everything else propagates.
	ErrTransient = errors.New("transient storage failure")
)

// Wrap attaches a kind to a descriptive message.
func Wrap(kind error, msg string) error {
	return fmt.Errorf("%s: %w", msg, kind)
}

// Wrapf attaches a kind to a formatted message.
func Wrapf(kind error, format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, kind)...)
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// HTTPStatus maps an error to the response code controllers should send.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
