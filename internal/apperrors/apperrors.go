package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable error kinds the HTTP layer and clients branch on. Conflict
// variants stay distinct so a caller can tell "no seats" from "you
// already booked this ride".
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")

	ErrNoSeats          = errors.New("no seats available")
	ErrAlreadyBooked    = errors.New("ride already booked by this passenger")
	ErrRideNotScheduled = errors.New("ride is not scheduled")
	ErrSelfBooking      = errors.New("driver cannot book own ride")

	// ErrBusy means the per-ride lock could not be acquired in time.
	// Safe to retry with backoff.
	ErrBusy = errors.New("ride is busy, retry later")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Forbiddenf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// IsConflict reports whether err is any of the capacity/state
// conflicts from the booking ledger.
func IsConflict(err error) bool {
	return errors.Is(err, ErrNoSeats) ||
		errors.Is(err, ErrAlreadyBooked) ||
		errors.Is(err, ErrRideNotScheduled) ||
		errors.Is(err, ErrSelfBooking)
}

// HTTPStatus maps an error kind to a response code. Unknown errors
// are internal.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case IsConflict(err):
		return http.StatusConflict
	case errors.Is(err, ErrBusy):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Kind returns the stable machine-readable name for an error, used in
// JSON error payloads.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNoSeats):
		return "no_seats"
	case errors.Is(err, ErrAlreadyBooked):
		return "already_booked"
	case errors.Is(err, ErrRideNotScheduled):
		return "ride_not_scheduled"
	case errors.Is(err, ErrSelfBooking):
		return "self_booking"
	case errors.Is(err, ErrBusy):
		return "busy"
	default:
		return "internal"
	}
}
