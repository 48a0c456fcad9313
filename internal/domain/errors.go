package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a service wraps exactly one of these,
// and the transport layer maps the kind to a status code.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
)

// Specific errors used across services.
var (
	ErrUserNotFound    = newError(ErrNotFound, "user not found")
	ErrItemNotFound    = newError(ErrNotFound, "item not found")
	ErrBookingNotFound = newError(ErrNotFound, "booking not found")
	ErrRequestNotFound = newError(ErrNotFound, "item request not found")
	ErrItemUnavailable = newError(ErrConflict, "item is not available for booking")
	ErrEmailTaken      = newError(ErrConflict, "email is already in use")
	ErrInvalidInterval = newError(ErrInvalidArgument, "booking start must be before end")
	ErrStartInPast     = newError(ErrInvalidArgument, "booking start must not be in the past")
	ErrEmptyComment    = newError(ErrInvalidArgument, "comment text must not be blank")
	ErrNotEligible     = newError(ErrInvalidArgument, "user has no completed booking of this item")
	ErrNotOwner        = newError(ErrForbidden, "only the item owner may do this")
	ErrOwnItemBooking  = newError(ErrForbidden, "owner cannot book own item")
	ErrNotParticipant  = newError(ErrForbidden, "only the booker or the item owner may view this booking")
	ErrAlreadyDecided  = newError(ErrConflict, "booking status has already been decided")
	ErrRateLimited     = errors.New("rate limit exceeded")
)

type kindError struct {
	kind error
	msg  string
}

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// Errorf builds an error of the given kind with a formatted message.
func Errorf(kind error, format string, args ...any) error {
	return newError(kind, fmt.Sprintf(format, args...))
}

// KindOf returns the kind sentinel err wraps, or nil for unclassified errors.
func KindOf(err error) error {
	for _, k := range []error{ErrNotFound, ErrInvalidArgument, ErrConflict, ErrForbidden} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
