package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a booking failure so callers can branch on the
// outcome instead of matching message strings.
type ErrorKind string

const (
	// ErrValidation - request fields missing or out of range. User-correctable.
	ErrValidation ErrorKind = "VALIDATION"
	// ErrSeatUnavailable - a requested seat is not AVAILABLE or its lock is
	// held by someone else. User-correctable: try different seats.
	ErrSeatUnavailable ErrorKind = "SEAT_UNAVAILABLE"
	// ErrLock - the lock store itself failed. Infrastructure, retryable.
	ErrLock ErrorKind = "LOCK"
	// ErrNotFound - no such booking, or the caller does not own it. The two
	// cases are deliberately indistinguishable to avoid existence leakage.
	ErrNotFound ErrorKind = "NOT_FOUND"
	// ErrInvalidState - illegal lifecycle transition, e.g. confirming a
	// booking that is not PENDING_PAYMENT. Not retryable.
	ErrInvalidState ErrorKind = "INVALID_STATE"
	// ErrInfrastructure - persistence or bus unavailable. Retryable at the
	// caller's discretion.
	ErrInfrastructure ErrorKind = "INFRASTRUCTURE"
)

// Error is a typed booking error. Business outcomes (seat taken, booking
// expired, not yours) are returned as values of this type, never panics.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a typed error with a human-readable message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a cause to a typed error.
func WrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf extracts the kind from err, or ErrInfrastructure when err is not a
// typed booking error.
func KindOf(err error) ErrorKind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return ErrInfrastructure
}

// MessageOf returns the human-readable message of a typed error, or an
// empty string for untyped errors (whose content must not reach clients).
func MessageOf(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return be.Message
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
