package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error a service returns on purpose unwraps to one of these,
// which is what the delivery layer maps to a status code.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// Error is a business-rule failure with a client-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NewError returns an *Error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// InvalidInputf builds an ErrInvalidInput error with a formatted message.
func InvalidInputf(format string, args ...any) error {
	return &Error{Kind: ErrInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// Users and credentials.
var (
	ErrUserNotFound       = NewError(ErrNotFound, "User not found")
	ErrDuplicateEmail     = NewError(ErrConflict, "User already exists")
	ErrUserOwnsEvents     = NewError(ErrConflict, "User still owns events")
	ErrNotSelf            = NewError(ErrUnauthorized, "User is not authorized to act on behalf of another user")
	ErrInvalidCredentials = NewError(ErrUnauthorized, "invalid credentials")
	ErrInvalidToken       = NewError(ErrUnauthorized, "invalid or expired token")
)

// Events.
var (
	ErrEventNotFound   = NewError(ErrNotFound, "Event not found")
	ErrDuplicateSlug   = NewError(ErrConflict, "Event with this title already exists")
	ErrNotEventCreator = NewError(ErrUnauthorized, "User is not authorized to manage this event")
)

// Registration and check-in.
var (
	ErrEventEnded        = NewError(ErrConflict, "Cannot register: Event has already ended")
	ErrEventFull         = NewError(ErrConflict, "Event is full")
	ErrAgeRestricted     = NewError(ErrConflict, "Cannot register: Age restriction")
	ErrAlreadyRegistered = NewError(ErrConflict, "User already registered in this event")
	ErrNotRegistered     = NewError(ErrNotFound, "User is not registered in this event")
	ErrAlreadyCheckedIn  = NewError(ErrConflict, "User already checked in for this event")
	ErrCheckInForbidden  = NewError(ErrUnauthorized, "User not authorized to check in other users for this event")
	ErrBadgeTooEarly     = NewError(ErrInvalidInput, "Cannot generate QR Code. Only generation with 1 hour or less remaining will be allowed")
)
