package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure the engine reports wraps exactly one of these.
var (
	ErrNotFound            = errors.New("not found")
	ErrCapacityExceeded    = errors.New("capacity exceeded")
	ErrSchedulingConflict  = errors.New("scheduling conflict")
	ErrResourceUnavailable = errors.New("resource unavailable")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrValidation          = errors.New("validation error")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrDuplicateName       = errors.New("duplicate name")
)

// Lookup failures
var (
	ErrEventNotFound    = NewError(ErrNotFound, "Event not found")
	ErrVenueNotFound    = NewError(ErrNotFound, "Venue not found")
	ErrResourceNotFound = NewError(ErrNotFound, "Resource not found")
)

// EngineError pairs an error kind with a message fit for the end user
// (the colliding event title, the short resource name, and so on).
type EngineError struct {
	Kind    error
	Message string
}

func (e *EngineError) Error() string {
	return e.Message
}

func (e *EngineError) Unwrap() error {
	return e.Kind
}

// NewError builds an EngineError of the given kind
func NewError(kind error, format string, args ...interface{}) error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &EngineError{Kind: kind, Message: msg}
}

// Validationf is shorthand for a ValidationError
func Validationf(format string, args ...interface{}) error {
	return NewError(ErrValidation, format, args...)
}

// UserMessage returns the user-facing message carried by err, falling back
// to the kind's text.
func UserMessage(err error) string {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Message
	}
	return err.Error()
}

// WithPrefix returns a copy of an EngineError with its message prefixed.
// Other errors are returned unchanged.
func WithPrefix(err error, prefix string) error {
	var ee *EngineError
	if !errors.As(err, &ee) {
		return err
	}
	return &EngineError{Kind: ee.Kind, Message: prefix + ee.Message}
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConflictError reports failures caused by the physical schedule or stock:
// capacity, overlap and resource shortage.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrSchedulingConflict) ||
		errors.Is(err, ErrResourceUnavailable)
}

// IsTransitionError checks if the error is an invalid transition error
func IsTransitionError(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}
