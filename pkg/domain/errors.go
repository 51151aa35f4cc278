package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError. Kinds are stable and are what callers branch on.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindForbidden    ErrorKind = "forbidden"
	KindConflict     ErrorKind = "conflict"
	KindInvalidState ErrorKind = "invalid_state"
	KindSelfBooking  ErrorKind = "self_booking"
)

// Error codes carried in API responses.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeInvalidInterval  = "INVALID_INTERVAL"
	CodeItemUnavailable  = "ITEM_UNAVAILABLE"
	CodeNotFound         = "NOT_FOUND"
	CodeAccessDenied     = "ACCESS_DENIED"
	CodeConflict         = "CONFLICT"
	CodeOverlapConflict  = "OVERLAP_CONFLICT"
	CodeAlreadyProcessed = "ALREADY_PROCESSED"
	CodeSelfBooking      = "SELF_BOOKING"
)

// DomainError is the single error type returned by domain and application code.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError of the same kind and code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Code == "" || e.Code == t.Code)
}

// NewValidationError creates an error for malformed input.
func NewValidationError(message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: CodeValidation, Message: message}
}

// NewValidationErrorWithCode creates a validation error with a specific reason code.
func NewValidationErrorWithCode(code, message string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: code, Message: message}
}

// NewNotFoundError creates an error for a missing entity.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{
		Kind:    KindNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %s not found", entity, id),
	}
}

// NewForbiddenError creates an error for an actor lacking permission.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Kind: KindForbidden, Code: CodeAccessDenied, Message: message}
}

// NewConflictError creates an error for a write that conflicts with committed state.
func NewConflictError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: CodeConflict, Message: message}
}

// NewOverlapError creates a conflict error for an interval clashing with an approved booking.
func NewOverlapError(message string) *DomainError {
	return &DomainError{Kind: KindConflict, Code: CodeOverlapConflict, Message: message}
}

// NewInvalidStateError creates an error for a transition out of a state that does not allow it.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{
		Kind:    KindInvalidState,
		Code:    CodeAlreadyProcessed,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewSelfBookingError creates an error for an owner trying to book their own item.
func NewSelfBookingError(message string) *DomainError {
	return &DomainError{Kind: KindSelfBooking, Code: CodeSelfBooking, Message: message}
}

// KindOf returns the kind of err, or the empty kind if err is not a DomainError.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err wraps a DomainError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// CodeOf returns the reason code of err, or the empty string.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
