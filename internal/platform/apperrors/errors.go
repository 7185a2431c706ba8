// Package apperrors defines the structured error taxonomy shared across the
// service. Operations never let unstructured errors cross the application
// boundary: everything user-facing is one of the types below.
package apperrors

import "fmt"

// Validation error codes for machine-readable handling at the HTTP boundary.
const (
	CodeInvalidDateRange    = "invalid_date_range"
	CodePastCheckIn         = "past_check_in"
	CodeInvertedRange       = "inverted_range"
	CodeInvalidGuestCount   = "invalid_guest_count"
	CodeGuestCountExceeded  = "guest_count_exceeds_capacity"
	CodeInvalidFields       = "invalid_fields"
	CodeInvalidTransition   = "invalid_transition"
	CodeTerminalReservation = "reservation_in_terminal_state"
)

// ValidationError indicates malformed or out-of-range input. It is locally
// correctable by the caller and never retried automatically.
type ValidationError struct {
	Code    string
	Message string
	// Fields carries independent per-field messages so a caller can highlight
	// multiple inputs at once, keyed by field name.
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given code and message.
func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// NewFieldValidationError creates a ValidationError carrying per-field messages.
func NewFieldValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{
		Code:    CodeInvalidFields,
		Message: "one or more fields are invalid",
		Fields:  fields,
	}
}

// UnavailableError indicates a date or guest conflict: the requested suite is
// not bookable for the requested parameters. The user must choose different
// parameters; the request is not retried.
type UnavailableError struct {
	Message string
}

func (e *UnavailableError) Error() string {
	return e.Message
}

// NewUnavailableError creates an UnavailableError.
func NewUnavailableError(message string) *UnavailableError {
	return &UnavailableError{Message: message}
}

// AuthorizationError indicates the actor lacks the permission or ownership
// required for an action. Surfaced as a denial, never silently downgraded.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// NewAuthorizationError creates an AuthorizationError.
func NewAuthorizationError(message string) *AuthorizationError {
	return &AuthorizationError{Message: message}
}

// ConflictError indicates a concurrent write violated a storage-level
// constraint despite passing the pre-flight check. Retrying the same request
// will fail identically, so it is surfaced rather than retried.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflictError creates a ConflictError.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// NotFoundError indicates a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given entity and identifier.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}
