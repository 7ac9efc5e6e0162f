package shared

import "errors"

// ErrorKind classifies domain errors so callers can decide how to surface them.
type ErrorKind string

const (
	// KindValidation marks user-correctable input errors, rejected before any write.
	KindValidation ErrorKind = "VALIDATION"
	// KindConflict marks state machine violations; the message names who already acted.
	KindConflict ErrorKind = "CONFLICT"
	// KindInsufficiency marks strict-mode stock shortfalls that abort the whole transaction.
	KindInsufficiency ErrorKind = "INSUFFICIENCY"
	// KindIntegrity marks missing referenced entities (unknown rate, area, product).
	KindIntegrity ErrorKind = "INTEGRITY"
	// KindInternal marks unexpected errors surfaced generically to the caller.
	KindInternal ErrorKind = "INTERNAL"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Kind    ErrorKind `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new validation-kind domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindValidation}
}

// NewValidationError creates a validation error
func NewValidationError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindValidation}
}

// NewConflictError creates a conflict error for illegal state transitions
func NewConflictError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindConflict}
}

// NewInsufficiencyError creates an insufficiency error for strict-mode shortfalls
func NewInsufficiencyError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindInsufficiency}
}

// NewIntegrityError creates an integrity error for missing referenced entities
func NewIntegrityError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindIntegrity}
}

// KindOf returns the kind of err when it is (or wraps) a DomainError, and
// KindInternal otherwise
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err is, or wraps, a NOT_FOUND domain error
func IsNotFound(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == ErrNotFound.Code
	}
	return false
}

// Common domain errors
var (
	ErrNotFound          = &DomainError{Code: "NOT_FOUND", Message: "Resource not found", Kind: KindIntegrity}
	ErrAlreadyExists     = &DomainError{Code: "ALREADY_EXISTS", Message: "Resource already exists", Kind: KindConflict}
	ErrInvalidInput      = &DomainError{Code: "INVALID_INPUT", Message: "Invalid input provided", Kind: KindValidation}
	ErrInvalidState      = &DomainError{Code: "INVALID_STATE", Message: "Operation not allowed in current state", Kind: KindConflict}
	ErrInsufficientStock = &DomainError{Code: "INSUFFICIENT_STOCK", Message: "Insufficient stock available", Kind: KindInsufficiency}
	ErrMissingRate       = &DomainError{Code: "MISSING_RATE", Message: "No exchange rate registered for target currency", Kind: KindIntegrity}
)
