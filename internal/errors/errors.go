// Package errors provides standardized error types for the scheduler.
// It defines category sentinels shared across every domain package so the
// CLI can map any failure to a single human-readable message and exit code
// without each package inventing its own error shape.
package errors

import (
	"errors"
	"fmt"
)

// Standard error categories. A DomainError always wraps exactly one of these.
var (
	// ErrNotFound indicates a requested id or resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates input failed validation before any work began.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates the requested operation cannot be satisfied given
	// the current state (e.g. a station cannot be filled, no replacement exists).
	ErrConflict = errors.New("conflict")

	// ErrInternal indicates an unexpected failure not attributable to input.
	ErrInternal = errors.New("internal error")

	// ErrBadRequest indicates malformed configuration or CLI arguments.
	ErrBadRequest = errors.New("bad request")
)

// DomainError represents a categorized error with optional wrapped cause.
type DomainError struct {
	Category error
	Message  string
	Field    string
	Cause    error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Unwrap supports errors.Is/errors.As against both Cause and Category.
func (e *DomainError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return e.Category
}

// Is implements error comparison against a Category sentinel.
func (e *DomainError) Is(target error) bool {
	return target == e.Category
}

// NewNotFound creates a not-found error.
func NewNotFound(resource, identifier string) *DomainError {
	return &DomainError{Category: ErrNotFound, Message: fmt.Sprintf("%s not found: %s", resource, identifier)}
}

// NewValidation creates a validation error for a specific field.
func NewValidation(field, message string) *DomainError {
	return &DomainError{Category: ErrValidation, Message: message, Field: field}
}

// NewValidationMsg creates a validation error without a specific field.
func NewValidationMsg(message string) *DomainError {
	return &DomainError{Category: ErrValidation, Message: message}
}

// NewConflict creates a conflict error.
func NewConflict(message string) *DomainError {
	return &DomainError{Category: ErrConflict, Message: message}
}

// NewInternal creates an internal error with an underlying cause.
func NewInternal(message string, cause error) *DomainError {
	return &DomainError{Category: ErrInternal, Message: message, Cause: cause}
}

// NewBadRequest creates a bad-request error.
func NewBadRequest(message string) *DomainError {
	return &DomainError{Category: ErrBadRequest, Message: message}
}

// Wrap wraps an error with additional context while preserving its category.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return &DomainError{Category: domainErr.Category, Message: message, Cause: err}
	}

	return &DomainError{Category: ErrInternal, Message: message, Cause: err}
}

// IsNotFound reports whether err is categorized ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidation reports whether err is categorized ErrValidation.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsConflict reports whether err is categorized ErrConflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsInternal reports whether err is categorized ErrInternal.
func IsInternal(err error) bool { return errors.Is(err, ErrInternal) }

// IsBadRequest reports whether err is categorized ErrBadRequest.
func IsBadRequest(err error) bool { return errors.Is(err, ErrBadRequest) }

// GetCategory extracts the category from err, defaulting to ErrInternal.
func GetCategory(err error) error {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Category
	}
	return ErrInternal
}

// GetMessage extracts the message from err, falling back to err.Error().
func GetMessage(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
