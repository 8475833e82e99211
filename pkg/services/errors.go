// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInstanceIDRequired = errors.New("instance ID is required")
	ErrSchemaRequired     = errors.New("schema is required")
	ErrSchemaInvalid      = errors.New("invalid schema")

	// Lookup Errors (404 Not Found).
	ErrSessionNotFound = errors.New("session not found")
	ErrPropertyUnknown = errors.New("unknown property")
	ErrGroupUnknown    = errors.New("unknown group")
	ErrOverrideUnknown = errors.New("property does not support external overrides")

	// Business Logic Conflicts (409 Conflict).
	ErrSessionDisposed = errors.New("session already disposed")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInstanceIDRequired) ||
		errors.Is(err, ErrSchemaRequired) ||
		errors.Is(err, ErrSchemaInvalid)
}

// IsNotFoundError checks if an error is a lookup failure that should return HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrPropertyUnknown) ||
		errors.Is(err, ErrGroupUnknown) ||
		errors.Is(err, ErrOverrideUnknown)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrSessionDisposed)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
