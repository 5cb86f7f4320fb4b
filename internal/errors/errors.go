// Package errors provides a lightweight structured error type (ServerError)
// for category-based classification of facade and engine failures.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies a ServerError for programmatic handling.
type ErrorCategory string

const (
	// Caller input and precondition errors
	CategoryInvalidArgument ErrorCategory = "invalid_argument"
	CategoryAlreadyRunning  ErrorCategory = "already_running"
	CategoryNotRunning      ErrorCategory = "not_running"

	// Engine boundary errors
	CategoryUnsupported ErrorCategory = "unsupported"
	CategoryEngine      ErrorCategory = "engine"

	// Everything unexpected
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
)

// ServerError is a structured error with category and optional context.
type ServerError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for ServerError.
type ContextFields map[string]any

// Error implements the error interface.
func (e *ServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling.
func (e *ServerError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *ServerError) WithContext(key string, value any) *ServerError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new ServerError.
func New(category ErrorCategory, severity ErrorSeverity, message string) *ServerError {
	return &ServerError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new ServerError that wraps an existing error.
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *ServerError {
	return &ServerError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category.
func IsCategory(err error, category ErrorCategory) bool {
	var se *ServerError
	if errors.As(err, &se) {
		return se.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or CategoryInternal if
// the error is not a ServerError.
func GetCategory(err error) ErrorCategory {
	var se *ServerError
	if errors.As(err, &se) {
		return se.Category
	}
	return CategoryInternal
}
