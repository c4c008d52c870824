package errors

import (
	"errors"
	"fmt"
)

// DocsError is the structured error type for docshub.
// It provides rich context for error handling, logging, and user presentation.
type DocsError struct {
	// Code is the unique error code (e.g., "ERR_201_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Store, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *DocsError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *DocsError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with DocsError.
func (e *DocsError) Is(target error) bool {
	if t, ok := target.(*DocsError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *DocsError) WithDetail(key, value string) *DocsError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *DocsError) WithSuggestion(suggestion string) *DocsError {
	e.Suggestion = suggestion
	return e
}

// New creates a new DocsError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *DocsError {
	return &DocsError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a DocsError from an existing error.
// The error's message becomes the DocsError message.
func Wrap(code string, err error) *DocsError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConstraintError reports a duplicate or invalid identity on write.
func ConstraintError(message string, cause error) *DocsError {
	return New(ErrCodeConstraint, message, cause)
}

// NotFoundError reports a reference to a non-existent repository or document.
func NotFoundError(message string) *DocsError {
	return New(ErrCodeNotFound, message, nil)
}

// IndexConsistencyError reports a full-text index rebuild or sync failure.
func IndexConsistencyError(message string, cause error) *DocsError {
	return New(ErrCodeIndexInconsistent, message, cause)
}

// StoreError reports a database-level write or read failure.
func StoreError(message string, cause error) *DocsError {
	return New(ErrCodeStoreFailed, message, cause)
}

// ValidationError reports invalid caller input.
func ValidationError(message string, cause error) *DocsError {
	return New(ErrCodeInvalidInput, message, cause)
}

// IsNotFound reports whether err carries the not-found code.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsConstraint reports whether err carries the constraint code.
func IsConstraint(err error) bool {
	return hasCode(err, ErrCodeConstraint)
}

// IsIndexInconsistent reports whether err carries the index consistency code.
func IsIndexInconsistent(err error) bool {
	return hasCode(err, ErrCodeIndexInconsistent)
}

func hasCode(err error, code string) bool {
	var de *DocsError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// GetCode extracts the error code from a DocsError.
// Returns empty string if not a DocsError.
func GetCode(err error) string {
	var de *DocsError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
