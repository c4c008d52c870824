// Package errors provides structured error handling for docshub.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Store errors (database, index)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryStore indicates database and index errors.
	CategoryStore Category = "STORE"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Store errors (200-299)
	ErrCodeNotFound          = "ERR_201_NOT_FOUND"
	ErrCodeStoreFailed       = "ERR_202_STORE_FAILED"
	ErrCodeStoreLocked       = "ERR_203_STORE_LOCKED"
	ErrCodeIndexInconsistent = "ERR_205_INDEX_INCONSISTENT"

	// Validation errors (400-499)
	ErrCodeConstraint   = "ERR_401_CONSTRAINT"
	ErrCodeInvalidInput = "ERR_402_INVALID_INPUT"
	ErrCodeQueryEmpty   = "ERR_403_QUERY_EMPTY"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryStore
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode derives severity from the error code.
// Index inconsistency is fatal for the operation that detected it;
// everything else is a plain error the caller can handle.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeIndexInconsistent:
		return SeverityFatal
	default:
		return SeverityError
	}
}
