package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeModel      ErrorType = "MODEL"
)

// Sentinel errors shared by the data access, analytics and inference layers
var (
	// ErrDatasetUnavailable means no tier of the primary dataset bundle could be loaded
	ErrDatasetUnavailable = errors.New("primary dataset unavailable")
	// ErrArtifactUnavailable means an optional upstream artifact is missing
	ErrArtifactUnavailable = errors.New("artifact unavailable")
	// ErrMissingColumn means a required column matched none of its aliases
	ErrMissingColumn = errors.New("missing required column")
	// ErrNoChurnColumn means the churn predictions carry no probability column
	ErrNoChurnColumn = errors.New("no churn probability column")
	// ErrInvalidArtifact means a model artifact does not satisfy its interface
	ErrInvalidArtifact = errors.New("invalid model artifact")
	// ErrUnknownTable means a requested table name is not part of the bundle
	ErrUnknownTable = errors.New("unknown table")
)

// Context keys understood by the HTTP error handler
const (
	ContextRemediation = "remediation"
	ContextAttempts    = "attempts"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string, cause error) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewModelError creates a model artifact error wrapping ErrInvalidArtifact
func NewModelError(artifact, message string) *AppError {
	return NewAppError(ErrTypeModel, fmt.Sprintf("%s: %s", artifact, message), ErrInvalidArtifact).
		WithContext("artifact", artifact)
}

// MissingColumnError reports a required column absent under every alias
func MissingColumnError(table, column string, aliases []string) *AppError {
	return NewAppError(ErrTypeParsing,
		fmt.Sprintf("table %s: column %s not found (tried %v)", table, column, aliases),
		ErrMissingColumn).
		WithContext("table", table).
		WithContext("column", column)
}
