package errors

import (
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeMissingInput ErrorType = "MISSING_INPUT"
	ErrTypeSchema       ErrorType = "SCHEMA"
	ErrTypeParsing      ErrorType = "PARSING"
	ErrTypeStorage      ErrorType = "STORAGE"
	ErrTypeValidation   ErrorType = "VALIDATION"
	ErrTypeNotFound     ErrorType = "NOT_FOUND"
	ErrTypeNetwork      ErrorType = "NETWORK"
	ErrTypeConfig       ErrorType = "CONFIG"
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

// Fatal reports whether the error must abort a run before any output is written
func (e *AppError) Fatal() bool {
	switch e.Type {
	case ErrTypeMissingInput, ErrTypeSchema, ErrTypeConfig:
		return true
	}
	return false
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

// NewMissingInputError reports an absent dataset or lookup asset
func NewMissingInputError(what, path string, cause error) *AppError {
	return NewAppError(ErrTypeMissingInput, fmt.Sprintf("%s not found", what), cause).
		WithContext("path", path)
}

// NewSchemaError reports a required column that is absent
func NewSchemaError(column, message string) *AppError {
	return NewAppError(ErrTypeSchema, message, nil).WithContext("column", column)
}

// NewRowSchemaError reports a row that breaks a record invariant
func NewRowSchemaError(row int, column, message string) *AppError {
	return NewAppError(ErrTypeSchema, fmt.Sprintf("row %d: %s", row, message), nil).
		WithContext("row", row).
		WithContext("column", column)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewNetworkError creates a network-related error
func NewNetworkError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// IsType reports whether err wraps an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}
