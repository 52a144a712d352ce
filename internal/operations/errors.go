package operations

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of operation error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeDependency   ErrorType = "dependency"
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeCancellation ErrorType = "cancellation"
	ErrorTypeFatal        ErrorType = "fatal"
)

// OperationError names the step a run failed in
type OperationError struct {
	Type    ErrorType      `json:"type"`
	Step    string         `json:"step,omitempty"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Context map[string]any `json:"context,omitempty"`
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e == nil {
		return "unknown operation error"
	}
	msg := fmt.Sprintf("[%s] %s", e.Type, e.Message)
	if e.Step != "" {
		msg = fmt.Sprintf("[%s] %s: %s", e.Type, e.Step, e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(step string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeValidation,
		Step:    step,
		Message: "step preconditions not met",
		Cause:   cause,
	}
}

// NewDependencyError creates a new dependency error
func NewDependencyError(step, dependsOn, message string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeDependency,
		Step:    step,
		Message: message,
		Context: map[string]any{"depends_on": dependsOn},
	}
}

// NewExecutionError creates a new execution error
func NewExecutionError(step string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeExecution,
		Step:    step,
		Message: "step execution failed",
		Cause:   cause,
	}
}

// NewCancellationError creates a new cancellation error
func NewCancellationError(step string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeCancellation,
		Step:    step,
		Message: "run was cancelled",
		Cause:   cause,
	}
}

// NewFatalError creates a new fatal error
func NewFatalError(message string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeFatal,
		Message: message,
		Cause:   cause,
	}
}

// GetErrorType returns the type of the error
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ""
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Type
	}
	return ErrorTypeExecution
}

// FailedStep returns the step a run failed in, empty when unknown
func FailedStep(err error) string {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Step
	}
	return ""
}

// WrapError wraps an error with step context. Operation errors only get the step
// filled in when missing.
func WrapError(err error, step string) error {
	if err == nil {
		return nil
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		if opErr.Step == "" {
			opErr.Step = step
		}
		return err
	}
	return NewExecutionError(step, err)
}
