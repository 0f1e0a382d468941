package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Input errors
	ErrorTypeValidation ErrorType = "VALIDATION"

	// Load workflow errors
	ErrorTypeLedgerWriteFailed    ErrorType = "LEDGER_WRITE_FAILED"
	ErrorTypeSubmissionRejected   ErrorType = "SUBMISSION_REJECTED"
	ErrorTypeSchemaInvalid        ErrorType = "SCHEMA_INVALID"
	ErrorTypeInvalidTransition    ErrorType = "INVALID_TRANSITION"
	ErrorTypeConfigurationMissing ErrorType = "CONFIGURATION_MISSING"

	// Application errors
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// Constructor functions for common error types

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewLedgerWriteError creates an error for a failed job ledger write of sourceURI.
func NewLedgerWriteError(sourceURI string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeLedgerWriteFailed,
		Message: fmt.Sprintf("failed to update job status for '%s'", sourceURI),
		Details: map[string]interface{}{"s3_uri": sourceURI},
		Cause:   err,
	}
}

// NewSubmissionRejectedError creates an error for a statement the execution service refused.
func NewSubmissionRejectedError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeSubmissionRejected,
		Message: message,
		Cause:   err,
	}
}

// NewSchemaInvalidError creates an error for a schema the database rejected.
func NewSchemaInvalidError(schema, reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeSchemaInvalid,
		Message: fmt.Sprintf("schema '%s' rejected by database: %s", schema, reason),
		Details: map[string]interface{}{"schema": schema},
	}
}

// NewInvalidTransitionError creates an error for a job status change the ledger refused.
func NewInvalidTransitionError(sourceURI, status string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidTransition,
		Message: fmt.Sprintf("job '%s' cannot move to %s", sourceURI, status),
		Details: map[string]interface{}{"s3_uri": sourceURI, "job_status": status},
		Cause:   err,
	}
}

// NewConfigurationMissingError creates an error for an absent or malformed setting.
func NewConfigurationMissingError(setting string) *AppError {
	return &AppError{
		Type:    ErrorTypeConfigurationMissing,
		Message: fmt.Sprintf("configuration '%s' is missing or invalid", setting),
		Details: map[string]interface{}{"setting": setting},
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
	}
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsLedgerWriteFailed checks if an error is a ledger write failure
func IsLedgerWriteFailed(err error) bool {
	return IsType(err, ErrorTypeLedgerWriteFailed)
}

// IsSubmissionRejected checks if an error is a rejected submission
func IsSubmissionRejected(err error) bool {
	return IsType(err, ErrorTypeSubmissionRejected)
}

// IsSchemaInvalid checks if an error is a schema rejection
func IsSchemaInvalid(err error) bool {
	return IsType(err, ErrorTypeSchemaInvalid)
}

// IsInvalidTransition checks if an error is a refused status change
func IsInvalidTransition(err error) bool {
	return IsType(err, ErrorTypeInvalidTransition)
}

// IsConfigurationMissing checks if an error is a configuration error
func IsConfigurationMissing(err error) bool {
	return IsType(err, ErrorTypeConfigurationMissing)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, add context to a copy of it
	if appErr := GetAppError(err); appErr != nil {
		wrapped := *appErr
		wrapped.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		if appErr.Details != nil {
			wrapped.Details = make(map[string]interface{}, len(appErr.Details))
			for k, v := range appErr.Details {
				wrapped.Details[k] = v
			}
		}
		return &wrapped
	}

	return NewInternalError(message).WithCause(err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
