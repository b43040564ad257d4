package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, preserving an existing code
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode attaches a code to an error, wrapping it if necessary
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// GetCode returns the error code if it's an AppError, otherwise "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err carries the given error code, unwrapping as needed
func HasCode(err error, code string) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok {
			if appErr.Code == code {
				return true
			}
			err = appErr.Cause
			continue
		}
		return false
	}
	return false
}

// Pipeline stage error codes
const (
	CodeConfiguration  = "CONFIGURATION_ERROR"
	CodePrecondition   = "PRECONDITION_ERROR"
	CodeDiscovery      = "DISCOVERY_ERROR"
	CodeRefinement     = "REFINEMENT_ERROR"
	CodeIdentification = "IDENTIFICATION_ERROR"
	CodeEstimation     = "ESTIMATION_ERROR"
	CodeRefutation     = "REFUTATION_ERROR"
	CodeInternalError  = "INTERNAL_ERROR"
)

// Configuration reports malformed or missing required input.
func Configuration(message string) *AppError {
	return New(CodeConfiguration, message)
}

// Precondition reports a stage invoked before its required predecessor state.
func Precondition(message string) *AppError {
	return New(CodePrecondition, message)
}

// Stage wraps a backend failure with the code of the stage it occurred in.
func Stage(code string, stage string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf("%s stage failed", stage),
		Cause:   cause,
	}
}

// IsConfiguration checks for CONFIGURATION_ERROR
func IsConfiguration(err error) bool { return HasCode(err, CodeConfiguration) }

// IsPrecondition checks for PRECONDITION_ERROR
func IsPrecondition(err error) bool { return HasCode(err, CodePrecondition) }
