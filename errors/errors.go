package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type raised by pipelines and operators.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an *AppError with the same code, so that
// stderrors.Is(err, errors.SequenceClosed()) works.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Constructors ---

// ArgumentOutOfRange creates an error for an index outside the sequence.
func ArgumentOutOfRange(param string, value any) *AppError {
	return &AppError{
		Code:    ErrCodeArgumentOutOfRange,
		Message: fmt.Sprintf("%s is out of range: %v", param, value),
		Details: map[string]any{"param": param, "value": value},
	}
}

// ArgumentNull creates an error for an operation that found an empty source.
func ArgumentNull(param string) *AppError {
	return &AppError{
		Code:    ErrCodeArgumentNull,
		Message: fmt.Sprintf("%s is empty", param),
		Details: map[string]any{"param": param},
	}
}

// InvalidArgument creates an error for an argument an operator cannot use.
func InvalidArgument(param, reason string) *AppError {
	details := make(map[string]any)
	if param != "" {
		details["param"] = param
	}
	return &AppError{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf("invalid argument: %s", reason),
		Details: details,
	}
}

// InvalidOperation creates an error for an operation the sequence contents do not allow.
func InvalidOperation(reason string) *AppError {
	return &AppError{Code: ErrCodeInvalidOperation, Message: reason}
}

// SequenceClosed creates an error for a pipeline used after consumption.
func SequenceClosed() *AppError {
	return &AppError{
		Code:    ErrCodeSequenceClosed,
		Message: "sequence already consumed",
	}
}

// Internal creates an error for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "an unexpected error occurred",
		Cause:   cause,
	}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
