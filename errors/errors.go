// Package errors provides unified error handling for the monitoring core.
// It implements structured error types with error codes, HTTP status mapping,
// and retryable detection.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
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

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Domain Error Constructors ---

// DuplicateComponent creates an AppError for re-registering a live component id.
func DuplicateComponent(id string) *AppError {
	return &AppError{
		Code: ErrCodeDuplicateComponent, Message: fmt.Sprintf("Component %q is already registered.", id),
		HTTPStatus: http.StatusConflict, Retryable: false,
		Details: map[string]any{"component": id},
	}
}

// UnknownComponent creates an AppError for operating on an unregistered id.
func UnknownComponent(id string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownComponent, Message: fmt.Sprintf("Component %q is not registered.", id),
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"component": id},
	}
}

// ProviderFailure creates an AppError for a health provider that errored mid-sweep.
func ProviderFailure(id string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeProviderFailure, Message: fmt.Sprintf("Health provider for %q failed.", id),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"component": id},
		Cause:   cause,
	}
}

// ProviderTimeout creates an AppError for a health provider that blocked past its deadline.
func ProviderTimeout(id string) *AppError {
	return &AppError{
		Code: ErrCodeProviderTimeout, Message: fmt.Sprintf("Health provider for %q timed out.", id),
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"component": id},
	}
}

// RecoveryFailed creates an AppError for a recovery attempt that left the
// component unhealthy.
func RecoveryFailed(id, reason string) *AppError {
	return &AppError{
		Code: ErrCodeRecoveryFailed, Message: fmt.Sprintf("Recovery of %q failed.", id),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"component": id, "reason": reason},
	}
}

// NoTransactions creates an AppError for a score request against an empty
// transaction history.
func NoTransactions(integration string) *AppError {
	return &AppError{
		Code: ErrCodeNoTransactions, Message: fmt.Sprintf("Integration %q has no recorded transactions; health score is undefined.", integration),
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
		Details: map[string]any{"integration": integration},
	}
}

// NotFound creates an AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// InvalidInput creates an AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates an AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// Timeout creates an AppError for an operation that timed out.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The operation took too long.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// Internal creates an AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An internal error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Cause: cause,
	}
}
