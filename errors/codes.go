package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Registry errors
const (
	// ErrCodeDuplicateComponent indicates a component id is already registered.
	ErrCodeDuplicateComponent ErrorCode = "DUPLICATE_COMPONENT"
	// ErrCodeUnknownComponent indicates an operation referenced an unregistered component id.
	ErrCodeUnknownComponent ErrorCode = "UNKNOWN_COMPONENT"
)

// Health collection errors (retryable)
const (
	// ErrCodeProviderFailure indicates a health provider errored during a sweep.
	ErrCodeProviderFailure ErrorCode = "PROVIDER_FAILURE"
	// ErrCodeProviderTimeout indicates a health provider exceeded its collection deadline.
	ErrCodeProviderTimeout ErrorCode = "PROVIDER_TIMEOUT"
	// ErrCodeRecoveryFailed indicates a recovery attempt left the component unhealthy.
	ErrCodeRecoveryFailed ErrorCode = "RECOVERY_FAILED"
)

// Integration monitor errors
const (
	// ErrCodeNoTransactions indicates a health score was requested for an
	// integration with no recorded transactions.
	ErrCodeNoTransactions ErrorCode = "NO_TRANSACTIONS"
)

// Generic errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeProviderFailure: true,
	ErrCodeProviderTimeout: true,
	ErrCodeRecoveryFailed:  true,
	ErrCodeTimeout:         true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
