package types

import "fmt"

// ErrorCode represents a unified error code across the orchestrator.
type ErrorCode string

// Pipeline error codes
const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"
	ErrInvalidTransition  ErrorCode = "INVALID_TRANSITION"
	ErrUnknownAgent       ErrorCode = "UNKNOWN_AGENT"
	ErrRateLimited        ErrorCode = "RATE_LIMITED"
	ErrComplianceBlocked  ErrorCode = "COMPLIANCE_BLOCKED"
	ErrAuditUnavailable   ErrorCode = "AUDIT_UNAVAILABLE"
	ErrTimeout            ErrorCode = "TIMEOUT"
	ErrStoreUnavailable   ErrorCode = "STORE_UNAVAILABLE"
	ErrCacheUnavailable   ErrorCode = "CACHE_UNAVAILABLE"
	ErrEmitFailed         ErrorCode = "EMIT_FAILED"
	ErrInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	ContactID string    `json:"contact_id,omitempty"`
	Retryable bool      `json:"retryable"`
	Cause     error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithContact tags the error with the contact it concerns.
func (e *Error) WithContact(contactID string) *Error {
	e.ContactID = contactID
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}
