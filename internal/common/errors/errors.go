// internal/common/errors/errors.go

// Package errors provides the shared error taxonomy for the assistant.
// Every failure class degrades to a user-facing response; the taxonomy only
// decides whether a retry is worthwhile and which code is logged.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeDataServiceUnreachable ErrorCode = "DATA_SERVICE_UNREACHABLE"
	ErrCodeDataServiceStatus      ErrorCode = "DATA_SERVICE_STATUS"

	ErrCodeLLMMalformedOutput ErrorCode = "LLM_MALFORMED_OUTPUT"

	ErrCodeUnknownAgent     ErrorCode = "UNKNOWN_AGENT"
	ErrCodeInvalidPayload   ErrorCode = "INVALID_PAYLOAD"
	ErrCodeSessionNotFound  ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeMemoryStoreError ErrorCode = "MEMORY_STORE_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewDataServiceStatusError wraps a non-2xx data service reply. 5xx statuses
// are marked retryable, 4xx are not.
func NewDataServiceStatusError(status int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDataServiceStatus,
		Message:   fmt.Sprintf("data service returned status %d", status),
		Details:   body,
		Retryable: status >= 500,
		Metadata:  map[string]interface{}{"status": status},
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMMalformedOutputError signals an unparsable structured LLM reply,
// which callers recover from via the heuristic or templated fallback.
func NewLLMMalformedOutputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMMalformedOutput,
		Message:   "LLM response could not be parsed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownAgentError signals an instruction routed to an agent name that is
// not registered.
func NewUnknownAgentError(agent string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownAgent,
		Message:   fmt.Sprintf("no specialized agent registered as %q", agent),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryable reports whether err carries a retryable StandardError,
// unwrapping as needed.
func IsRetryable(err error) bool {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// CodeOf extracts the taxonomy code carried by err, or fallback when err does
// not wrap a StandardError.
func CodeOf(err error, fallback ErrorCode) ErrorCode {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return fallback
}
