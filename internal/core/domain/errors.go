package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a stable error code.
type DomainError struct {
	Code    string // Error code (e.g., "SL-CRED-4000")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches another DomainError by code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Code returns the code of the first DomainError in err's chain, or "".
func Code(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Credential errors (CRED).
var (
	// ErrCredentialMalformed indicates the bearer credential could not be decoded.
	ErrCredentialMalformed = NewDomainError("SL-CRED-4000", "malformed credential")
)

// Storage errors (STOR).
var (
	// ErrStorageFailure indicates the durable storage rejected an operation.
	ErrStorageFailure = NewDomainError("SL-STOR-5000", "storage failure")
)

// Configuration errors (CONF).
var (
	// ErrInvalidConfig indicates the client configuration failed validation.
	ErrInvalidConfig = NewDomainError("SL-CONF-4000", "invalid configuration")
)
