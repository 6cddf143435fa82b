// Canonical error types for the orchestration core.
package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// FailureCategory is the small fixed set of user-safe failure classes.
// Raw provider error text may contain credentials or internal identifiers
// and must never reach the caller verbatim; every backend failure is
// mapped onto one of these before it is surfaced.
type FailureCategory string

const (
	FailureAuthentication   FailureCategory = "authentication"
	FailureRateLimit        FailureCategory = "rate_limit"
	FailureMalformedRequest FailureCategory = "malformed_request"
	FailureUnknown          FailureCategory = "unknown"
)

// ErrorType represents the category of an API error.
type ErrorType string

const (
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
	ErrorTypeAuthentication ErrorType = "authentication"
	ErrorTypePermission     ErrorType = "permission"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeRateLimit      ErrorType = "rate_limit"
	ErrorTypeOverloaded     ErrorType = "overloaded"
	ErrorTypeServer         ErrorType = "server"
	ErrorTypeTimeout        ErrorType = "timeout"
)

// APIError represents a canonical error raised by a backend invocation
// and translated to transport-appropriate shapes at the edges.
type APIError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`

	// StatusCode is the HTTP-like status reported by the transport.
	StatusCode int `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// HTTPStatusCode returns the appropriate HTTP status code for this error.
func (e *APIError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}
	switch e.Type {
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ErrorTypePermission:
		return http.StatusForbidden
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case ErrorTypeOverloaded:
		return http.StatusServiceUnavailable
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// NewAPIError creates a new API error.
func NewAPIError(errType ErrorType, message string) *APIError {
	return &APIError{Type: errType, Message: message}
}

// WithStatusCode sets a specific HTTP status code.
func (e *APIError) WithStatusCode(code int) *APIError {
	e.StatusCode = code
	return e
}

// Categorize maps an invocation error onto a user-safe failure category.
// The raw error text is deliberately discarded.
func Categorize(err error) FailureCategory {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return FailureUnknown
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Type {
		case ErrorTypeAuthentication, ErrorTypePermission:
			return FailureAuthentication
		case ErrorTypeRateLimit, ErrorTypeOverloaded:
			return FailureRateLimit
		case ErrorTypeInvalidRequest, ErrorTypeNotFound:
			return FailureMalformedRequest
		}
	}
	return FailureUnknown
}
