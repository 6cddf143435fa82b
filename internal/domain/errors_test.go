package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAPIError_HTTPStatusCode(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    int
	}{
		{ErrorTypeInvalidRequest, http.StatusBadRequest},
		{ErrorTypeAuthentication, http.StatusUnauthorized},
		{ErrorTypePermission, http.StatusForbidden},
		{ErrorTypeNotFound, http.StatusNotFound},
		{ErrorTypeRateLimit, http.StatusTooManyRequests},
		{ErrorTypeOverloaded, http.StatusServiceUnavailable},
		{ErrorTypeTimeout, http.StatusGatewayTimeout},
		{ErrorTypeServer, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.errType), func(t *testing.T) {
			err := NewAPIError(tt.errType, "test")
			if got := err.HTTPStatusCode(); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAPIError_ExplicitStatusWins(t *testing.T) {
	err := NewAPIError(ErrorTypeServer, "boom").WithStatusCode(http.StatusBadGateway)
	if got := err.HTTPStatusCode(); got != http.StatusBadGateway {
		t.Errorf("HTTPStatusCode() = %d, want %d", got, http.StatusBadGateway)
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureCategory
	}{
		{"nil", nil, ""},
		{"auth", NewAPIError(ErrorTypeAuthentication, "invalid key sk-secret"), FailureAuthentication},
		{"permission", NewAPIError(ErrorTypePermission, "forbidden"), FailureAuthentication},
		{"rate limit", NewAPIError(ErrorTypeRateLimit, "slow down"), FailureRateLimit},
		{"overloaded", NewAPIError(ErrorTypeOverloaded, "overloaded"), FailureRateLimit},
		{"invalid request", NewAPIError(ErrorTypeInvalidRequest, "bad json"), FailureMalformedRequest},
		{"model not found", NewAPIError(ErrorTypeNotFound, "no such model"), FailureMalformedRequest},
		{"server", NewAPIError(ErrorTypeServer, "internal"), FailureUnknown},
		{"deadline", context.DeadlineExceeded, FailureUnknown},
		{"wrapped", fmt.Errorf("invoke: %w", NewAPIError(ErrorTypeRateLimit, "429")), FailureRateLimit},
		{"opaque", errors.New("connection reset"), FailureUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Categorize(tt.err); got != tt.want {
				t.Errorf("Categorize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCategorize_NeverLeaksRawText(t *testing.T) {
	raw := NewAPIError(ErrorTypeAuthentication, "Bearer sk-live-abc123 rejected by upstream")
	got := Categorize(raw)
	if string(got) != "authentication" {
		t.Fatalf("Categorize() = %q, want authentication", got)
	}
}
