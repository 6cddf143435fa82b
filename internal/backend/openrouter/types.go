// Package openrouter provides the HTTP client for the OpenRouter
// aggregator API, which fronts every backend model the council uses.
package openrouter

import (
	"encoding/json"
	"strings"

	"github.com/argume/council/internal/domain"
)

// ChatCompletionRequest is an OpenAI-compatible chat completion request.
type ChatCompletionRequest struct {
	Model         string                  `json:"model"`
	Messages      []ChatCompletionMessage `json:"messages"`
	MaxTokens     int                     `json:"max_tokens,omitempty"`
	Temperature   *float32                `json:"temperature,omitempty"`
	Stream        bool                    `json:"stream,omitempty"`
	StreamOptions *StreamOptions          `json:"stream_options,omitempty"`
}

// StreamOptions configures streaming behavior.
type StreamOptions struct {
	IncludeUsage bool `json:"include_usage,omitempty"`
}

// ChatCompletionMessage is a message in the request or response.
type ChatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`
}

// ChatCompletionResponse is a unary completion response.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage,omitempty"`
}

// Choice is one completion choice.
type Choice struct {
	Index        int                   `json:"index"`
	Message      ChatCompletionMessage `json:"message"`
	FinishReason string                `json:"finish_reason"`
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionChunk is one streaming chunk.
type ChatCompletionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
	Usage   *Usage        `json:"usage,omitempty"`
}

// ChunkChoice is a choice within a streaming chunk.
type ChunkChoice struct {
	Index        int    `json:"index"`
	Delta        Delta  `json:"delta"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// Delta carries incremental content.
type Delta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// APIError is the error payload returned by the API.
type APIError struct {
	Code    any    `json:"code,omitempty"`
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

// ErrorResponse wraps an API error.
type ErrorResponse struct {
	Error *APIError `json:"error,omitempty"`
}

// ToCanonical converts the API error to a canonical domain error.
func (e *APIError) ToCanonical(statusCode int) *domain.APIError {
	return &domain.APIError{
		Type:       mapErrorType(e.Type, e.Message, statusCode),
		Message:    e.Message,
		StatusCode: statusCode,
	}
}

func mapErrorType(errType, message string, statusCode int) domain.ErrorType {
	switch errType {
	case "invalid_request_error":
		return domain.ErrorTypeInvalidRequest
	case "authentication_error":
		return domain.ErrorTypeAuthentication
	case "rate_limit_error":
		return domain.ErrorTypeRateLimit
	}

	switch statusCode {
	case 400:
		return domain.ErrorTypeInvalidRequest
	case 401:
		return domain.ErrorTypeAuthentication
	case 403:
		return domain.ErrorTypePermission
	case 404:
		return domain.ErrorTypeNotFound
	case 429:
		return domain.ErrorTypeRateLimit
	case 502, 503:
		return domain.ErrorTypeOverloaded
	case 504:
		return domain.ErrorTypeTimeout
	}

	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "rate limit"):
		return domain.ErrorTypeRateLimit
	case strings.Contains(lower, "api key"), strings.Contains(lower, "unauthorized"):
		return domain.ErrorTypeAuthentication
	default:
		return domain.ErrorTypeServer
	}
}

// ParseErrorResponse attempts to parse an error payload from JSON.
func ParseErrorResponse(data []byte) (*APIError, error) {
	var errResp ErrorResponse
	if err := json.Unmarshal(data, &errResp); err != nil {
		return nil, err
	}
	if errResp.Error == nil {
		return nil, nil
	}
	return errResp.Error, nil
}
