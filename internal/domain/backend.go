package domain

import "context"

// Message is one entry of the prompt sent to a backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BackendRequest is the request shape the orchestration core hands to the
// transport collaborator. The core never speaks a wire format itself.
type BackendRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	System      string    `json:"system,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float32   `json:"temperature,omitempty"`
	Stream      bool      `json:"stream"`
}

// BackendResponse is a complete non-streaming backend result.
type BackendResponse struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

// BackendEvent is one increment of a streaming backend result.
type BackendEvent struct {
	ContentDelta string
	// Usage arrives on the final event when the backend reports it.
	Usage *Usage
	Err   error
}

// Backend is the point-to-point invocation capability the core treats as
// opaque. Implementations own transport, authentication, and wire codecs.
type Backend interface {
	Name() string

	// Complete handles unary requests.
	Complete(ctx context.Context, req *BackendRequest) (*BackendResponse, error)

	// Stream returns a channel of events. The channel MUST be closed by
	// the backend when done.
	Stream(ctx context.Context, req *BackendRequest) (<-chan BackendEvent, error)
}
