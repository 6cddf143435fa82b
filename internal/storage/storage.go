// Package storage defines the persistence boundary of the orchestration
// core. The core only reads full turn lists to build its memory window
// and writes completed turns and run summaries; it holds no connection
// state itself.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/argume/council/internal/domain"
)

// ErrNotFound is returned when a conversation does not exist.
var ErrNotFound = errors.New("conversation not found")

// Conversation is one persisted council session.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunRecord summarizes one completed orchestration run.
type RunRecord struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversation_id"`
	Tier           string        `json:"tier"`
	Strategy       string        `json:"strategy"`
	Steps          int           `json:"steps"`
	Failures       int           `json:"failures"`
	Usage          domain.Usage  `json:"usage"`
	CostUSD        float64       `json:"cost_usd"`
	Duration       time.Duration `json:"duration_ns"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Store persists conversations, turns, and run summaries.
type Store interface {
	// EnsureConversation creates the conversation if it does not exist.
	EnsureConversation(ctx context.Context, id string) error
	// AppendTurn adds a turn to a conversation, assigning its sequence
	// index and creation time.
	AppendTurn(ctx context.Context, conversationID string, turn *domain.Turn) error
	// ListTurns returns every turn of a conversation in sequence order.
	ListTurns(ctx context.Context, conversationID string) ([]domain.Turn, error)
	// RecordRun persists a run summary.
	RecordRun(ctx context.Context, run *RunRecord) error
	// ListRuns returns a conversation's run summaries, oldest first.
	ListRuns(ctx context.Context, conversationID string) ([]RunRecord, error)
	// Close releases underlying resources.
	Close() error
}
