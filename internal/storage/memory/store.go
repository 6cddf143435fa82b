// Package memory is an in-memory implementation of the storage
// boundary, used in tests and for running without a database file.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/argume/council/internal/domain"
	"github.com/argume/council/internal/storage"
)

// Store keeps conversations in process memory.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*conversation
}

type conversation struct {
	meta  storage.Conversation
	turns []domain.Turn
	runs  []storage.RunRecord
}

var _ storage.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{conversations: make(map[string]*conversation)}
}

func (s *Store) EnsureConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.conversations[id]; exists {
		return nil
	}
	now := time.Now()
	s.conversations[id] = &conversation{
		meta: storage.Conversation{ID: id, CreatedAt: now, UpdatedAt: now},
	}
	return nil
}

func (s *Store) AppendTurn(ctx context.Context, conversationID string, turn *domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, exists := s.conversations[conversationID]
	if !exists {
		return storage.ErrNotFound
	}

	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	turn.SequenceIndex = len(conv.turns)
	turn.CreatedAt = time.Now()
	conv.turns = append(conv.turns, *turn)
	conv.meta.UpdatedAt = turn.CreatedAt
	return nil
}

func (s *Store) ListTurns(ctx context.Context, conversationID string) ([]domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, exists := s.conversations[conversationID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	out := make([]domain.Turn, len(conv.turns))
	copy(out, conv.turns)
	return out, nil
}

func (s *Store) RecordRun(ctx context.Context, run *storage.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, exists := s.conversations[run.ConversationID]
	if !exists {
		return storage.ErrNotFound
	}

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.CreatedAt = time.Now()
	conv.runs = append(conv.runs, *run)
	return nil
}

// ListRuns returns run summaries for a conversation.
func (s *Store) ListRuns(ctx context.Context, conversationID string) ([]storage.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, exists := s.conversations[conversationID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	out := make([]storage.RunRecord, len(conv.runs))
	copy(out, conv.runs)
	return out, nil
}

func (s *Store) Close() error { return nil }
