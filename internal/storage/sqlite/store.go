// Package sqlite is the SQLite implementation of the storage boundary.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/argume/council/internal/domain"
	"github.com/argume/council/internal/storage"
)

// Store persists conversations, turns, and run summaries in SQLite.
type Store struct {
	db *sql.DB
}

var _ storage.Store = (*Store)(nil)

// New opens (or creates) the database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL; PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			title TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS turns (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			participant_id TEXT,
			sequence_index INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL,
			FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			tier TEXT NOT NULL,
			strategy TEXT NOT NULL,
			steps INTEGER NOT NULL,
			failures INTEGER NOT NULL DEFAULT 0,
			prompt_tokens INTEGER NOT NULL DEFAULT 0,
			completion_tokens INTEGER NOT NULL DEFAULT 0,
			total_tokens INTEGER NOT NULL DEFAULT 0,
			cost_usd REAL NOT NULL DEFAULT 0,
			duration_ns INTEGER,
			created_at TIMESTAMP NOT NULL,
			FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_conversation ON turns(conversation_id, sequence_index)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_conversation ON runs(conversation_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

func (s *Store) EnsureConversation(ctx context.Context, id string) error {
	now := time.Now()
	query := `INSERT INTO conversations (id, created_at, updated_at) VALUES (?, ?, ?)
	          ON CONFLICT(id) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, query, id, now, now); err != nil {
		return fmt.Errorf("failed to ensure conversation: %w", err)
	}
	return nil
}

func (s *Store) AppendTurn(ctx context.Context, conversationID string, turn *domain.Turn) error {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	turn.CreatedAt = time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM conversations WHERE id = ?`, conversationID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check conversation: %w", err)
	}
	if exists == 0 {
		return storage.ErrNotFound
	}

	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sequence_index)+1, 0) FROM turns WHERE conversation_id = ?`,
		conversationID).Scan(&turn.SequenceIndex)
	if err != nil {
		return fmt.Errorf("failed to assign sequence index: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO turns (id, conversation_id, role, content, participant_id, sequence_index, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		turn.ID, conversationID, turn.Role, turn.Content, turn.ParticipantID, turn.SequenceIndex, turn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE conversations SET updated_at = ? WHERE id = ?`, time.Now(), conversationID)
	if err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}

	return tx.Commit()
}

func (s *Store) ListTurns(ctx context.Context, conversationID string) ([]domain.Turn, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM conversations WHERE id = ?`, conversationID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check conversation: %w", err)
	}
	if exists == 0 {
		return nil, storage.ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, content, participant_id, sequence_index, created_at
		 FROM turns WHERE conversation_id = ?
		 ORDER BY sequence_index ASC`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.Turn
	for rows.Next() {
		var t domain.Turn
		var participantID sql.NullString
		if err := rows.Scan(&t.ID, &t.Role, &t.Content, &participantID, &t.SequenceIndex, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.ParticipantID = participantID.String
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func (s *Store) RecordRun(ctx context.Context, run *storage.RunRecord) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, conversation_id, tier, strategy, steps, failures,
		   prompt_tokens, completion_tokens, total_tokens, cost_usd, duration_ns, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ConversationID, run.Tier, run.Strategy, run.Steps, run.Failures,
		run.Usage.PromptTokens, run.Usage.CompletionTokens, run.Usage.TotalTokens,
		run.CostUSD, int64(run.Duration), run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// ListRuns returns run summaries for a conversation, oldest first.
func (s *Store) ListRuns(ctx context.Context, conversationID string) ([]storage.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, tier, strategy, steps, failures,
		   prompt_tokens, completion_tokens, total_tokens, cost_usd, duration_ns, created_at
		 FROM runs WHERE conversation_id = ?
		 ORDER BY created_at ASC`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []storage.RunRecord
	for rows.Next() {
		var r storage.RunRecord
		var durationNS int64
		if err := rows.Scan(&r.ID, &r.ConversationID, &r.Tier, &r.Strategy, &r.Steps, &r.Failures,
			&r.Usage.PromptTokens, &r.Usage.CompletionTokens, &r.Usage.TotalTokens,
			&r.CostUSD, &durationNS, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Duration = time.Duration(durationNS)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		return err
	}
	return nil
}
