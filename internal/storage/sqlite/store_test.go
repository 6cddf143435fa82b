package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/argume/council/internal/domain"
	"github.com/argume/council/internal/storage"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "council.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndListTurns(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.EnsureConversation(ctx, "c1"); err != nil {
		t.Fatal(err)
	}

	turns := []domain.Turn{
		{Role: "user", Content: "merhaba"},
		{Role: "assistant", Content: "selam", ParticipantID: "fast-worker"},
		{Role: "user", Content: "nasılsın"},
	}
	for i := range turns {
		if err := s.AppendTurn(ctx, "c1", &turns[i]); err != nil {
			t.Fatalf("AppendTurn %d: %v", i, err)
		}
	}

	got, err := s.ListTurns(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("turns = %d, want 3", len(got))
	}
	for i, turn := range got {
		if turn.SequenceIndex != i {
			t.Errorf("turn %d sequence = %d", i, turn.SequenceIndex)
		}
	}
	if got[1].ParticipantID != "fast-worker" {
		t.Errorf("participant = %q", got[1].ParticipantID)
	}
	if got[0].ID == "" {
		t.Error("turn id not assigned")
	}
}

func TestEnsureConversation_Idempotent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.EnsureConversation(ctx, "c1"); err != nil {
		t.Fatal(err)
	}
	if err := s.EnsureConversation(ctx, "c1"); err != nil {
		t.Errorf("second ensure failed: %v", err)
	}
}

func TestAppendTurn_UnknownConversation(t *testing.T) {
	s := newStore(t)

	err := s.AppendTurn(context.Background(), "ghost", &domain.Turn{Role: "user", Content: "x"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := s.ListTurns(context.Background(), "ghost"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("list err = %v, want ErrNotFound", err)
	}
}

func TestRecordAndListRuns(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.EnsureConversation(ctx, "c1"); err != nil {
		t.Fatal(err)
	}

	run := &storage.RunRecord{
		ConversationID: "c1",
		Tier:           "T3",
		Strategy:       "COUNCIL",
		Steps:          3,
		Failures:       1,
		Usage:          domain.Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
		CostUSD:        0.05,
		Duration:       2 * time.Second,
	}
	if err := s.RecordRun(ctx, run); err != nil {
		t.Fatal(err)
	}

	runs, err := s.ListRuns(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	got := runs[0]
	if got.Tier != "T3" || got.Steps != 3 || got.Failures != 1 {
		t.Errorf("run = %+v", got)
	}
	if got.Usage.TotalTokens != 150 || got.CostUSD != 0.05 {
		t.Errorf("run accounting = %+v", got)
	}
	if got.Duration != 2*time.Second {
		t.Errorf("duration = %s", got.Duration)
	}
}

func TestListTurns_EmptyConversation(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.EnsureConversation(ctx, "c1"); err != nil {
		t.Fatal(err)
	}
	turns, err := s.ListTurns(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 0 {
		t.Errorf("turns = %v, want none", turns)
	}
}
