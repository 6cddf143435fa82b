package registry

import (
	"strings"
	"testing"

	"github.com/argume/council/internal/config"
	"github.com/argume/council/internal/domain"
)

func defaultRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := New(config.DefaultParticipants())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return r
}

func TestNew_DefaultCatalog(t *testing.T) {
	r := defaultRegistry(t)

	if got := len(r.All()); got != 11 {
		t.Errorf("catalog size = %d, want 11", got)
	}
}

func TestByRole(t *testing.T) {
	r := defaultRegistry(t)

	tests := []struct {
		role   domain.Role
		wantID string
	}{
		{domain.RoleArchitect, "architect"},
		{domain.RoleProsecutor, "prosecutor"},
		{domain.RoleJudge, "judge"},
		{domain.RoleSynthesizer, "synthesizer"},
		{domain.RoleJester, "jester"},
	}
	for _, tt := range tests {
		p, ok := r.ByRole(tt.role)
		if !ok {
			t.Errorf("ByRole(%s) not found", tt.role)
			continue
		}
		if p.ID != tt.wantID {
			t.Errorf("ByRole(%s) = %s, want %s", tt.role, p.ID, tt.wantID)
		}
	}
}

func TestByRole_DeclarationOrderWins(t *testing.T) {
	// Two prosecutors exist in the default catalog (prosecutor and its
	// backup); the first declared one must win.
	r := defaultRegistry(t)
	p, ok := r.ByRole(domain.RoleProsecutor)
	if !ok || p.ID != "prosecutor" {
		t.Errorf("ByRole(PROSECUTOR) = %v, want prosecutor", p.ID)
	}
}

func TestByTrigger(t *testing.T) {
	r := defaultRegistry(t)

	tests := []struct {
		trigger domain.Trigger
		wantID  string
	}{
		{domain.TriggerDefault, "fast-worker"},
		{domain.TriggerPDFFile, "librarian"},
		{domain.TriggerLargeContext, "librarian"},
		{domain.TriggerAuditRequired, "prosecutor"},
		{domain.TriggerComplexCode, "architect"},
		{domain.TriggerNews, "news-anchor"},
		{domain.TriggerEthics, "judge"},
		{domain.TriggerConflict, "judge"},
		{domain.TriggerCreative, "visionary"},
		{domain.TriggerEntertainment, "jester"},
	}
	for _, tt := range tests {
		p, ok := r.ByTrigger(tt.trigger)
		if !ok {
			t.Errorf("ByTrigger(%s) not found", tt.trigger)
			continue
		}
		if p.ID != tt.wantID {
			t.Errorf("ByTrigger(%s) = %s, want %s", tt.trigger, p.ID, tt.wantID)
		}
	}
}

func TestFallback(t *testing.T) {
	r := defaultRegistry(t)

	fb, ok := r.Fallback("fast-worker")
	if !ok {
		t.Fatal("expected fallback for fast-worker")
	}
	if fb.ID != "librarian" {
		t.Errorf("fallback = %s, want librarian", fb.ID)
	}

	if _, ok := r.Fallback("architect"); ok {
		t.Error("architect should have no fallback")
	}
	if _, ok := r.Fallback("missing"); ok {
		t.Error("unknown participant should have no fallback")
	}
}

func TestNew_RejectsSelfFallback(t *testing.T) {
	_, err := New([]config.ParticipantConfig{
		{ID: "a", Role: "FAST_WORKER", FallbackID: "a"},
	})
	if err == nil || !strings.Contains(err.Error(), "falls back to itself") {
		t.Errorf("expected self-fallback error, got %v", err)
	}
}

func TestNew_RejectsUnknownFallback(t *testing.T) {
	_, err := New([]config.ParticipantConfig{
		{ID: "a", Role: "FAST_WORKER", FallbackID: "ghost"},
	})
	if err == nil || !strings.Contains(err.Error(), "unknown participant") {
		t.Errorf("expected unknown-fallback error, got %v", err)
	}
}

func TestNew_RejectsMultiHopChain(t *testing.T) {
	_, err := New([]config.ParticipantConfig{
		{ID: "a", Role: "FAST_WORKER", FallbackID: "b"},
		{ID: "b", Role: "FAST_WORKER", FallbackID: "c"},
		{ID: "c", Role: "FAST_WORKER"},
	})
	if err == nil || !strings.Contains(err.Error(), "exceeds one hop") {
		t.Errorf("expected chain-length error, got %v", err)
	}
}

func TestNew_RejectsCycle(t *testing.T) {
	// A two-node cycle is caught by the one-hop rule: each node has a
	// fallback that itself declares a fallback.
	_, err := New([]config.ParticipantConfig{
		{ID: "a", Role: "FAST_WORKER", FallbackID: "b"},
		{ID: "b", Role: "FAST_WORKER", FallbackID: "a"},
	})
	if err == nil {
		t.Error("expected cycle to be rejected")
	}
}

func TestNew_RejectsDuplicateID(t *testing.T) {
	_, err := New([]config.ParticipantConfig{
		{ID: "a", Role: "FAST_WORKER"},
		{ID: "a", Role: "LIBRARIAN"},
	})
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("expected duplicate-id error, got %v", err)
	}
}

func TestByTier(t *testing.T) {
	r := defaultRegistry(t)
	tier3 := r.ByTier(3)
	if len(tier3) != 3 {
		t.Fatalf("tier 3 count = %d, want 3", len(tier3))
	}
	// Sorted by id.
	for i := 1; i < len(tier3); i++ {
		if tier3[i-1].ID > tier3[i].ID {
			t.Errorf("ByTier not sorted: %s > %s", tier3[i-1].ID, tier3[i].ID)
		}
	}
}
