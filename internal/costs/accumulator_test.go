package costs

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/argume/council/internal/domain"
)

func TestCost(t *testing.T) {
	p := domain.Participant{ID: "architect", CostPerMTok: 3.0}

	got := Cost(p, domain.Usage{TotalTokens: 500_000})
	if got != 1.5 {
		t.Errorf("cost = %f, want 1.5", got)
	}
}

func TestCost_DerivesTotalWhenMissing(t *testing.T) {
	p := domain.Participant{ID: "architect", CostPerMTok: 2.0}

	got := Cost(p, domain.Usage{PromptTokens: 600_000, CompletionTokens: 400_000})
	if got != 2.0 {
		t.Errorf("cost = %f, want 2.0", got)
	}
}

func TestRecordRun_Aggregates(t *testing.T) {
	a := New()

	a.RecordRun("s1", []domain.StepResult{
		{ParticipantID: "architect", Usage: domain.Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150}, CostUSD: 0.01},
		{ParticipantID: "prosecutor", Usage: domain.Usage{PromptTokens: 200, CompletionTokens: 80, TotalTokens: 280}, CostUSD: 0.02},
	})
	a.RecordRun("s1", []domain.StepResult{
		{ParticipantID: "architect", Usage: domain.Usage{TotalTokens: 100}, CostUSD: 0.01, Failed: true, FailureKind: domain.FailureRateLimit},
	})

	s, ok := a.Session("s1")
	if !ok {
		t.Fatal("session missing")
	}
	if s.Runs != 2 {
		t.Errorf("runs = %d, want 2", s.Runs)
	}
	if s.Usage.TotalTokens != 530 {
		t.Errorf("total tokens = %d, want 530", s.Usage.TotalTokens)
	}
	if want := 0.04; math.Abs(s.CostUSD-want) > 1e-9 {
		t.Errorf("cost = %f, want %f", s.CostUSD, want)
	}

	arch := s.ByParticipant["architect"]
	if arch == nil || arch.Invocations != 2 || arch.Failures != 1 {
		t.Errorf("architect stats = %+v", arch)
	}
}

func TestSession_Unknown(t *testing.T) {
	a := New()
	if _, ok := a.Session("nope"); ok {
		t.Error("unknown session should not exist")
	}
}

func TestSession_ReturnsCopy(t *testing.T) {
	a := New()
	a.RecordRun("s1", []domain.StepResult{
		{ParticipantID: "architect", Usage: domain.Usage{TotalTokens: 10}},
	})

	s, _ := a.Session("s1")
	s.ByParticipant["architect"].Invocations = 99

	again, _ := a.Session("s1")
	if again.ByParticipant["architect"].Invocations != 1 {
		t.Error("Session leaked internal state")
	}
}

func TestTotal_AcrossSessions(t *testing.T) {
	a := New()
	a.RecordRun("s1", []domain.StepResult{{ParticipantID: "a", Usage: domain.Usage{TotalTokens: 100}, CostUSD: 0.01}})
	a.RecordRun("s2", []domain.StepResult{{ParticipantID: "b", Usage: domain.Usage{TotalTokens: 200}, CostUSD: 0.03}})

	usage, cost := a.Total()
	if usage.TotalTokens != 300 {
		t.Errorf("total tokens = %d, want 300", usage.TotalTokens)
	}
	if math.Abs(cost-0.04) > 1e-9 {
		t.Errorf("total cost = %f, want 0.04", cost)
	}
}

func TestRecordRun_Concurrent(t *testing.T) {
	a := New()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			session := fmt.Sprintf("s%d", g%2)
			for i := 0; i < 100; i++ {
				a.RecordRun(session, []domain.StepResult{
					{ParticipantID: "architect", Usage: domain.Usage{TotalTokens: 1}},
				})
			}
		}(g)
	}
	wg.Wait()

	usage, _ := a.Total()
	if usage.TotalTokens != 1000 {
		t.Errorf("total tokens = %d, want 1000", usage.TotalTokens)
	}
}
