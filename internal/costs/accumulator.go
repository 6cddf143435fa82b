// Package costs aggregates token usage and dollar cost per session.
// Sessions run concurrently, so the accumulator is the one shared
// mutable sink in the orchestration core besides the rotation cursor.
package costs

import (
	"sync"

	"github.com/argume/council/internal/domain"
)

// ParticipantStats is the per-participant share of a session's spend.
type ParticipantStats struct {
	ParticipantID string       `json:"participant_id"`
	Invocations   int          `json:"invocations"`
	Failures      int          `json:"failures"`
	Usage         domain.Usage `json:"usage"`
	CostUSD       float64      `json:"cost_usd"`
}

// SessionStats is the aggregate for one conversation.
type SessionStats struct {
	SessionID     string                       `json:"session_id"`
	Runs          int                          `json:"runs"`
	Usage         domain.Usage                 `json:"usage"`
	CostUSD       float64                      `json:"cost_usd"`
	ByParticipant map[string]*ParticipantStats `json:"by_participant"`
}

// Accumulator tracks spend across sessions.
type Accumulator struct {
	mu       sync.Mutex
	sessions map[string]*SessionStats
}

// New creates an empty accumulator.
func New() *Accumulator {
	return &Accumulator{sessions: make(map[string]*SessionStats)}
}

// Cost computes the dollar cost of a usage record at the participant's
// configured rate per million tokens.
func Cost(p domain.Participant, usage domain.Usage) float64 {
	total := usage.TotalTokens
	if total == 0 {
		total = usage.PromptTokens + usage.CompletionTokens
	}
	return float64(total) / 1_000_000 * p.CostPerMTok
}

// RecordRun folds one orchestration run's step results into the session.
func (a *Accumulator) RecordRun(sessionID string, results []domain.StepResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.session(sessionID)
	s.Runs++
	for _, res := range results {
		s.Usage.Add(res.Usage)
		s.CostUSD += res.CostUSD

		ps, ok := s.ByParticipant[res.ParticipantID]
		if !ok {
			ps = &ParticipantStats{ParticipantID: res.ParticipantID}
			s.ByParticipant[res.ParticipantID] = ps
		}
		ps.Invocations++
		if res.Failed {
			ps.Failures++
		}
		ps.Usage.Add(res.Usage)
		ps.CostUSD += res.CostUSD
	}
}

// Session returns a copy of the stats for one session.
func (a *Accumulator) Session(sessionID string) (SessionStats, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.sessions[sessionID]
	if !ok {
		return SessionStats{}, false
	}
	return copyStats(s), true
}

// Total returns usage and cost summed over every session.
func (a *Accumulator) Total() (domain.Usage, float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var usage domain.Usage
	var cost float64
	for _, s := range a.sessions {
		usage.Add(s.Usage)
		cost += s.CostUSD
	}
	return usage, cost
}

func (a *Accumulator) session(id string) *SessionStats {
	s, ok := a.sessions[id]
	if !ok {
		s = &SessionStats{
			SessionID:     id,
			ByParticipant: make(map[string]*ParticipantStats),
		}
		a.sessions[id] = s
	}
	return s
}

func copyStats(s *SessionStats) SessionStats {
	out := *s
	out.ByParticipant = make(map[string]*ParticipantStats, len(s.ByParticipant))
	for id, ps := range s.ByParticipant {
		c := *ps
		out.ByParticipant[id] = &c
	}
	return out
}
