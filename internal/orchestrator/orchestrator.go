// Package orchestrator runs the full council pipeline for one user
// message: load history, compact it into a memory window, classify the
// tier, detect triggers, compose the plan, execute it, and persist the
// outcome. The orchestrator owns the conversation lifecycle; every
// collaborator below it is stateless with respect to conversations.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/argume/council/internal/classifier"
	"github.com/argume/council/internal/costs"
	"github.com/argume/council/internal/council"
	"github.com/argume/council/internal/domain"
	"github.com/argume/council/internal/engine"
	"github.com/argume/council/internal/jester"
	"github.com/argume/council/internal/memory"
	"github.com/argume/council/internal/storage"
)

var tracer = otel.Tracer("orchestrator")

// Request is one council invocation.
type Request struct {
	// ConversationID selects the conversation to continue. Empty starts
	// a new conversation with a generated ID.
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
}

// Result is the complete outcome of a run, in plan order.
type Result struct {
	ConversationID string              `json:"conversation_id"`
	Tier           domain.Tier         `json:"tier"`
	Strategy       domain.Strategy     `json:"strategy"`
	Triggers       []domain.Trigger    `json:"triggers"`
	Jester         jester.Analysis     `json:"jester"`
	Steps          []domain.StepResult `json:"steps"`
	// FinalContent is the last successful non-aside step's output, the
	// single answer a plain client renders.
	FinalContent string        `json:"final_content"`
	Usage        domain.Usage  `json:"usage"`
	CostUSD      float64       `json:"cost_usd"`
	Duration     time.Duration `json:"duration_ns"`
}

// Service coordinates one council run end to end.
type Service struct {
	store         storage.Store
	compactor     *memory.Compactor
	classifier    classifier.Strategy
	triggers      *classifier.TriggerDetector
	composer      *council.Composer
	engine        *engine.Engine
	costs         *costs.Accumulator
	jester        *jester.Jester
	escalateAfter int
	logger        *slog.Logger
}

// New creates a service. All collaborators are required except the
// jester and logger.
func New(store storage.Store, compactor *memory.Compactor, cls classifier.Strategy, triggers *classifier.TriggerDetector, composer *council.Composer, eng *engine.Engine, acc *costs.Accumulator, jst *jester.Jester, escalateAfter int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if jst == nil {
		jst = jester.New()
	}
	return &Service{
		store:         store,
		compactor:     compactor,
		classifier:    cls,
		triggers:      triggers,
		composer:      composer,
		engine:        eng,
		costs:         acc,
		jester:        jst,
		escalateAfter: escalateAfter,
		logger:        logger,
	}
}

// Run executes the council for one message. Events stream to sink as
// they happen; the returned result carries the same content in plan
// order. Step failures degrade the result but do not fail the run; an
// error return means the run never started or history could not be
// persisted.
func (s *Service) Run(ctx context.Context, req Request, sink engine.Sink) (*Result, error) {
	if req.Message == "" {
		return nil, errors.New("message must not be empty")
	}

	ctx, span := tracer.Start(ctx, "council.run")
	defer span.End()

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	if err := s.store.EnsureConversation(ctx, conversationID); err != nil {
		return nil, fmt.Errorf("failed to ensure conversation: %w", err)
	}
	turns, err := s.store.ListTurns(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	window := s.compactor.Compact(turns)
	tier := s.classifier.Classify(req.Message)
	if s.escalateAfter > 0 && len(turns) > s.escalateAfter {
		if escalated := classifier.Escalate(tier); escalated != tier {
			s.logger.Info("escalating tier for long conversation",
				slog.String("conversation_id", conversationID),
				slog.String("from", string(tier)),
				slog.String("to", string(escalated)),
				slog.Int("turns", len(turns)))
			tier = escalated
		}
	}

	triggers := s.triggers.Detect(req.Message, historySize(turns))
	analysis := s.jester.Analyze(req.Message)
	if sink != nil {
		sink(engine.Event{
			Type:            engine.EventJester,
			ParticipantID:   "jester",
			ParticipantName: "Jester",
			Role:            domain.RoleJester,
			Delta:           analysis.FirstReaction,
		})
	}

	plan, err := s.composer.Compose(tier, triggers)
	if err != nil {
		return nil, fmt.Errorf("failed to compose council: %w", err)
	}

	span.SetAttributes(
		attribute.String("conversation_id", conversationID),
		attribute.String("tier", string(plan.Tier)),
		attribute.String("strategy", string(plan.Strategy)),
	)
	s.logger.Info("running council",
		slog.String("conversation_id", conversationID),
		slog.String("tier", string(plan.Tier)),
		slog.String("strategy", string(plan.Strategy)),
		slog.Int("steps", len(plan.Steps)))

	start := time.Now()
	results := s.engine.Execute(ctx, plan, window, req.Message, sink)
	elapsed := time.Since(start)

	res := &Result{
		ConversationID: conversationID,
		Tier:           plan.Tier,
		Strategy:       plan.Strategy,
		Triggers:       triggers,
		Jester:         analysis,
		Steps:          results,
		Duration:       elapsed,
	}
	res.FinalContent, res.Usage, res.CostUSD = fold(plan, results)

	if err := s.persist(ctx, conversationID, req.Message, plan, res, elapsed); err != nil {
		return nil, err
	}
	s.costs.RecordRun(conversationID, results)
	return res, nil
}

// persist appends the user turn and the final answer, then records the
// run summary. The answer turn is attributed to the participant that
// produced the final content.
func (s *Service) persist(ctx context.Context, conversationID, message string, plan *domain.CouncilPlan, res *Result, elapsed time.Duration) error {
	userTurn := &domain.Turn{Role: "user", Content: message}
	if err := s.store.AppendTurn(ctx, conversationID, userTurn); err != nil {
		return fmt.Errorf("failed to append user turn: %w", err)
	}

	// A fully failed run leaves no assistant turn; the marker is
	// presentation only and never enters history.
	if res.FinalContent != "" && res.FinalContent != domain.UnavailableMarker {
		assistantTurn := &domain.Turn{
			Role:          "assistant",
			Content:       res.FinalContent,
			ParticipantID: finalParticipant(plan, res.Steps),
		}
		if err := s.store.AppendTurn(ctx, conversationID, assistantTurn); err != nil {
			return fmt.Errorf("failed to append assistant turn: %w", err)
		}
	}

	failures := 0
	for _, r := range res.Steps {
		if r.Failed {
			failures++
		}
	}
	run := &storage.RunRecord{
		ConversationID: conversationID,
		Tier:           string(plan.Tier),
		Strategy:       string(plan.Strategy),
		Steps:          len(res.Steps),
		Failures:       failures,
		Usage:          res.Usage,
		CostUSD:        res.CostUSD,
		Duration:       elapsed,
	}
	if err := s.store.RecordRun(ctx, run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// fold extracts the final answer and totals from step results. The
// final answer comes from the last answering step (not an aside, not a
// specialist insertion) that succeeded; when every answering step
// failed, the unavailable marker stands in.
func fold(plan *domain.CouncilPlan, results []domain.StepResult) (string, domain.Usage, float64) {
	var usage domain.Usage
	var cost float64
	final := ""
	for i, r := range results {
		usage.Add(r.Usage)
		cost += r.CostUSD
		if answering(plan.Steps[i], r) {
			final = r.Content
		}
	}
	if final == "" {
		final = domain.UnavailableMarker
	}
	return final, usage, cost
}

func finalParticipant(plan *domain.CouncilPlan, results []domain.StepResult) string {
	id := ""
	for i, r := range results {
		if answering(plan.Steps[i], r) {
			id = r.ParticipantID
		}
	}
	return id
}

func answering(step domain.Step, r domain.StepResult) bool {
	if step.Aside || step.Kind == domain.StepSpecialist {
		return false
	}
	return !r.Failed && !r.Truncated && r.Content != ""
}

func historySize(turns []domain.Turn) int {
	size := 0
	for _, t := range turns {
		size += len(t.Content)
	}
	return size
}
