// Package engine executes a council plan step by step: dependent steps
// run sequentially with the prior discussion threaded into each prompt,
// independent steps run concurrently, and every output is presented to
// the caller in plan order regardless of completion timing.
package engine

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/argume/council/internal/config"
	"github.com/argume/council/internal/costs"
	"github.com/argume/council/internal/domain"
	"github.com/argume/council/internal/failover"
	"github.com/argume/council/internal/interject"
	"github.com/argume/council/internal/memory"
	"github.com/argume/council/internal/tokens"
)

// maxConcurrentSteps bounds how many independent steps run at once.
const maxConcurrentSteps = 3

// EventType labels a streaming notification from a run.
type EventType string

const (
	EventStepStarted EventType = "step_started"
	EventDelta       EventType = "delta"
	// EventStepRestarted marks a mid-step fallback: the attempt that
	// produced the step's deltas so far has failed and the named
	// participant is answering in its place. Consumers must discard the
	// deltas accumulated for the step before this point.
	EventStepRestarted EventType = "step_restarted"
	EventInterjection  EventType = "interjection"
	EventStepCompleted EventType = "step_completed"
	// EventJester carries waiting-room chatter emitted outside the plan.
	EventJester EventType = "jester"
)

// Event is one streaming notification. Delta events carry incremental
// content; completed events carry the full step result.
type Event struct {
	Type            EventType            `json:"type"`
	ParticipantID   string               `json:"participant_id"`
	ParticipantName string               `json:"participant_name,omitempty"`
	Role            domain.Role          `json:"role,omitempty"`
	Kind            domain.StepKind      `json:"kind,omitempty"`
	Delta           string               `json:"delta,omitempty"`
	Interjection    *domain.Interjection `json:"interjection,omitempty"`
	Result          *domain.StepResult   `json:"result,omitempty"`
}

// Sink receives run events as they happen. A nil sink disables
// streaming; final text is identical either way.
type Sink func(Event)

// Invoker drives one backend invocation with failover.
type Invoker interface {
	Invoke(ctx context.Context, p domain.Participant, req *domain.BackendRequest, timeout time.Duration, obs *failover.Observer) failover.Result
}

// Engine executes council plans.
type Engine struct {
	invoker  Invoker
	detector interject.Detector
	counters *tokens.Registry
	timeouts config.TimeoutConfig
	logger   *slog.Logger
}

// New creates an engine.
func New(invoker Invoker, detector interject.Detector, counters *tokens.Registry, timeouts config.TimeoutConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if counters == nil {
		counters = tokens.NewRegistry()
	}
	return &Engine{
		invoker:  invoker,
		detector: detector,
		counters: counters,
		timeouts: timeouts,
		logger:   logger,
	}
}

// Execute runs every step of the plan and returns one result per step,
// in plan order. A failed or timed-out step yields the unavailable
// marker and later steps continue with whatever context remains; the
// engine itself never aborts a run once started.
func (e *Engine) Execute(ctx context.Context, plan *domain.CouncilPlan, window domain.MemoryWindow, userMessage string, sink Sink) []domain.StepResult {
	results := make([]domain.StepResult, len(plan.Steps))
	timeout := e.timeouts.TimeoutForTier(string(plan.Tier))
	history := memory.PrepareMessages(window)

	transcript := ""
	var pending []domain.Interjection

	i := 0
	for i < len(plan.Steps) {
		if ctx.Err() != nil {
			e.truncateFrom(plan, results, i)
			break
		}

		if plan.Steps[i].DependsOnPrior || i+1 >= len(plan.Steps) || plan.Steps[i+1].DependsOnPrior {
			step := plan.Steps[i]
			results[i] = e.runStep(ctx, plan.Tier, step, history, userMessage, transcript, pending, timeout, sink)
			pending = nil

			if !step.Aside && !results[i].Failed {
				transcript += "\n" + step.Participant.Name + ": " + results[i].Content
				pending = e.detect(results[i].Content, results[i].ParticipantID, &results[i], sink)
			}
			i++
			continue
		}

		// A run of consecutive independent steps executes concurrently.
		// They share the same context snapshot and never feed each other.
		end := i
		for end < len(plan.Steps) && !plan.Steps[end].DependsOnPrior {
			end++
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxConcurrentSteps)
		snapshot := transcript
		asides := pending
		pending = nil
		for j := i; j < end; j++ {
			j := j
			g.Go(func() error {
				results[j] = e.runStep(gctx, plan.Tier, plan.Steps[j], history, userMessage, snapshot, asides, timeout, sink)
				return nil
			})
		}
		_ = g.Wait()
		i = end
	}

	return results
}

func (e *Engine) runStep(ctx context.Context, tier domain.Tier, step domain.Step, history []domain.Message, userMessage, transcript string, pending []domain.Interjection, timeout time.Duration, sink Sink) domain.StepResult {
	p := step.Participant

	if sink != nil {
		sink(Event{
			Type:            EventStepStarted,
			ParticipantID:   p.ID,
			ParticipantName: p.Name,
			Role:            p.Role,
			Kind:            step.Kind,
		})
	}

	req := &domain.BackendRequest{
		Model:       p.BackendModelID,
		System:      systemFor(step.Kind, p),
		Messages:    append(append([]domain.Message{}, history...), domain.Message{Role: "user", Content: buildUserContent(userMessage, transcript, pending)}),
		MaxTokens:   OutputBudget(tier, step.Kind),
		Temperature: p.Temperature,
	}

	var obs *failover.Observer
	if sink != nil {
		obs = &failover.Observer{
			OnDelta: func(d string) {
				sink(Event{Type: EventDelta, ParticipantID: p.ID, Kind: step.Kind, Delta: d})
			},
			OnRetry: func(next domain.Participant) {
				sink(Event{
					Type:            EventStepRestarted,
					ParticipantID:   next.ID,
					ParticipantName: next.Name,
					Role:            next.Role,
					Kind:            step.Kind,
				})
			},
		}
	}

	inv := e.invoker.Invoke(ctx, p, req, timeout, obs)

	res := domain.StepResult{
		ParticipantID: inv.ParticipantID,
		RequestedID:   inv.RequestedID,
		Role:          p.Role,
		Kind:          step.Kind,
		Content:       inv.Content,
		Usage:         inv.Usage,
		Failed:        inv.Failed,
		FailureKind:   inv.FailureKind,
		Duration:      inv.Duration,
	}
	if !res.Failed {
		e.fillUsage(&res, req)
		res.CostUSD = costs.Cost(p, res.Usage)
	}

	e.logger.Info("step completed",
		slog.String("participant", res.ParticipantID),
		slog.String("kind", string(step.Kind)),
		slog.Bool("failed", res.Failed),
		slog.Duration("duration", res.Duration))

	if sink != nil {
		sink(Event{
			Type:            EventStepCompleted,
			ParticipantID:   res.ParticipantID,
			ParticipantName: p.Name,
			Role:            p.Role,
			Kind:            step.Kind,
			Result:          &res,
		})
	}
	return res
}

// fillUsage estimates token usage for backends that do not report it.
func (e *Engine) fillUsage(res *domain.StepResult, req *domain.BackendRequest) {
	if res.Usage.TotalTokens > 0 || res.Usage.PromptTokens > 0 || res.Usage.CompletionTokens > 0 {
		if res.Usage.TotalTokens == 0 {
			res.Usage.TotalTokens = res.Usage.PromptTokens + res.Usage.CompletionTokens
		}
		return
	}

	prompt, err := e.counters.CountInput(req.Model, req.System, req.Messages)
	if err != nil {
		return
	}
	completion, err := e.counters.CountText(req.Model, res.Content)
	if err != nil {
		return
	}
	res.Usage = domain.Usage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}
}

func (e *Engine) detect(content, speakerID string, res *domain.StepResult, sink Sink) []domain.Interjection {
	if e.detector == nil {
		return nil
	}
	found := e.detector.Detect(content, speakerID)
	res.Interjections = found
	if sink != nil {
		for i := range found {
			sink(Event{
				Type:            EventInterjection,
				ParticipantID:   found[i].SourceID,
				ParticipantName: found[i].SourceName,
				Interjection:    &found[i],
			})
		}
	}
	return found
}

// truncateFrom marks every step from index i on as cut off by run
// cancellation. Completed steps keep their results.
func (e *Engine) truncateFrom(plan *domain.CouncilPlan, results []domain.StepResult, from int) {
	for j := from; j < len(plan.Steps); j++ {
		p := plan.Steps[j].Participant
		results[j] = domain.StepResult{
			ParticipantID: p.ID,
			RequestedID:   p.ID,
			Role:          p.Role,
			Kind:          plan.Steps[j].Kind,
			Content:       domain.UnavailableMarker,
			Failed:        true,
			FailureKind:   domain.FailureUnknown,
			Truncated:     true,
		}
	}
	e.logger.Warn("run cancelled before completion",
		slog.Int("completed_steps", from),
		slog.Int("total_steps", len(plan.Steps)))
}
