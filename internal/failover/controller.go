// Package failover wraps backend invocation with a single bounded hop to
// a participant's configured fallback. The hop count is structural: the
// candidate list is built up front and never grows, so no chain of
// fallback configs can produce more than two attempts for one step.
package failover

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/argume/council/internal/domain"
	"github.com/argume/council/internal/registry"
)

var tracer = otel.Tracer("failover")

// Result is the outcome of invoking one plan step, after any fallback.
type Result struct {
	// ParticipantID is the participant that actually produced the
	// content, which differs from RequestedID after a fallback hop.
	ParticipantID string
	RequestedID   string
	Content       string
	Usage         domain.Usage
	Attempts      int
	Failed        bool
	FailureKind   domain.FailureCategory
	Duration      time.Duration
}

// Observer receives streaming callbacks during an invocation. A nil
// observer selects unary mode.
type Observer struct {
	// OnDelta receives each content increment as it arrives.
	OnDelta func(delta string)
	// OnRetry fires when an attempt has failed and the fallback is about
	// to answer in its place. Deltas delivered before the call belong to
	// the failed attempt and must be discarded by the consumer; the
	// accumulated Content never includes them.
	OnRetry func(next domain.Participant)
}

func (o *Observer) delta(d string) {
	if o != nil && o.OnDelta != nil {
		o.OnDelta(d)
	}
}

func (o *Observer) retry(next domain.Participant) {
	if o != nil && o.OnRetry != nil {
		o.OnRetry(next)
	}
}

func (o *Observer) streaming() bool {
	return o != nil && o.OnDelta != nil
}

// Controller drives backend calls with bounded failover.
type Controller struct {
	reg     *registry.Registry
	backend domain.Backend
	logger  *slog.Logger
}

// New creates a controller over the given registry and backend.
func New(reg *registry.Registry, backend domain.Backend, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{reg: reg, backend: backend, logger: logger}
}

// Invoke executes the step for participant p. Each attempt runs under its
// own timeout; on error or timeout the controller makes exactly one hop
// to p's configured fallback. When both attempts fail the result carries
// the unavailable marker and a sanitized failure category, never the raw
// backend error text.
//
// When obs carries an OnDelta callback the backend is invoked in
// streaming mode and each content delta is forwarded as it arrives. An
// attempt can fail mid-stream after deltas have already been delivered;
// obs.OnRetry marks the boundary so consumers drop the partial text
// before the fallback's deltas begin. The returned Content is always the
// accumulated text of the successful attempt alone, so streaming and
// unary invocation yield identical final text.
func (c *Controller) Invoke(ctx context.Context, p domain.Participant, req *domain.BackendRequest, timeout time.Duration, obs *Observer) Result {
	candidates := []domain.Participant{p}
	if fb, ok := c.reg.Fallback(p.ID); ok {
		candidates = append(candidates, fb)
	}

	start := time.Now()
	var lastKind domain.FailureCategory

	for i, cand := range candidates {
		if i > 0 {
			obs.retry(cand)
		}

		attempt := *req
		attempt.Model = cand.BackendModelID
		if attempt.MaxTokens == 0 && cand.MaxOutputTokens > 0 {
			attempt.MaxTokens = cand.MaxOutputTokens
		}
		if cand.Temperature > 0 {
			attempt.Temperature = cand.Temperature
		}

		content, usage, err := c.attempt(ctx, &attempt, timeout, obs)
		if err == nil {
			if i > 0 {
				c.logger.Info("fallback answered",
					slog.String("participant", p.ID),
					slog.String("fallback", cand.ID))
			}
			return Result{
				ParticipantID: cand.ID,
				RequestedID:   p.ID,
				Content:       content,
				Usage:         usage,
				Attempts:      i + 1,
				Duration:      time.Since(start),
			}
		}

		lastKind = domain.Categorize(err)
		c.logger.Warn("backend invocation failed",
			slog.String("participant", cand.ID),
			slog.String("model", cand.BackendModelID),
			slog.String("category", string(lastKind)),
			slog.Int("attempt", i+1))

		// The run itself was cancelled; a fallback hop would fail the
		// same way.
		if ctx.Err() != nil {
			break
		}
	}

	return Result{
		ParticipantID: p.ID,
		RequestedID:   p.ID,
		Content:       domain.UnavailableMarker,
		Attempts:      len(candidates),
		Failed:        true,
		FailureKind:   lastKind,
		Duration:      time.Since(start),
	}
}

func (c *Controller) attempt(ctx context.Context, req *domain.BackendRequest, timeout time.Duration, obs *Observer) (string, domain.Usage, error) {
	ctx, span := tracer.Start(ctx, "backend.invoke")
	span.SetAttributes(
		attribute.String("model", req.Model),
		attribute.Bool("stream", obs.streaming()),
	)
	defer span.End()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if !obs.streaming() {
		req.Stream = false
		resp, err := c.backend.Complete(ctx, req)
		if err != nil {
			return "", domain.Usage{}, err
		}
		return resp.Content, resp.Usage, nil
	}

	req.Stream = true
	events, err := c.backend.Stream(ctx, req)
	if err != nil {
		return "", domain.Usage{}, err
	}

	var (
		buf   strings.Builder
		usage domain.Usage
	)
	for ev := range events {
		if ev.Err != nil {
			return "", domain.Usage{}, ev.Err
		}
		if ev.ContentDelta != "" {
			buf.WriteString(ev.ContentDelta)
			obs.delta(ev.ContentDelta)
		}
		if ev.Usage != nil {
			usage = *ev.Usage
		}
	}
	return buf.String(), usage, nil
}
