package failover

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/argume/council/internal/config"
	"github.com/argume/council/internal/domain"
	"github.com/argume/council/internal/registry"
)

// scriptedBackend returns canned outcomes keyed by model id and records
// every attempted model. streamErrs fail a streaming attempt after its
// deltas have already been emitted.
type scriptedBackend struct {
	responses  map[string]string
	errs       map[string]error
	streamErrs map[string]error
	calls      []string
	delay      time.Duration
}

func (b *scriptedBackend) Name() string { return "scripted" }

func (b *scriptedBackend) Complete(ctx context.Context, req *domain.BackendRequest) (*domain.BackendResponse, error) {
	b.calls = append(b.calls, req.Model)
	if b.delay > 0 {
		select {
		case <-time.After(b.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := b.errs[req.Model]; ok {
		return nil, err
	}
	return &domain.BackendResponse{
		Content: b.responses[req.Model],
		Usage:   domain.Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
	}, nil
}

func (b *scriptedBackend) Stream(ctx context.Context, req *domain.BackendRequest) (<-chan domain.BackendEvent, error) {
	b.calls = append(b.calls, req.Model)
	if err, ok := b.errs[req.Model]; ok {
		return nil, err
	}
	ch := make(chan domain.BackendEvent, 8)
	go func() {
		defer close(ch)
		for _, word := range strings.SplitAfter(b.responses[req.Model], " ") {
			ch <- domain.BackendEvent{ContentDelta: word}
		}
		if err, ok := b.streamErrs[req.Model]; ok {
			ch <- domain.BackendEvent{Err: err}
			return
		}
		ch <- domain.BackendEvent{Usage: &domain.Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30}}
	}()
	return ch, nil
}

func newController(t *testing.T, b domain.Backend) (*Controller, *registry.Registry) {
	t.Helper()
	reg, err := registry.New(config.DefaultParticipants())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return New(reg, b, nil), reg
}

func participant(t *testing.T, reg *registry.Registry, id string) domain.Participant {
	t.Helper()
	p, ok := reg.ByID(id)
	if !ok {
		t.Fatalf("participant %s not in registry", id)
	}
	return p
}

func TestInvoke_PrimarySucceeds(t *testing.T) {
	b := &scriptedBackend{responses: map[string]string{
		"deepseek/deepseek-chat": "hızlı cevap",
	}}
	c, reg := newController(t, b)
	p := participant(t, reg, "fast-worker")

	res := c.Invoke(context.Background(), p, &domain.BackendRequest{}, 0, nil)
	if res.Failed {
		t.Fatalf("unexpected failure: %+v", res)
	}
	if res.ParticipantID != "fast-worker" || res.Attempts != 1 {
		t.Errorf("got %+v", res)
	}
	if res.Content != "hızlı cevap" {
		t.Errorf("content = %q", res.Content)
	}
	if res.Usage.CompletionTokens != 20 {
		t.Errorf("usage = %+v", res.Usage)
	}
}

func TestInvoke_OneFallbackHop(t *testing.T) {
	b := &scriptedBackend{
		errs: map[string]error{
			"deepseek/deepseek-chat": errors.New("upstream exploded"),
		},
		responses: map[string]string{
			"google/gemini-2.5-flash-preview": "yedek cevap",
		},
	}
	c, reg := newController(t, b)
	p := participant(t, reg, "fast-worker")

	res := c.Invoke(context.Background(), p, &domain.BackendRequest{}, 0, nil)
	if res.Failed {
		t.Fatalf("unexpected failure: %+v", res)
	}
	if res.ParticipantID != "librarian" || res.RequestedID != "fast-worker" {
		t.Errorf("attribution wrong: %+v", res)
	}
	if res.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", res.Attempts)
	}
	if res.Content != "yedek cevap" {
		t.Errorf("content = %q", res.Content)
	}
}

func TestInvoke_DoubleFailureYieldsMarker(t *testing.T) {
	rawErr := &domain.APIError{Type: domain.ErrorTypeRateLimit, Message: "key sk-secret-123 throttled"}
	b := &scriptedBackend{errs: map[string]error{
		"deepseek/deepseek-chat":  rawErr,
		"google/gemini-2.5-flash-preview": rawErr,
	}}
	c, reg := newController(t, b)
	p := participant(t, reg, "fast-worker")

	res := c.Invoke(context.Background(), p, &domain.BackendRequest{}, 0, nil)
	if !res.Failed {
		t.Fatal("expected failure")
	}
	if res.Content != domain.UnavailableMarker {
		t.Errorf("content = %q, want sentinel", res.Content)
	}
	if res.FailureKind != domain.FailureRateLimit {
		t.Errorf("kind = %s, want rate_limit", res.FailureKind)
	}
	if strings.Contains(res.Content, "sk-secret") {
		t.Error("raw backend error text leaked into result")
	}
}

func TestInvoke_NeverMoreThanTwoAttempts(t *testing.T) {
	fail := errors.New("down")
	b := &scriptedBackend{errs: map[string]error{
		"deepseek/deepseek-chat":  fail,
		"google/gemini-2.5-flash-preview": fail,
	}}
	c, reg := newController(t, b)
	p := participant(t, reg, "fast-worker")

	res := c.Invoke(context.Background(), p, &domain.BackendRequest{}, 0, nil)
	if len(b.calls) != 2 {
		t.Fatalf("backend called %d times, want 2", len(b.calls))
	}
	if res.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", res.Attempts)
	}
}

func TestInvoke_NoFallbackConfigured(t *testing.T) {
	b := &scriptedBackend{errs: map[string]error{
		"openai/gpt-5.2": errors.New("down"),
	}}
	c, reg := newController(t, b)
	p := participant(t, reg, "synthesizer")

	res := c.Invoke(context.Background(), p, &domain.BackendRequest{}, 0, nil)
	if !res.Failed || res.Attempts != 1 {
		t.Errorf("got %+v", res)
	}
	if len(b.calls) != 1 {
		t.Errorf("backend called %d times, want 1", len(b.calls))
	}
}

func TestInvoke_TimeoutTriggersFallback(t *testing.T) {
	b := &scriptedBackend{
		delay: 50 * time.Millisecond,
		responses: map[string]string{
			"google/gemini-2.5-flash-preview": "yedek cevap",
		},
		errs: map[string]error{},
	}
	// Only the primary is slow enough to hit the timeout.
	slow := &timeoutPrimary{inner: b}
	c, reg := newController(t, slow)
	p := participant(t, reg, "fast-worker")

	res := c.Invoke(context.Background(), p, &domain.BackendRequest{}, 10*time.Millisecond, nil)
	if res.Failed {
		t.Fatalf("fallback should have answered: %+v", res)
	}
	if res.ParticipantID != "librarian" {
		t.Errorf("answered by %s, want librarian", res.ParticipantID)
	}
}

// timeoutPrimary delays only the primary model so the per-attempt timeout
// fires once.
type timeoutPrimary struct {
	inner *scriptedBackend
}

func (b *timeoutPrimary) Name() string { return "timeout-primary" }

func (b *timeoutPrimary) Complete(ctx context.Context, req *domain.BackendRequest) (*domain.BackendResponse, error) {
	if req.Model == "deepseek/deepseek-chat" {
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return b.inner.Complete(ctx, req)
}

func (b *timeoutPrimary) Stream(ctx context.Context, req *domain.BackendRequest) (<-chan domain.BackendEvent, error) {
	return b.inner.Stream(ctx, req)
}

func TestInvoke_ParentCancellationStopsChain(t *testing.T) {
	b := &scriptedBackend{errs: map[string]error{
		"deepseek/deepseek-chat": context.Canceled,
	}}
	c, reg := newController(t, b)
	p := participant(t, reg, "fast-worker")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.Invoke(ctx, p, &domain.BackendRequest{}, 0, nil)
	if !res.Failed {
		t.Fatal("expected failure")
	}
	if len(b.calls) != 1 {
		t.Errorf("fallback attempted after run cancellation, calls = %v", b.calls)
	}
}

func TestInvoke_StreamingMatchesUnary(t *testing.T) {
	const text = "kelime kelime akan bir cevap"
	b := &scriptedBackend{responses: map[string]string{
		"deepseek/deepseek-chat": text,
	}}
	c, reg := newController(t, b)
	p := participant(t, reg, "fast-worker")

	var streamed strings.Builder
	res := c.Invoke(context.Background(), p, &domain.BackendRequest{}, 0, &Observer{
		OnDelta: func(d string) { streamed.WriteString(d) },
	})
	if res.Failed {
		t.Fatalf("unexpected failure: %+v", res)
	}
	if res.Content != text {
		t.Errorf("accumulated = %q, want %q", res.Content, text)
	}
	if streamed.String() != res.Content {
		t.Errorf("streamed %q != accumulated %q", streamed.String(), res.Content)
	}
	if res.Usage.CompletionTokens != 20 {
		t.Errorf("stream usage not captured: %+v", res.Usage)
	}
}

func TestInvoke_MidStreamFailureFallsBack(t *testing.T) {
	b := &scriptedBackend{
		responses: map[string]string{
			"deepseek/deepseek-chat":          "yarım kalan cevap",
			"google/gemini-2.5-flash-preview": "yedek cevap",
		},
		streamErrs: map[string]error{
			"deepseek/deepseek-chat": errors.New("bağlantı koptu"),
		},
	}
	c, reg := newController(t, b)
	p := participant(t, reg, "fast-worker")

	// rendered mimics a client that concatenates deltas and drops its
	// buffer on a retry signal.
	var rendered strings.Builder
	retries := 0
	res := c.Invoke(context.Background(), p, &domain.BackendRequest{}, 0, &Observer{
		OnDelta: func(d string) { rendered.WriteString(d) },
		OnRetry: func(next domain.Participant) {
			retries++
			if next.ID != "librarian" {
				t.Errorf("retry participant = %s, want librarian", next.ID)
			}
			rendered.Reset()
		},
	})
	if res.Failed {
		t.Fatalf("fallback should have answered: %+v", res)
	}
	if retries != 1 {
		t.Fatalf("retries = %d, want 1", retries)
	}
	if res.Content != "yedek cevap" {
		t.Errorf("content = %q, want fallback text only", res.Content)
	}
	if rendered.String() != res.Content {
		t.Errorf("client rendered %q, content %q: failed attempt's text survived the retry", rendered.String(), res.Content)
	}
}
