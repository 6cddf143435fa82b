package tokens

import (
	"strings"
	"testing"

	"github.com/argume/council/internal/domain"
)

func TestEstimator_CountInput(t *testing.T) {
	e := NewEstimator()

	messages := []domain.Message{
		{Role: "user", Content: strings.Repeat("a", 96)},
	}
	// 96 content + 4 role + 4 overhead = 104 chars -> 26 tokens
	n, err := e.CountInput("deepseek/deepseek-chat", "", messages)
	if err != nil {
		t.Fatal(err)
	}
	if n != 26 {
		t.Errorf("tokens = %d, want 26", n)
	}
	if !e.Estimated() {
		t.Error("estimator must report estimated counts")
	}
}

func TestEstimator_SystemCounted(t *testing.T) {
	e := NewEstimator()

	without, _ := e.CountInput("m", "", nil)
	with, _ := e.CountInput("m", strings.Repeat("s", 40), nil)
	if with-without != 10 {
		t.Errorf("system added %d tokens, want 10", with-without)
	}
}

func TestOpenAICounter_SupportsModel(t *testing.T) {
	c := NewOpenAICounter()

	tests := []struct {
		model string
		want  bool
	}{
		{"gpt-4o-mini", true},
		{"openai/gpt-4o-mini", true},
		{"openai/gpt-5.2", true},
		{"o3-mini", true},
		{"anthropic/claude-opus-4", false},
		{"deepseek/deepseek-chat", false},
		{"x-ai/grok-4-1-fast", false},
	}
	for _, tt := range tests {
		if got := c.SupportsModel(tt.model); got != tt.want {
			t.Errorf("SupportsModel(%q) = %v, want %v", tt.model, got, tt.want)
		}
	}
}

func TestOpenAICounter_CountText(t *testing.T) {
	c := NewOpenAICounter()

	n, err := c.CountText("openai/gpt-4o-mini", "hello world")
	if err != nil {
		t.Fatal(err)
	}
	if n < 1 || n > 5 {
		t.Errorf("tokens = %d, want a small positive count", n)
	}
	if c.Estimated() {
		t.Error("tiktoken counts are exact")
	}
}

func TestOpenAICounter_CountInputIncludesOverhead(t *testing.T) {
	c := NewOpenAICounter()

	messages := []domain.Message{{Role: "user", Content: "merhaba"}}
	withMsg, err := c.CountInput("openai/gpt-4o-mini", "", messages)
	if err != nil {
		t.Fatal(err)
	}
	empty, err := c.CountInput("openai/gpt-4o-mini", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if withMsg <= empty {
		t.Errorf("message added no tokens: with=%d empty=%d", withMsg, empty)
	}
	// priming only
	if empty != 3 {
		t.Errorf("empty prompt = %d tokens, want 3", empty)
	}
}

func TestRegistry_PicksCounterByModel(t *testing.T) {
	r := NewRegistry()
	r.Register(NewOpenAICounter())

	if c := r.CounterFor("openai/gpt-4o-mini"); c.Estimated() {
		t.Error("openai model should use the exact counter")
	}
	if c := r.CounterFor("anthropic/claude-opus-4"); !c.Estimated() {
		t.Error("non-openai model should fall back to the estimator")
	}
}

func TestStripProvider(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"openai/gpt-4o-mini", "gpt-4o-mini"},
		{"gpt-4o-mini", "gpt-4o-mini"},
		{"x-ai/grok-4-1-fast", "grok-4-1-fast"},
	}
	for _, tt := range tests {
		if got := StripProvider(tt.in); got != tt.want {
			t.Errorf("StripProvider(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
