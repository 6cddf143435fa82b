// Package tokens provides token counting across the backend model
// families used by the council. Counts feed the cost accumulator when a
// backend response does not report usage itself.
package tokens

import (
	"strings"

	"github.com/argume/council/internal/domain"
)

// Counter counts input tokens for a model.
type Counter interface {
	// CountInput counts the tokens of a full prompt: system text plus
	// ordered messages, including per-message formatting overhead.
	CountInput(model, system string, messages []domain.Message) (int, error)
	// CountText counts tokens for a plain string.
	CountText(model, text string) (int, error)
	// SupportsModel reports whether this counter handles the model.
	SupportsModel(model string) bool
	// Estimated reports whether counts are approximations.
	Estimated() bool
}

// Registry picks the counter for a model, falling back to a character
// estimator for families without a local tokenizer.
type Registry struct {
	counters []Counter
	fallback Counter
}

// NewRegistry creates a registry with the character estimator fallback.
func NewRegistry() *Registry {
	return &Registry{fallback: NewEstimator()}
}

// Register adds a counter. Counters are consulted in registration order.
func (r *Registry) Register(c Counter) {
	r.counters = append(r.counters, c)
}

// SetFallback replaces the fallback counter.
func (r *Registry) SetFallback(c Counter) {
	r.fallback = c
}

// CounterFor returns the counter handling the given model.
func (r *Registry) CounterFor(model string) Counter {
	for _, c := range r.counters {
		if c.SupportsModel(model) {
			return c
		}
	}
	return r.fallback
}

// CountInput counts prompt tokens with the appropriate counter.
func (r *Registry) CountInput(model, system string, messages []domain.Message) (int, error) {
	return r.CounterFor(model).CountInput(model, system, messages)
}

// CountText counts plain-text tokens with the appropriate counter.
func (r *Registry) CountText(model, text string) (int, error) {
	return r.CounterFor(model).CountText(model, text)
}

// Estimator approximates token counts from character length. It is the
// fallback for model families without a local tokenizer.
type Estimator struct {
	// CharsPerToken is the assumed average characters per token.
	CharsPerToken float64
}

// NewEstimator creates an estimator with the 4 chars/token default.
func NewEstimator() *Estimator {
	return &Estimator{CharsPerToken: 4.0}
}

func (e *Estimator) CountInput(model, system string, messages []domain.Message) (int, error) {
	totalChars := len(system)
	for _, msg := range messages {
		totalChars += len(msg.Role)
		totalChars += len(msg.Content)
		// formatting overhead per message
		totalChars += 4
	}
	return int(float64(totalChars) / e.CharsPerToken), nil
}

func (e *Estimator) CountText(model, text string) (int, error) {
	return int(float64(len(text)) / e.CharsPerToken), nil
}

func (e *Estimator) SupportsModel(model string) bool { return true }

func (e *Estimator) Estimated() bool { return true }

// ModelMatcher matches model ids against prefix and exact patterns. The
// provider qualifier of aggregator-style ids ("openai/gpt-4o") is
// stripped before matching.
type ModelMatcher struct {
	prefixes []string
	exact    []string
}

// NewModelMatcher creates a matcher over the given patterns.
func NewModelMatcher(prefixes, exact []string) *ModelMatcher {
	return &ModelMatcher{prefixes: prefixes, exact: exact}
}

// Matches returns true if the model matches any pattern.
func (m *ModelMatcher) Matches(model string) bool {
	model = StripProvider(model)
	for _, e := range m.exact {
		if model == e {
			return true
		}
	}
	for _, p := range m.prefixes {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

// StripProvider removes the aggregator provider qualifier from a model
// id: "openai/gpt-4o-mini" becomes "gpt-4o-mini".
func StripProvider(model string) string {
	if i := strings.IndexByte(model, '/'); i >= 0 {
		return model[i+1:]
	}
	return model
}
