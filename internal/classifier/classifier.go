// Package classifier assigns a complexity tier to an incoming message and
// detects the topic triggers that pull specialists into the council.
// Keyword heuristics are inherently fuzzy and language-specific, so the
// classifier is a strategy interface that alternate implementations can
// replace without touching the execution engine.
package classifier

import (
	"strings"

	"github.com/argume/council/internal/config"
	"github.com/argume/council/internal/domain"
)

// Strategy decides the complexity tier of a message. Implementations must
// be pure: the same message always yields the same tier.
type Strategy interface {
	Classify(message string) domain.Tier
}

// Keyword is the default keyword-list strategy.
//
// Rule priority is fixed: high-stakes domain keywords are checked before
// the greeting short-circuit, so a greeting prefixed onto a critical
// question still escalates ("merhaba, boşanma hakkında ne dersin?" is
// Tier 3, not Tier 1).
type Keyword struct {
	greetings   []string
	definitions []string
	highStakes  []string
	comparative []string
}

// polar question suffixes; any of these marks an advice-seeking question.
var polarSuffixes = []string{" mı", " mi", " mu", " mü"}

// NewKeyword builds the keyword strategy from configured lists.
func NewKeyword(kw config.KeywordConfig) *Keyword {
	return &Keyword{
		greetings:   lowered(kw.Greetings),
		definitions: lowered(kw.Definitions),
		highStakes:  lowered(kw.HighStakes),
		comparative: lowered(kw.Comparative),
	}
}

func lowered(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// Classify implements Strategy.
func (k *Keyword) Classify(message string) domain.Tier {
	msg := strings.ToLower(strings.TrimSpace(message))
	if msg == "" {
		return domain.Tier1
	}

	// 1. High-stakes domains win over everything else.
	for _, kw := range k.highStakes {
		if strings.Contains(msg, kw) {
			return domain.Tier3
		}
	}

	// 2. Greetings, acknowledgements, and trivially short messages.
	for _, kw := range k.greetings {
		if msg == kw || strings.HasPrefix(msg, kw+" ") || strings.HasPrefix(msg, kw+",") {
			return domain.Tier1
		}
	}
	for _, kw := range k.definitions {
		if strings.Contains(msg, kw) {
			return domain.Tier1
		}
	}
	if wordCount(msg) <= 2 && !hasQuestionMarker(msg) {
		return domain.Tier1
	}

	// 3. Comparative or advice-seeking patterns.
	for _, kw := range k.comparative {
		if strings.Contains(msg, kw) {
			return domain.Tier25
		}
	}
	for _, suffix := range polarSuffixes {
		if strings.Contains(msg, suffix) {
			return domain.Tier25
		}
	}

	// 4. Everything else.
	return domain.Tier2
}

func wordCount(msg string) int {
	return len(strings.Fields(msg))
}

func hasQuestionMarker(msg string) bool {
	if strings.Contains(msg, "?") {
		return true
	}
	for _, suffix := range polarSuffixes {
		if strings.Contains(msg, suffix) {
			return true
		}
	}
	return false
}

// Escalate raises a tier by one step, used when a conversation has grown
// past the configured length threshold. Tier 3 is the ceiling.
func Escalate(t domain.Tier) domain.Tier {
	switch t {
	case domain.Tier1:
		return domain.Tier2
	case domain.Tier2:
		return domain.Tier25
	case domain.Tier25:
		return domain.Tier3
	default:
		return domain.Tier3
	}
}
