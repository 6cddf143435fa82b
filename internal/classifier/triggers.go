package classifier

import (
	"strings"

	"github.com/argume/council/internal/domain"
)

// triggerKeywords maps each trigger to the phrases that select it. The
// lists mix Turkish and English the way user traffic does.
var triggerKeywords = map[domain.Trigger][]string{
	domain.TriggerPDFFile:       {"pdf", "dosya", "belge"},
	domain.TriggerAuditRequired: {"denetim", "kontrol", "analiz et"},
	domain.TriggerComplexCode:   {"kod", "mimari", "tasarım"},
	domain.TriggerNews:          {"haber", "güncel", "trend"},
	domain.TriggerEthics:        {"etik", "çatışma", "uyuşmazlık"},
	domain.TriggerCreative:      {"yaratıcı", "fikir", "tasarla"},
	domain.TriggerEntertainment: {"şaka", "eğlence", "mizah"},
}

// triggerOrder fixes iteration order so detection is deterministic.
var triggerOrder = []domain.Trigger{
	domain.TriggerPDFFile,
	domain.TriggerAuditRequired,
	domain.TriggerComplexCode,
	domain.TriggerNews,
	domain.TriggerEthics,
	domain.TriggerCreative,
	domain.TriggerEntertainment,
}

// TriggerDetector extracts topic triggers from a message and its context.
type TriggerDetector struct {
	largeContextBytes int
}

// NewTriggerDetector creates a detector. contextThreshold is the
// accumulated history size, in bytes, above which LARGE_CONTEXT fires.
func NewTriggerDetector(contextThreshold int) *TriggerDetector {
	if contextThreshold <= 0 {
		contextThreshold = 50000
	}
	return &TriggerDetector{largeContextBytes: contextThreshold}
}

// Detect returns the non-empty trigger set for a message. When nothing
// matches, the set is {DEFAULT}.
func (d *TriggerDetector) Detect(message string, contextSize int) []domain.Trigger {
	var triggers []domain.Trigger

	if contextSize > d.largeContextBytes {
		triggers = append(triggers, domain.TriggerLargeContext)
	}

	msg := strings.ToLower(message)
	for _, trigger := range triggerOrder {
		for _, kw := range triggerKeywords[trigger] {
			if strings.Contains(msg, kw) {
				triggers = append(triggers, trigger)
				break
			}
		}
	}

	if len(triggers) == 0 {
		triggers = append(triggers, domain.TriggerDefault)
	}
	return triggers
}
