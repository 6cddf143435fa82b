// Package memory bounds conversation history to a fixed window of
// verbatim turns, distilling everything older into one synthetic context
// entry so backend prompts stay small without losing the thread.
package memory

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/argume/council/internal/domain"
)

// DefaultWindowSize is N: the number of verbatim turns retained.
const DefaultWindowSize = 5

// Compactor derives a bounded MemoryWindow from a full turn list.
type Compactor struct {
	windowSize int
	logger     *slog.Logger
}

// New creates a compactor. A non-positive window size falls back to the
// default.
func New(windowSize int, logger *slog.Logger) *Compactor {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Compactor{windowSize: windowSize, logger: logger}
}

// Compact returns the last N turns verbatim plus a brief summary of the
// remainder. Summarization is best-effort: if it panics, the verbatim
// window is returned without a summary rather than blocking the request.
func (c *Compactor) Compact(turns []domain.Turn) domain.MemoryWindow {
	if len(turns) <= c.windowSize {
		return domain.MemoryWindow{
			Recent:     turns,
			TotalTurns: len(turns),
		}
	}

	recent := turns[len(turns)-c.windowSize:]
	older := turns[:len(turns)-c.windowSize]

	return domain.MemoryWindow{
		Recent:     recent,
		Brief:      c.safeBrief(older),
		TotalTurns: len(turns),
	}
}

func (c *Compactor) safeBrief(older []domain.Turn) (brief string) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("history summarization failed, dropping brief",
				slog.Any("panic", r),
				slog.Int("older_turns", len(older)))
			brief = ""
		}
	}()
	return generateBrief(older)
}

// topicLimit is the number of characters of each distinct user message
// kept as a topic marker in the brief.
const topicLimit = 50

func generateBrief(older []domain.Turn) string {
	if len(older) == 0 {
		return ""
	}

	var (
		userTurns      int
		assistantTurns int
		topics         []string
		seenTopics     = make(map[string]struct{})
		responseCounts = make(map[string]int)
		participants   []string
	)

	for _, turn := range older {
		switch turn.Role {
		case "user":
			userTurns++
			topic := truncate(turn.Content, topicLimit)
			if _, seen := seenTopics[topic]; !seen {
				seenTopics[topic] = struct{}{}
				topics = append(topics, topic)
			}
		case "assistant":
			assistantTurns++
			if turn.ParticipantID != "" {
				if _, seen := responseCounts[turn.ParticipantID]; !seen {
					participants = append(participants, turn.ParticipantID)
				}
				responseCounts[turn.ParticipantID]++
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[Earlier discussion, %d turns: %d user, %d assistant]\n",
		len(older), userTurns, assistantTurns)
	if len(topics) > 0 {
		fmt.Fprintf(&b, "Topics: %s\n", strings.Join(topics, " | "))
	}
	for _, id := range participants {
		fmt.Fprintf(&b, "%s: %d responses\n", id, responseCounts[id])
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// PrepareMessages renders a window into the message list sent to a
// backend: the brief (when present) as a leading system entry, then the
// verbatim turns in order.
func PrepareMessages(w domain.MemoryWindow) []domain.Message {
	var msgs []domain.Message
	if w.Brief != "" {
		msgs = append(msgs, domain.Message{
			Role:    "system",
			Content: "Earlier context of this discussion:\n" + w.Brief + "\nFocus on the recent messages below.",
		})
	}
	for _, t := range w.Recent {
		msgs = append(msgs, domain.Message{Role: t.Role, Content: t.Content})
	}
	return msgs
}
