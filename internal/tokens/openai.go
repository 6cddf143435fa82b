package tokens

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/argume/council/internal/domain"
)

// OpenAICounter provides accurate token counts for OpenAI-family models
// using tiktoken.
type OpenAICounter struct {
	matcher *ModelMatcher
	// codecCache caches tokenizer codecs by encoding name
	codecCache map[tokenizer.Encoding]tokenizer.Codec
	cacheMu    sync.RWMutex
}

// NewOpenAICounter creates a new OpenAI token counter.
func NewOpenAICounter() *OpenAICounter {
	return &OpenAICounter{
		matcher: NewModelMatcher(
			// "o" prefixes cover the o1/o3/o4 reasoning families.
			[]string{"gpt-", "o1", "o3", "o4", "text-embedding"},
			nil,
		),
		codecCache: make(map[tokenizer.Encoding]tokenizer.Codec),
	}
}

// getCodec returns the tokenizer codec for a model.
func (c *OpenAICounter) getCodec(model string) (tokenizer.Codec, error) {
	model = StripProvider(model)

	codec, err := tokenizer.ForModel(tokenizer.Model(model))
	if err == nil {
		return codec, nil
	}

	// Fall back to encoding by model family.
	encoding := modelToEncoding(model)

	c.cacheMu.RLock()
	if cached, ok := c.codecCache[encoding]; ok {
		c.cacheMu.RUnlock()
		return cached, nil
	}
	c.cacheMu.RUnlock()

	codec, err = tokenizer.Get(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get tokenizer encoding: %w", err)
	}

	c.cacheMu.Lock()
	c.codecCache[encoding] = codec
	c.cacheMu.Unlock()

	return codec, nil
}

// modelToEncoding maps model names to encodings for fallback.
//
// - O200kBase: gpt-5, gpt-4.1, gpt-4o, o1/o3/o4 and newer
// - Cl100kBase: gpt-4, gpt-3.5-turbo, text-embedding-ada-002
func modelToEncoding(model string) tokenizer.Encoding {
	model = strings.ToLower(model)

	switch {
	case strings.HasPrefix(model, "gpt-5"):
		return tokenizer.O200kBase
	case strings.HasPrefix(model, "gpt-4.1"), strings.HasPrefix(model, "gpt-41"):
		return tokenizer.O200kBase
	case strings.HasPrefix(model, "gpt-4o"):
		return tokenizer.O200kBase
	case strings.HasPrefix(model, "o1"), strings.HasPrefix(model, "o3"), strings.HasPrefix(model, "o4"):
		return tokenizer.O200kBase
	case strings.HasPrefix(model, "gpt-4"):
		return tokenizer.Cl100kBase
	case strings.HasPrefix(model, "gpt-3.5"):
		return tokenizer.Cl100kBase
	case strings.HasPrefix(model, "text-embedding"):
		return tokenizer.Cl100kBase
	default:
		// Most likely encoding for unknown/future models.
		return tokenizer.O200kBase
	}
}

// CountInput counts prompt tokens the way OpenAI chat models bill them:
// per-message overhead plus role and content tokens, plus the assistant
// priming tokens at the end.
func (c *OpenAICounter) CountInput(model, system string, messages []domain.Message) (int, error) {
	codec, err := c.getCodec(model)
	if err != nil {
		return 0, err
	}

	const (
		tokensPerMessage = 3
		tokensPerRole    = 1
	)

	total := 0
	if system != "" {
		total += tokensPerMessage + tokensPerRole
		ids, _, _ := codec.Encode(system)
		total += len(ids)
	}
	for _, msg := range messages {
		total += tokensPerMessage + tokensPerRole
		ids, _, _ := codec.Encode(msg.Content)
		total += len(ids)
	}

	// assistant priming
	total += 3

	return total, nil
}

// CountText counts tokens for a plain text string.
func (c *OpenAICounter) CountText(model, text string) (int, error) {
	codec, err := c.getCodec(model)
	if err != nil {
		return 0, err
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// SupportsModel returns true for OpenAI-family models.
func (c *OpenAICounter) SupportsModel(model string) bool {
	return c.matcher.Matches(model)
}

// Estimated returns false: tiktoken counts are exact.
func (c *OpenAICounter) Estimated() bool { return false }
