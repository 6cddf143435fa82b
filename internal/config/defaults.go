package config

// Default participant catalog. Backend model identifiers follow the
// OpenRouter naming scheme the transport collaborator understands.
func DefaultParticipants() []ParticipantConfig {
	return []ParticipantConfig{
		{
			ID:              "orchestrator",
			Name:            "GPT-4o Mini",
			Role:            "ORCHESTRATOR",
			BackendModelID:  "openai/gpt-4o-mini",
			Tier:            1,
			CostPerMTok:     0.15,
			MaxOutputTokens: 4096,
			Temperature:     0.7,
		},
		{
			ID:              "fast-worker",
			Name:            "DeepSeek Chat",
			Role:            "FAST_WORKER",
			BackendModelID:  "deepseek/deepseek-chat",
			Tier:            1,
			CostPerMTok:     0.14,
			MaxOutputTokens: 4096,
			Temperature:     0.7,
			Triggers:        []string{"DEFAULT"},
			FallbackID:      "librarian",
		},
		{
			ID:              "librarian",
			Name:            "Gemini 2.5 Flash",
			Role:            "LIBRARIAN",
			BackendModelID:  "google/gemini-2.5-flash-preview",
			Tier:            1,
			CostPerMTok:     0.075,
			MaxOutputTokens: 8192,
			Temperature:     0.7,
			Triggers:        []string{"PDF_FILE", "LARGE_CONTEXT"},
		},
		{
			ID:              "prosecutor",
			Name:            "DeepSeek Reasoner",
			Role:            "PROSECUTOR",
			BackendModelID:  "deepseek/deepseek-reasoner",
			Tier:            2,
			CostPerMTok:     0.55,
			MaxOutputTokens: 8192,
			Temperature:     0.5,
			Triggers:        []string{"AUDIT_REQUIRED"},
			FallbackID:      "backup-audit",
		},
		{
			ID:              "architect",
			Name:            "Claude Sonnet 4.5",
			Role:            "ARCHITECT",
			BackendModelID:  "anthropic/claude-sonnet-4",
			Tier:            2,
			CostPerMTok:     3.0,
			MaxOutputTokens: 4096,
			Temperature:     0.7,
			Triggers:        []string{"COMPLEX_CODE"},
		},
		{
			ID:              "news-anchor",
			Name:            "Grok 4.1 Fast",
			Role:            "NEWS_ANCHOR",
			BackendModelID:  "x-ai/grok-4-1-fast",
			Tier:            2,
			CostPerMTok:     2.0,
			MaxOutputTokens: 4096,
			Temperature:     0.8,
			Triggers:        []string{"NEWS"},
		},
		{
			ID:              "visionary",
			Name:            "Gemini 3 Pro",
			Role:            "VISIONARY",
			BackendModelID:  "google/gemini-3-pro",
			Tier:            3,
			CostPerMTok:     15.0,
			MaxOutputTokens: 8192,
			Temperature:     0.9,
			Triggers:        []string{"CREATIVE"},
		},
		{
			ID:              "judge",
			Name:            "Claude Opus 4.5",
			Role:            "JUDGE",
			BackendModelID:  "anthropic/claude-opus-4",
			Tier:            3,
			CostPerMTok:     15.0,
			MaxOutputTokens: 4096,
			Temperature:     0.5,
			Triggers:        []string{"CONFLICT", "ETHICS"},
		},
		{
			ID:              "synthesizer",
			Name:            "GPT-5.2",
			Role:            "SYNTHESIZER",
			BackendModelID:  "openai/gpt-5.2",
			Tier:            3,
			CostPerMTok:     15.0,
			MaxOutputTokens: 4096,
			Temperature:     0.7,
		},
		{
			ID:              "jester",
			Name:            "Grok 4 Heavy",
			Role:            "JESTER",
			BackendModelID:  "x-ai/grok-4-heavy",
			Tier:            2,
			CostPerMTok:     5.0,
			MaxOutputTokens: 4096,
			Temperature:     1.0,
			Triggers:        []string{"ENTERTAINMENT"},
		},
		{
			ID:              "backup-audit",
			Name:            "Claude Haiku 4.5",
			Role:            "PROSECUTOR",
			BackendModelID:  "anthropic/claude-haiku-4",
			Tier:            1,
			CostPerMTok:     0.8,
			MaxOutputTokens: 2048,
			Temperature:     0.5,
		},
	}
}

// Greeting and short-acknowledgement patterns that short-circuit to
// Tier 1 when no higher-tier keyword is present.
func DefaultGreetingKeywords() []string {
	return []string{
		"merhaba", "selam", "hey", "hi", "hello",
		"teşekkür", "teşekkürler", "sağol", "thanks",
		"günaydın", "iyi akşamlar", "iyi geceler",
	}
}

// Simple definition questions also resolve to Tier 1.
func DefaultDefinitionKeywords() []string {
	return []string{"nedir", "ne demek", "nasıl yapılır", "nasıl açılır"}
}

// High-stakes domains (financial, medical, legal, relationship-critical)
// always escalate to Tier 3.
func DefaultHighStakesKeywords() []string {
	return []string{
		"yatırım", "para", "maaş", "bütçe", "fiyat",
		"sağlık", "hastalık", "ağrı", "ilaç", "doktor",
		"kariyer", "istifa", "terfi", "iş değişikliği",
		"hukuk", "dava", "avukat", "sözleşme",
		"boşanma", "ayrılık", "evlilik",
		"almalı mıyım", "yapmalı mıyım", "etmeli miyim",
	}
}

// Comparative and advice-seeking patterns select Tier 2.5.
func DefaultComparativeKeywords() []string {
	return []string{
		"hangisi", "hangi",
		"önerir misin", "tavsiye", "ne dersin",
		"en iyi", "best", "ideal",
		"tercih", "seçmeliyim",
		"avantaj", "dezavantaj",
		"karşılaştır", "vs", "versus", "fark",
	}
}
