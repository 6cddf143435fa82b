// Package config loads the static configuration surface for the council
// service: server settings, storage, backend transport, the participant
// catalog, and the orchestration tuning knobs (window size, tier
// timeouts, keyword lists). Configuration is loaded once at process
// start; there is no hot-reload.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Storage StorageConfig `koanf:"storage"`
	Backend BackendConfig `koanf:"backend"`
	Council CouncilConfig `koanf:"council"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type StorageConfig struct {
	// Path is the SQLite database file. Empty selects an in-memory store.
	Path string `koanf:"path"`
}

type BackendConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
}

type CouncilConfig struct {
	// WindowSize is N: the number of verbatim turns kept in the memory
	// window before older history is summarized.
	WindowSize int `koanf:"window_size"`

	// EscalateAfterTurns raises the classified tier by one step for
	// conversations longer than this many turns. Zero disables escalation.
	EscalateAfterTurns int `koanf:"escalate_after_turns"`

	// RotationPool lists the participant IDs eligible for the Tier-1
	// round-robin seat, in rotation order.
	RotationPool []string `koanf:"rotation_pool"`

	// LargeContextBytes is the accumulated history size above which the
	// LARGE_CONTEXT trigger fires.
	LargeContextBytes int `koanf:"large_context_bytes"`

	Timeouts     TimeoutConfig       `koanf:"timeouts"`
	Keywords     KeywordConfig       `koanf:"keywords"`
	Participants []ParticipantConfig `koanf:"participants"`
}

// TimeoutConfig bounds each backend invocation, per tier.
type TimeoutConfig struct {
	Tier1 time.Duration `koanf:"tier1"`
	Tier2 time.Duration `koanf:"tier2"`
	Tier3 time.Duration `koanf:"tier3"`
}

// KeywordConfig holds the keyword lists driving tier classification.
// Lists are matched against the lower-cased, trimmed message.
type KeywordConfig struct {
	Greetings   []string `koanf:"greetings"`
	Definitions []string `koanf:"definitions"`
	HighStakes  []string `koanf:"high_stakes"`
	Comparative []string `koanf:"comparative"`
}

// ParticipantConfig describes one registry entry.
type ParticipantConfig struct {
	ID              string   `koanf:"id"`
	Name            string   `koanf:"name"`
	Role            string   `koanf:"role"`
	BackendModelID  string   `koanf:"backend_model_id"`
	Tier            int      `koanf:"tier"`
	CostPerMTok     float64  `koanf:"cost_per_mtok"`
	MaxOutputTokens int      `koanf:"max_output_tokens"`
	Temperature     float32  `koanf:"temperature"`
	Triggers        []string `koanf:"triggers"`
	FallbackID      string   `koanf:"fallback_id"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads configuration from the given YAML file (missing file is not
// an error) and overlays COUNCIL_* environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("load config file: %w", err)
			}
		}
	}

	// Environment variables override file config. COUNCIL_SERVER__PORT
	// maps to server.port.
	if err := k.Load(env.Provider("COUNCIL_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "COUNCIL_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	cfg.Backend.APIKey = substituteEnvVars(cfg.Backend.APIKey)

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Council.WindowSize == 0 {
		c.Council.WindowSize = 5
	}
	if c.Council.LargeContextBytes == 0 {
		c.Council.LargeContextBytes = 50000
	}
	if c.Council.Timeouts.Tier1 == 0 {
		c.Council.Timeouts.Tier1 = 15 * time.Second
	}
	if c.Council.Timeouts.Tier2 == 0 {
		c.Council.Timeouts.Tier2 = 30 * time.Second
	}
	if c.Council.Timeouts.Tier3 == 0 {
		c.Council.Timeouts.Tier3 = 45 * time.Second
	}
	if len(c.Council.RotationPool) == 0 {
		c.Council.RotationPool = []string{"fast-worker", "librarian", "orchestrator"}
	}
	if len(c.Council.Keywords.Greetings) == 0 {
		c.Council.Keywords.Greetings = DefaultGreetingKeywords()
	}
	if len(c.Council.Keywords.Definitions) == 0 {
		c.Council.Keywords.Definitions = DefaultDefinitionKeywords()
	}
	if len(c.Council.Keywords.HighStakes) == 0 {
		c.Council.Keywords.HighStakes = DefaultHighStakesKeywords()
	}
	if len(c.Council.Keywords.Comparative) == 0 {
		c.Council.Keywords.Comparative = DefaultComparativeKeywords()
	}
	if len(c.Council.Participants) == 0 {
		c.Council.Participants = DefaultParticipants()
	}
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// TimeoutForTier returns the invocation ceiling for a tier label.
// Tier 2.5 shares the Tier-2 budget.
func (t TimeoutConfig) TimeoutForTier(tier string) time.Duration {
	switch tier {
	case "T1":
		return t.Tier1
	case "T3":
		return t.Tier3
	default:
		return t.Tier2
	}
}
