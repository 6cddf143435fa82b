package domain

import "time"

// Role identifies the logical seat a participant occupies in the council.
type Role string

const (
	RoleOrchestrator Role = "ORCHESTRATOR"
	RoleFastWorker   Role = "FAST_WORKER"
	RoleLibrarian    Role = "LIBRARIAN"
	RoleArchitect    Role = "ARCHITECT"
	RoleProsecutor   Role = "PROSECUTOR"
	RoleNewsAnchor   Role = "NEWS_ANCHOR"
	RoleJudge        Role = "JUDGE"
	RoleVisionary    Role = "VISIONARY"
	RoleSynthesizer  Role = "SYNTHESIZER"
	RoleJester       Role = "JESTER"
)

// Tier is the complexity classification of a request. It determines how
// many participants engage and in what pattern.
type Tier string

const (
	// Tier1 answers with a single participant picked by rotation.
	Tier1 Tier = "T1"
	// Tier2 produces one elaborated response with an optional critique aside.
	Tier2 Tier = "T2"
	// Tier25 requires both a thesis and an antithesis.
	Tier25 Tier = "T2.5"
	// Tier3 runs the full thesis/antithesis/synthesis council.
	Tier3 Tier = "T3"
)

// Trigger is a topic tag detected from message text or context size.
type Trigger string

const (
	TriggerDefault       Trigger = "DEFAULT"
	TriggerPDFFile       Trigger = "PDF_FILE"
	TriggerLargeContext  Trigger = "LARGE_CONTEXT"
	TriggerAuditRequired Trigger = "AUDIT_REQUIRED"
	TriggerComplexCode   Trigger = "COMPLEX_CODE"
	TriggerNews          Trigger = "NEWS"
	TriggerConflict      Trigger = "CONFLICT"
	TriggerEthics        Trigger = "ETHICS"
	TriggerCreative      Trigger = "CREATIVE"
	TriggerEntertainment Trigger = "ENTERTAINMENT"
)

// Participant is a logical role bound to one backend model identifier.
// Participants are immutable configuration; they are defined at process
// start and never mutated at runtime.
type Participant struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Role            Role      `json:"role"`
	BackendModelID  string    `json:"backend_model_id"`
	Tier            int       `json:"tier"`
	CostPerMTok     float64   `json:"cost_per_mtok"`
	MaxOutputTokens int       `json:"max_output_tokens"`
	Temperature     float32   `json:"temperature"`
	Triggers        []Trigger `json:"triggers,omitempty"`
	// FallbackID names the participant substituted when this one fails.
	// At most one hop is ever taken at runtime.
	FallbackID string `json:"fallback_id,omitempty"`
}

// HasTrigger reports whether the participant is selected by the given tag.
func (p Participant) HasTrigger(t Trigger) bool {
	for _, pt := range p.Triggers {
		if pt == t {
			return true
		}
	}
	return false
}

// Turn is one message in a conversation. Turns are immutable once created;
// a conversation is an ordered, append-only sequence of turns.
type Turn struct {
	ID            string    `json:"id"`
	Role          string    `json:"role"` // "user" or "assistant"
	Content       string    `json:"content"`
	ParticipantID string    `json:"participant_id,omitempty"`
	SequenceIndex int       `json:"sequence_index"`
	CreatedAt     time.Time `json:"created_at"`
}

// MemoryWindow is the bounded verbatim-plus-summary view of conversation
// history passed to backends. It is derived, never stored.
type MemoryWindow struct {
	// Recent holds the last N turns verbatim.
	Recent []Turn `json:"recent"`
	// Brief distills all turns older than the window. Empty iff the
	// conversation fits inside the window.
	Brief      string `json:"brief,omitempty"`
	TotalTurns int    `json:"total_turns"`
}

// StepKind distinguishes the structural position of a plan entry.
type StepKind string

const (
	// StepLead is the single Tier-1 rotation seat.
	StepLead StepKind = "lead"
	// StepPrimary delivers the thesis.
	StepPrimary StepKind = "primary"
	// StepCritic delivers the antithesis.
	StepCritic StepKind = "critic"
	// StepSynthesis reconciles primary and critic.
	StepSynthesis StepKind = "synthesis"
	// StepSpecialist is a trigger-driven insertion with no dependency on
	// prior steps.
	StepSpecialist StepKind = "specialist"
)

// Step is one entry of a CouncilPlan.
type Step struct {
	Participant Participant `json:"participant"`
	Kind        StepKind    `json:"kind"`
	// DependsOnPrior forces sequential execution after the preceding step.
	// Steps without a dependency may run concurrently, but their outputs
	// are still presented in plan order.
	DependsOnPrior bool `json:"depends_on_prior"`
	// Aside marks a step whose output is supplementary commentary; its
	// failure never degrades the run below tier guarantees.
	Aside bool `json:"aside,omitempty"`
}

// Strategy names the execution pattern of a plan.
type Strategy string

const (
	StrategyRotation   Strategy = "ROTATION"
	StrategyDiscussion Strategy = "DISCUSSION"
	StrategyCouncil    Strategy = "COUNCIL"
)

// CouncilPlan is the ordered set of participants invoked for one request.
// It is built once per request and not mutated during execution.
type CouncilPlan struct {
	Tier     Tier     `json:"tier"`
	Strategy Strategy `json:"strategy"`
	Steps    []Step   `json:"steps"`
}

// InterjectionType classifies a side-comment.
type InterjectionType string

const (
	InterjectionWarning  InterjectionType = "WARNING"
	InterjectionInfo     InterjectionType = "INFO"
	InterjectionInsight  InterjectionType = "INSIGHT"
	InterjectionConflict InterjectionType = "CONFLICT"
)

// Interjection is a short aside from a participant other than the one
// currently speaking. It is consumed as context by the next primary step
// and then discarded; it is never persisted as a Turn.
type Interjection struct {
	Type       InterjectionType `json:"type"`
	SourceID   string           `json:"source_id"`
	SourceName string           `json:"source_name"`
	Content    string           `json:"content"`
}

// Usage reports token consumption for one invocation.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates another usage record.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// StepResult is the outcome of executing one plan step.
type StepResult struct {
	// ParticipantID is the participant that actually produced the content,
	// which differs from RequestedID after a failover substitution.
	ParticipantID string          `json:"participant_id"`
	RequestedID   string          `json:"requested_id"`
	Role          Role            `json:"role"`
	Kind          StepKind        `json:"kind"`
	Content       string          `json:"content"`
	Interjections []Interjection  `json:"interjections,omitempty"`
	Usage         Usage           `json:"usage"`
	CostUSD       float64         `json:"cost_usd"`
	Failed        bool            `json:"failed,omitempty"`
	FailureKind   FailureCategory `json:"failure_kind,omitempty"`
	Truncated     bool            `json:"truncated,omitempty"`
	Duration      time.Duration   `json:"duration_ns"`
}

// UnavailableMarker is the sentinel content substituted when both the
// primary participant and its fallback fail. Later plan steps continue
// with this degraded context rather than aborting the run.
const UnavailableMarker = "[participant unavailable]"
