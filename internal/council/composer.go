// Package council builds the ordered participant plan for one request.
// Plan construction is deterministic given a tier, a trigger set, and the
// rotation cursor; the cursor is the only mutable state in the
// orchestration core and is owned explicitly rather than hidden in
// package globals.
package council

import (
	"fmt"
	"sync/atomic"

	"github.com/argume/council/internal/domain"
	"github.com/argume/council/internal/registry"
)

// Rotation is the Tier-1 round-robin cursor. Requests execute
// concurrently across users, so the cursor advances atomically.
type Rotation struct {
	cursor atomic.Uint64
}

// NewRotation creates a cursor starting at the given position. Injecting
// the start value keeps plan construction deterministic in tests.
func NewRotation(start uint64) *Rotation {
	r := &Rotation{}
	r.cursor.Store(start)
	return r
}

// Next returns the next index into a pool of size n, advancing the cursor.
func (r *Rotation) Next(n int) int {
	if n <= 0 {
		return 0
	}
	return int((r.cursor.Add(1) - 1) % uint64(n))
}

// CompositionError reports a plan that cannot be built because the
// registry lacks a participant for a declared role. It is fatal for the
// run and surfaced to the caller as a structured error, never silently
// skipped.
type CompositionError struct {
	Role domain.Role
	ID   string
}

func (e *CompositionError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("council composition: participant %q not in registry", e.ID)
	}
	return fmt.Sprintf("council composition: no participant for role %s", e.Role)
}

// Composer produces council plans.
type Composer struct {
	reg      *registry.Registry
	pool     []string // Tier-1 rotation pool, participant IDs in order
	rotation *Rotation
}

// New creates a composer over the given registry and Tier-1 pool.
func New(reg *registry.Registry, pool []string, rotation *Rotation) *Composer {
	if rotation == nil {
		rotation = NewRotation(0)
	}
	return &Composer{reg: reg, pool: pool, rotation: rotation}
}

// Compose builds the plan for a tier and trigger set.
func (c *Composer) Compose(tier domain.Tier, triggers []domain.Trigger) (*domain.CouncilPlan, error) {
	var (
		plan *domain.CouncilPlan
		err  error
	)

	switch tier {
	case domain.Tier1:
		plan, err = c.composeTier1()
	case domain.Tier2, domain.Tier25:
		plan, err = c.composeDiscussion(tier)
	case domain.Tier3:
		plan, err = c.composeCouncil()
	default:
		// Classification ambiguity is never fatal.
		plan, err = c.composeDiscussion(domain.Tier2)
	}
	if err != nil {
		return nil, err
	}

	c.insertSpecialists(plan, triggers)
	return plan, nil
}

func (c *Composer) composeTier1() (*domain.CouncilPlan, error) {
	if len(c.pool) == 0 {
		return nil, &CompositionError{Role: domain.RoleFastWorker}
	}
	id := c.pool[c.rotation.Next(len(c.pool))]
	lead, ok := c.reg.ByID(id)
	if !ok {
		return nil, &CompositionError{ID: id}
	}
	return &domain.CouncilPlan{
		Tier:     domain.Tier1,
		Strategy: domain.StrategyRotation,
		Steps: []domain.Step{
			{Participant: lead, Kind: domain.StepLead, DependsOnPrior: true},
		},
	}, nil
}

func (c *Composer) composeDiscussion(tier domain.Tier) (*domain.CouncilPlan, error) {
	primary, ok := c.reg.ByRole(domain.RoleArchitect)
	if !ok {
		return nil, &CompositionError{Role: domain.RoleArchitect}
	}
	critic, ok := c.reg.ByRole(domain.RoleProsecutor)
	if !ok {
		return nil, &CompositionError{Role: domain.RoleProsecutor}
	}

	// At Tier 2 the critique is an optional aside; at Tier 2.5 the
	// antithesis is a required part of the answer.
	criticStep := domain.Step{
		Participant:    critic,
		Kind:           domain.StepCritic,
		DependsOnPrior: true,
		Aside:          tier == domain.Tier2,
	}

	return &domain.CouncilPlan{
		Tier:     tier,
		Strategy: domain.StrategyDiscussion,
		Steps: []domain.Step{
			{Participant: primary, Kind: domain.StepPrimary, DependsOnPrior: true},
			criticStep,
		},
	}, nil
}

func (c *Composer) composeCouncil() (*domain.CouncilPlan, error) {
	primary, ok := c.reg.ByRole(domain.RoleArchitect)
	if !ok {
		return nil, &CompositionError{Role: domain.RoleArchitect}
	}
	critic, ok := c.reg.ByRole(domain.RoleProsecutor)
	if !ok {
		return nil, &CompositionError{Role: domain.RoleProsecutor}
	}
	synthesis, ok := c.reg.ByRole(domain.RoleJudge)
	if !ok {
		synthesis, ok = c.reg.ByRole(domain.RoleSynthesizer)
		if !ok {
			return nil, &CompositionError{Role: domain.RoleSynthesizer}
		}
	}

	return &domain.CouncilPlan{
		Tier:     domain.Tier3,
		Strategy: domain.StrategyCouncil,
		Steps: []domain.Step{
			{Participant: primary, Kind: domain.StepPrimary, DependsOnPrior: true},
			{Participant: critic, Kind: domain.StepCritic, DependsOnPrior: true},
			{Participant: synthesis, Kind: domain.StepSynthesis, DependsOnPrior: true},
		},
	}, nil
}

// insertSpecialists adds one participant per detected trigger immediately
// after the lead step, preserving first-seen trigger order and
// deduplicating by participant id. The DEFAULT trigger never pulls in a
// specialist: the plan already covers it.
func (c *Composer) insertSpecialists(plan *domain.CouncilPlan, triggers []domain.Trigger) {
	present := make(map[string]struct{}, len(plan.Steps))
	for _, s := range plan.Steps {
		present[s.Participant.ID] = struct{}{}
	}

	var inserts []domain.Step
	for _, t := range triggers {
		if t == domain.TriggerDefault {
			continue
		}
		p, ok := c.reg.ByTrigger(t)
		if !ok {
			continue
		}
		if _, dup := present[p.ID]; dup {
			continue
		}
		present[p.ID] = struct{}{}
		inserts = append(inserts, domain.Step{
			Participant: p,
			Kind:        domain.StepSpecialist,
			// Specialists comment independently of the main chain.
			DependsOnPrior: false,
			Aside:          true,
		})
	}
	if len(inserts) == 0 {
		return
	}

	steps := make([]domain.Step, 0, len(plan.Steps)+len(inserts))
	steps = append(steps, plan.Steps[0])
	steps = append(steps, inserts...)
	steps = append(steps, plan.Steps[1:]...)
	plan.Steps = steps
}
