// Package registry holds the static participant catalog: logical council
// roles mapped to backend model identifiers, cost rates, trigger tags,
// and fallback chains. The catalog is immutable after construction and
// safe for unsynchronized concurrent reads.
package registry

import (
	"fmt"
	"sort"

	"github.com/argume/council/internal/config"
	"github.com/argume/council/internal/domain"
)

// Registry is the participant catalog.
type Registry struct {
	byID map[string]domain.Participant
	// order preserves catalog declaration order for deterministic listing
	// and lookup tie-breaking.
	order []string
}

// New builds a registry from configuration and validates it.
func New(cfgs []config.ParticipantConfig) (*Registry, error) {
	r := &Registry{byID: make(map[string]domain.Participant, len(cfgs))}

	for _, pc := range cfgs {
		if pc.ID == "" {
			return nil, fmt.Errorf("participant with empty id")
		}
		if _, dup := r.byID[pc.ID]; dup {
			return nil, fmt.Errorf("duplicate participant id %q", pc.ID)
		}
		p := domain.Participant{
			ID:              pc.ID,
			Name:            pc.Name,
			Role:            domain.Role(pc.Role),
			BackendModelID:  pc.BackendModelID,
			Tier:            pc.Tier,
			CostPerMTok:     pc.CostPerMTok,
			MaxOutputTokens: pc.MaxOutputTokens,
			Temperature:     pc.Temperature,
			FallbackID:      pc.FallbackID,
		}
		for _, t := range pc.Triggers {
			p.Triggers = append(p.Triggers, domain.Trigger(t))
		}
		r.byID[p.ID] = p
		r.order = append(r.order, p.ID)
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) validate() error {
	for id, p := range r.byID {
		if p.FallbackID == "" {
			continue
		}
		if p.FallbackID == id {
			return fmt.Errorf("participant %q falls back to itself", id)
		}
		fb, ok := r.byID[p.FallbackID]
		if !ok {
			return fmt.Errorf("participant %q falls back to unknown participant %q", id, p.FallbackID)
		}
		// Chains longer than one hop are a configuration error: the
		// failover controller only ever takes a single hop, so a second
		// link would silently never be used.
		if fb.FallbackID != "" {
			return fmt.Errorf("fallback chain %s -> %s -> %s exceeds one hop", id, fb.ID, fb.FallbackID)
		}
	}
	return nil
}

// ByID returns the participant with the given id.
func (r *Registry) ByID(id string) (domain.Participant, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// ByRole returns the first participant holding the given role, in catalog
// declaration order.
func (r *Registry) ByRole(role domain.Role) (domain.Participant, bool) {
	for _, id := range r.order {
		if p := r.byID[id]; p.Role == role {
			return p, true
		}
	}
	return domain.Participant{}, false
}

// ByTrigger returns the first participant selected by the given tag.
func (r *Registry) ByTrigger(t domain.Trigger) (domain.Participant, bool) {
	for _, id := range r.order {
		if p := r.byID[id]; p.HasTrigger(t) {
			return p, true
		}
	}
	return domain.Participant{}, false
}

// Fallback returns the configured substitute for a participant, if any.
func (r *Registry) Fallback(id string) (domain.Participant, bool) {
	p, ok := r.byID[id]
	if !ok || p.FallbackID == "" {
		return domain.Participant{}, false
	}
	fb, ok := r.byID[p.FallbackID]
	return fb, ok
}

// All returns every participant in catalog declaration order.
func (r *Registry) All() []domain.Participant {
	out := make([]domain.Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// ByTier returns all participants at the given tier, ordered by id.
func (r *Registry) ByTier(tier int) []domain.Participant {
	var out []domain.Participant
	for _, p := range r.byID {
		if p.Tier == tier {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
