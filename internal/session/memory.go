// Package session holds the per-user relationship memory the engine reads
// and proposes updates to. The caller owns persistence and lifetime: memory
// is passed in by value and a mutated copy is handed back per turn.
package session

import (
	"time"

	"github.com/MikeSquared-Agency/attune/internal/technique"
	"github.com/MikeSquared-Agency/attune/internal/tone"
	"github.com/MikeSquared-Agency/attune/internal/trust"
)

// maxTechniqueHistory bounds the technique ring buffer.
const maxTechniqueHistory = 10

// maxBreakthroughs bounds the recorded breakthrough timestamps.
const maxBreakthroughs = 50

// implicitNudge is the preference-weight increment for repeated balancing
// toward the same element. Implicit repetition only nudges weights; it never
// overrides an explicit preference.
const implicitNudge = 0.05

// ElementPreference records a user's balancing preference for one dominant
// element.
type ElementPreference struct {
	BalanceElement   tone.Element `json:"balance_element"`
	DisableBalancing bool         `json:"disable_balancing"`
	Weight           float64      `json:"weight"`
	Explicit         bool         `json:"explicit"`
	SetAt            time.Time    `json:"set_at"`
}

// Memory is the per-user aggregate: trust level, technique history, elemental
// preferences, and breakthrough history.
type Memory struct {
	UserID           string                             `json:"user_id"`
	TrustLevel       float64                            `json:"trust_level"`
	RecentTechniques []technique.Technique              `json:"recent_techniques"`
	Preferences      map[tone.Element]ElementPreference `json:"preferences"`
	Breakthroughs    []time.Time                        `json:"breakthroughs"`
	UpdatedAt        time.Time                          `json:"updated_at"`
}

// Fresh returns a neutral session for a user with no history. Absent or
// corrupt stored memory is treated exactly like this.
func Fresh(userID string) Memory {
	return Memory{
		UserID:      userID,
		TrustLevel:  0.3,
		Preferences: make(map[tone.Element]ElementPreference),
	}
}

// Clone returns a deep copy. The engine clones the caller's memory before
// proposing updates so the value handed in is never written through.
func (m Memory) Clone() Memory {
	out := m

	if m.Preferences != nil {
		out.Preferences = make(map[tone.Element]ElementPreference, len(m.Preferences))
		for k, v := range m.Preferences {
			out.Preferences[k] = v
		}
	}
	if m.RecentTechniques != nil {
		out.RecentTechniques = make([]technique.Technique, len(m.RecentTechniques))
		copy(out.RecentTechniques, m.RecentTechniques)
	}
	if m.Breakthroughs != nil {
		out.Breakthroughs = make([]time.Time, len(m.Breakthroughs))
		copy(out.Breakthroughs, m.Breakthroughs)
	}

	return out
}

// Normalize repairs a memory loaded from an untrusted store so the engine
// can rely on its shape: nil maps become empty, trust is clamped into [0,1].
func (m *Memory) Normalize() {
	if m.Preferences == nil {
		m.Preferences = make(map[tone.Element]ElementPreference)
	}
	if m.TrustLevel < 0 {
		m.TrustLevel = 0
	}
	if m.TrustLevel > 1 {
		m.TrustLevel = 1
	}
	if len(m.RecentTechniques) > maxTechniqueHistory {
		m.RecentTechniques = m.RecentTechniques[len(m.RecentTechniques)-maxTechniqueHistory:]
	}
}

// RecordTechnique appends to the bounded technique ring.
func (m *Memory) RecordTechnique(t technique.Technique) {
	m.RecentTechniques = append(m.RecentTechniques, t)
	if len(m.RecentTechniques) > maxTechniqueHistory {
		m.RecentTechniques = m.RecentTechniques[len(m.RecentTechniques)-maxTechniqueHistory:]
	}
}

// RecordBreakthrough stores a breakthrough timestamp and applies the
// accelerated trust growth a breakthrough earns.
func (m *Memory) RecordBreakthrough(at time.Time, profound bool) {
	m.Breakthroughs = append(m.Breakthroughs, at)
	if len(m.Breakthroughs) > maxBreakthroughs {
		m.Breakthroughs = m.Breakthroughs[len(m.Breakthroughs)-maxBreakthroughs:]
	}
	m.TrustLevel = trust.UpdateScoreWithProfound(m.TrustLevel, "breakthrough", true, profound)
}

// RecordRoutineTurn applies the small per-turn trust drift for an ordinary
// completed turn.
func (m *Memory) RecordRoutineTurn(profound bool) {
	m.TrustLevel = trust.UpdateScoreWithProfound(m.TrustLevel, "routine", true, profound)
}

// ApplyExplicitPreference records user feedback about how a dominant element
// should be balanced. Most recent explicit preference wins outright.
func (m *Memory) ApplyExplicitPreference(dominant, balance tone.Element, disable bool, at time.Time) {
	m.Preferences[dominant] = ElementPreference{
		BalanceElement:   balance,
		DisableBalancing: disable,
		Weight:           1.0,
		Explicit:         true,
		SetAt:            at,
	}
	m.TrustLevel = trust.UpdateScore(m.TrustLevel, "validated", true)
}

// NudgeImplicitPreference strengthens a balancing pairing the user keeps
// landing on without ever overriding an explicit choice.
func (m *Memory) NudgeImplicitPreference(dominant, balance tone.Element, at time.Time) {
	existing, ok := m.Preferences[dominant]
	if ok && existing.Explicit {
		return
	}
	if ok && existing.BalanceElement == balance {
		existing.Weight += implicitNudge
		if existing.Weight > 1.0 {
			existing.Weight = 1.0
		}
		existing.SetAt = at
		m.Preferences[dominant] = existing
		return
	}
	m.Preferences[dominant] = ElementPreference{
		BalanceElement: balance,
		Weight:         implicitNudge,
		SetAt:          at,
	}
}

// RecordRupture applies negative feedback: the user told us a response
// landed wrong. Hard ruptures on high-trust sessions drop a cliff.
func (m *Memory) RecordRupture(hard bool) {
	if hard {
		m.TrustLevel = trust.RuptureDrop(m.TrustLevel)
		return
	}
	m.TrustLevel = trust.UpdateScore(m.TrustLevel, "validated", false)
}

// LastTechnique returns the most recent technique, if any.
func (m *Memory) LastTechnique() (technique.Technique, bool) {
	if len(m.RecentTechniques) == 0 {
		return "", false
	}
	return m.RecentTechniques[len(m.RecentTechniques)-1], true
}
