package session

import (
	"math"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/attune/internal/technique"
	"github.com/MikeSquared-Agency/attune/internal/tone"
)

func TestFresh(t *testing.T) {
	m := Fresh("user-1")
	if m.UserID != "user-1" {
		t.Errorf("user id = %q", m.UserID)
	}
	if m.TrustLevel != 0.3 {
		t.Errorf("fresh trust = %f, want 0.3", m.TrustLevel)
	}
	if m.Preferences == nil {
		t.Error("preferences map should be initialized")
	}
}

func TestClone_DeepCopies(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := Fresh("user-1")
	m.ApplyExplicitPreference(tone.Fire, tone.Water, false, at)
	m.RecordTechnique(technique.Mirror)
	m.RecordBreakthrough(at, false)

	c := m.Clone()
	c.NudgeImplicitPreference(tone.Air, tone.Earth, at)
	c.RecordTechnique(technique.Validate)
	c.RecordBreakthrough(at.Add(time.Hour), false)
	c.Preferences[tone.Fire] = ElementPreference{BalanceElement: tone.Earth, Explicit: true}

	if len(m.Preferences) != 1 {
		t.Errorf("original preferences = %d entries, want 1", len(m.Preferences))
	}
	if m.Preferences[tone.Fire].BalanceElement != tone.Water {
		t.Errorf("original fire preference = %s, want water", m.Preferences[tone.Fire].BalanceElement)
	}
	if len(m.RecentTechniques) != 1 {
		t.Errorf("original technique history = %d entries, want 1", len(m.RecentTechniques))
	}
	if len(m.Breakthroughs) != 1 {
		t.Errorf("original breakthroughs = %d entries, want 1", len(m.Breakthroughs))
	}
}

func TestClone_NilCollections(t *testing.T) {
	var m Memory
	c := m.Clone()
	if c.Preferences != nil || c.RecentTechniques != nil || c.Breakthroughs != nil {
		t.Error("clone of a zero memory should stay zero")
	}
}

func TestNormalize(t *testing.T) {
	m := Memory{TrustLevel: 1.7}
	m.Normalize()
	if m.TrustLevel != 1.0 {
		t.Errorf("trust = %f, want clamped to 1.0", m.TrustLevel)
	}
	if m.Preferences == nil {
		t.Error("nil preferences should be repaired")
	}

	m = Memory{TrustLevel: -0.2}
	m.Normalize()
	if m.TrustLevel != 0.0 {
		t.Errorf("trust = %f, want clamped to 0.0", m.TrustLevel)
	}
}

func TestRecordTechnique_Bounded(t *testing.T) {
	m := Fresh("u")
	for i := 0; i < 25; i++ {
		m.RecordTechnique(technique.Mirror)
	}
	if len(m.RecentTechniques) != maxTechniqueHistory {
		t.Errorf("history length %d, want %d", len(m.RecentTechniques), maxTechniqueHistory)
	}

	m.RecordTechnique(technique.Celebrate)
	last, ok := m.LastTechnique()
	if !ok || last != technique.Celebrate {
		t.Errorf("last technique = %s, ok %v", last, ok)
	}
}

func TestRecordBreakthrough(t *testing.T) {
	m := Fresh("u")
	now := time.Now().UTC()

	m.RecordBreakthrough(now, false)
	if len(m.Breakthroughs) != 1 {
		t.Fatalf("breakthroughs = %d, want 1", len(m.Breakthroughs))
	}
	if math.Abs(m.TrustLevel-0.35) > 0.001 {
		t.Errorf("trust = %f, want 0.35", m.TrustLevel)
	}

	// Profound doubles the gain.
	m2 := Fresh("u")
	m2.RecordBreakthrough(now, true)
	if math.Abs(m2.TrustLevel-0.40) > 0.001 {
		t.Errorf("profound trust = %f, want 0.40", m2.TrustLevel)
	}
}

func TestRecordBreakthrough_Bounded(t *testing.T) {
	m := Fresh("u")
	for i := 0; i < maxBreakthroughs+10; i++ {
		m.RecordBreakthrough(time.Now().UTC(), false)
	}
	if len(m.Breakthroughs) != maxBreakthroughs {
		t.Errorf("breakthroughs = %d, want %d", len(m.Breakthroughs), maxBreakthroughs)
	}
}

func TestExplicitPreferenceWins(t *testing.T) {
	m := Fresh("u")
	now := time.Now().UTC()

	// Implicit nudges accumulate.
	m.NudgeImplicitPreference(tone.Fire, tone.Earth, now)
	m.NudgeImplicitPreference(tone.Fire, tone.Earth, now)
	pref := m.Preferences[tone.Fire]
	if pref.Explicit {
		t.Error("nudged preference should not be explicit")
	}
	if math.Abs(pref.Weight-0.10) > 0.001 {
		t.Errorf("nudged weight = %f, want 0.10", pref.Weight)
	}

	// Explicit choice replaces it outright.
	m.ApplyExplicitPreference(tone.Fire, tone.Water, false, now)
	pref = m.Preferences[tone.Fire]
	if !pref.Explicit || pref.BalanceElement != tone.Water || pref.Weight != 1.0 {
		t.Errorf("explicit preference not applied: %+v", pref)
	}

	// Later nudges never override the explicit choice.
	m.NudgeImplicitPreference(tone.Fire, tone.Earth, now)
	pref = m.Preferences[tone.Fire]
	if pref.BalanceElement != tone.Water || !pref.Explicit {
		t.Errorf("nudge overrode explicit preference: %+v", pref)
	}
}

func TestNudgeImplicitPreference_DifferentElementResets(t *testing.T) {
	m := Fresh("u")
	now := time.Now().UTC()

	m.NudgeImplicitPreference(tone.Air, tone.Earth, now)
	m.NudgeImplicitPreference(tone.Air, tone.Fire, now)

	pref := m.Preferences[tone.Air]
	if pref.BalanceElement != tone.Fire {
		t.Errorf("balance element = %s, want fire", pref.BalanceElement)
	}
	if math.Abs(pref.Weight-implicitNudge) > 0.001 {
		t.Errorf("weight = %f, want reset to %f", pref.Weight, implicitNudge)
	}
}

func TestRecordRupture(t *testing.T) {
	m := Fresh("u")
	m.TrustLevel = 0.8

	m.RecordRupture(false)
	if math.Abs(m.TrustLevel-0.74) > 0.001 {
		t.Errorf("soft rupture trust = %f, want 0.74", m.TrustLevel)
	}

	m.TrustLevel = 0.8
	m.RecordRupture(true)
	if math.Abs(m.TrustLevel-0.5) > 0.001 {
		t.Errorf("hard rupture trust = %f, want 0.5", m.TrustLevel)
	}
}

func TestDisableBalancing(t *testing.T) {
	m := Fresh("u")
	m.ApplyExplicitPreference(tone.Water, "", true, time.Now().UTC())
	pref := m.Preferences[tone.Water]
	if !pref.DisableBalancing {
		t.Error("disable flag not recorded")
	}
}
