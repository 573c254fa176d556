// Package balance decides which counter-element a reply should introduce,
// and whether balancing should happen at all.
package balance

import (
	"github.com/MikeSquared-Agency/attune/internal/session"
	"github.com/MikeSquared-Agency/attune/internal/tone"
)

// implicitApplyAt is the accumulated weight at which a repeated implicit
// pairing starts steering the balance element. Each repetition nudges by
// 0.05, so five consistent turns earn the override.
const implicitApplyAt = 0.25

// Decision is the balancing policy output for one turn.
type Decision struct {
	Element        tone.Element
	ShouldBalance  bool
	FromPreference bool // the fixed table was overridden by session memory
}

// Decide maps the dominant element to its balancing counterpart. The fixed
// complementary table is the default; an explicit session preference for this
// dominant element overrides it immediately, an implicit pairing only once
// its repetition weight reaches implicitApplyAt, and a preference can disable
// balancing entirely. mem may be nil for a fresh/neutral session.
func Decide(a tone.Analysis, mem *session.Memory) Decision {
	element := a.SuggestedBalanceElement
	fromPref := false
	should := a.NeedsBalancing

	if mem != nil {
		if pref, ok := mem.Preferences[a.DominantElement]; ok {
			switch {
			case pref.Explicit && pref.DisableBalancing:
				should = false
			case pref.Explicit, pref.Weight >= implicitApplyAt:
				if pref.BalanceElement != "" && pref.BalanceElement != a.DominantElement {
					element = pref.BalanceElement
					fromPref = true
				}
			}
		}
	}

	if !should {
		// No-op balance: same element, so the shaper degenerates the
		// balance phase rather than introducing a counter-tone.
		return Decision{Element: a.DominantElement, ShouldBalance: false, FromPreference: fromPref}
	}

	return Decision{Element: element, ShouldBalance: true, FromPreference: fromPref}
}
