package shaper

import (
	"testing"

	"github.com/MikeSquared-Agency/attune/internal/balance"
	"github.com/MikeSquared-Agency/attune/internal/technique"
	"github.com/MikeSquared-Agency/attune/internal/tone"
)

func fireAnalysis() tone.Analysis {
	return tone.Analysis{
		DominantElement:         tone.Fire,
		EnergyLevel:             tone.EnergyHigh,
		NeedsBalancing:          true,
		SuggestedBalanceElement: tone.Earth,
	}
}

func mirrorDecision() technique.Decision {
	return technique.Decision{Technique: technique.Mirror, Confidence: 0.6, Element: tone.Fire}
}

func TestShape_EmptyDraftUsesTemplates(t *testing.T) {
	env := Shape("", mirrorDecision(), fireAnalysis(), balance.Decision{Element: tone.Earth, ShouldBalance: true})

	if env.Mirror.Text == "" {
		t.Error("mirror text must never be empty")
	}
	if env.Balance.Text == "" {
		t.Error("balance text must never be empty when balancing")
	}
	if env.Balance.Transition == "" {
		t.Error("balance transition must be set when balancing")
	}
	if env.MultiModalEnhanced {
		t.Error("template-only envelope should not be marked enhanced")
	}
	if env.Mirror.Element != tone.Fire {
		t.Errorf("mirror element = %s, want fire", env.Mirror.Element)
	}
	if env.Balance.Element != tone.Earth {
		t.Errorf("balance element = %s, want earth", env.Balance.Element)
	}
}

func TestShape_DraftSplitsAcrossPhases(t *testing.T) {
	draft := "That sounds really intense. You have every right to feel the heat of it. One small step might help ground this. What would feel most solid right now?"
	env := Shape(draft, mirrorDecision(), fireAnalysis(), balance.Decision{Element: tone.Earth, ShouldBalance: true})

	if !env.MultiModalEnhanced {
		t.Error("draft-backed envelope should be marked enhanced")
	}
	if env.Mirror.Text == "" || env.Balance.Text == "" {
		t.Error("both phases should carry draft material")
	}
	if env.Mirror.Text == env.Balance.Text {
		t.Error("phases should hold different halves of the draft")
	}
	if env.Mirror.Duration <= 0 {
		t.Errorf("duration = %v, want > 0", env.Mirror.Duration)
	}
}

func TestShape_ShortDraftIsMirrorOnly(t *testing.T) {
	env := Shape("That sounds hard.", mirrorDecision(), fireAnalysis(), balance.Decision{Element: tone.Earth, ShouldBalance: true})

	if env.Mirror.Text != "That sounds hard." {
		t.Errorf("mirror text = %q", env.Mirror.Text)
	}
	// Balance falls back to the template when the draft had nothing left.
	if env.Balance.Text == "" {
		t.Error("balance should fall back to template text")
	}
}

func TestShape_NoOpBalance(t *testing.T) {
	a := fireAnalysis()
	a.NeedsBalancing = false
	env := Shape("", mirrorDecision(), a, balance.Decision{Element: tone.Fire, ShouldBalance: false})

	if env.Balance.Element != env.Mirror.Element {
		t.Errorf("no-op balance element %s should equal mirror element %s", env.Balance.Element, env.Mirror.Element)
	}
	if env.Balance.Text != "" {
		t.Errorf("no-op balance text = %q, want empty", env.Balance.Text)
	}
	if env.Balance.Transition != "" {
		t.Errorf("no-op transition = %q, want empty", env.Balance.Transition)
	}
}

func TestShape_AllTechniqueElementPairsHaveTemplates(t *testing.T) {
	techniques := []technique.Technique{
		technique.Mirror, technique.Validate, technique.Attune,
		technique.Clarify, technique.Celebrate, technique.Space,
	}
	for _, tech := range techniques {
		for _, e := range tone.Elements() {
			a := tone.Analysis{DominantElement: e, EnergyLevel: tone.EnergyMedium, SuggestedBalanceElement: tone.Complement(e)}
			env := Shape("", technique.Decision{Technique: tech, Confidence: 0.5, Element: e}, a, balance.Decision{Element: tone.Complement(e), ShouldBalance: true})
			if env.Mirror.Text == "" {
				t.Errorf("%s/%s: empty mirror text", tech, e)
			}
			if env.Balance.Text == "" {
				t.Errorf("%s/%s: empty balance text", tech, e)
			}
		}
	}
}

func TestDeriveVoice_Deterministic(t *testing.T) {
	a := deriveVoice(technique.Validate, tone.Water, tone.EnergyLow)
	b := deriveVoice(technique.Validate, tone.Water, tone.EnergyLow)
	if a != b {
		t.Errorf("voice derivation not deterministic: %+v vs %+v", a, b)
	}
}

func TestDeriveVoice_Ranges(t *testing.T) {
	techniques := []technique.Technique{
		technique.Mirror, technique.Validate, technique.Attune,
		technique.Clarify, technique.Celebrate, technique.Space,
	}
	energies := []tone.EnergyLevel{tone.EnergyLow, tone.EnergyMediumLow, tone.EnergyMedium, tone.EnergyHigh}

	for _, tech := range techniques {
		for _, e := range tone.Elements() {
			for _, en := range energies {
				v := deriveVoice(tech, e, en)
				if v.Speed < 0.7 || v.Speed > 1.3 {
					t.Errorf("%s/%s/%s: speed %f out of range", tech, e, en, v.Speed)
				}
				if v.Pitch < 0.8 || v.Pitch > 1.2 {
					t.Errorf("%s/%s/%s: pitch %f out of range", tech, e, en, v.Pitch)
				}
				if v.Emphasis < 0 || v.Emphasis > 1 {
					t.Errorf("%s/%s/%s: emphasis %f out of range", tech, e, en, v.Emphasis)
				}
				if v.Warmth < 0 || v.Warmth > 1 {
					t.Errorf("%s/%s/%s: warmth %f out of range", tech, e, en, v.Warmth)
				}
			}
		}
	}
}

func TestDeriveVoice_WaterSlowerThanFire(t *testing.T) {
	water := deriveVoice(technique.Mirror, tone.Water, tone.EnergyLow)
	fire := deriveVoice(technique.Mirror, tone.Fire, tone.EnergyHigh)
	if water.Speed >= fire.Speed {
		t.Errorf("water mirror speed %f should be slower than fire %f", water.Speed, fire.Speed)
	}
	if water.Warmth <= fire.Warmth-0.2 {
		t.Errorf("water mirror should stay warm, got %f vs fire %f", water.Warmth, fire.Warmth)
	}
}

func TestSplitDraft(t *testing.T) {
	tests := []struct {
		name          string
		draft         string
		wantMirror    string
		wantRestEmpty bool
	}{
		{"empty", "", "", true},
		{"single sentence", "Just one thought.", "Just one thought.", true},
		{"two sentences split", "First half. Second half.", "First half.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mirror, rest := splitDraft(tt.draft)
			if mirror != tt.wantMirror {
				t.Errorf("mirror = %q, want %q", mirror, tt.wantMirror)
			}
			if (rest == "") != tt.wantRestEmpty {
				t.Errorf("rest = %q, wantRestEmpty %v", rest, tt.wantRestEmpty)
			}
		})
	}
}
