// Package technique selects the active-listening technique for one turn.
// There is no carried-forward state machine value: selection is a pure
// decision function per turn, consulting the last couple of techniques only
// to avoid immediate repetition.
package technique

import (
	"strings"

	"github.com/MikeSquared-Agency/attune/internal/detect"
	"github.com/MikeSquared-Agency/attune/internal/intensity"
	"github.com/MikeSquared-Agency/attune/internal/tone"
)

// Technique is one of the six fixed response strategies.
type Technique string

const (
	Mirror    Technique = "MIRROR"
	Validate  Technique = "VALIDATE"
	Attune    Technique = "ATTUNE"
	Clarify   Technique = "CLARIFY"
	Celebrate Technique = "CELEBRATE"
	Space     Technique = "SPACE"
)

// Decision is the selector output for one turn.
type Decision struct {
	Technique  Technique
	Confidence float64
	Signals    []string // the text signals that triggered the choice
	Element    tone.Element
}

// Input carries everything the selector consults for one turn.
type Input struct {
	Text       string
	Tone       tone.Analysis
	Detections detect.Set
	Intensity  intensity.State
	TurnIndex  int         // 0-based index within the conversation
	Recent     []Technique // prior techniques, most recent last
}

// earlyTurnWindow is how many turns count as "the first few turns" for the
// acute-distress validation rule.
const earlyTurnWindow = 3

// attuneIntensityAt is the intensity floor for the attunement rule.
const attuneIntensityAt = 7.0

// absolutistMarkers are binary/absolutist framings that invite clarification.
var absolutistMarkers = []string{
	"always", "never", "everyone", "every one", "no one", "noone",
	"nobody", "everybody", "everything", "nothing", "all the time",
}

// selectorRule is one entry in the canonical priority order. Evaluation is
// strictly top-down and the first match wins; reordering this table is a
// design decision, not an implementation accident. Rules marked sticky apply
// even when the same technique was just used — celebration and acute-distress
// validation must never be suppressed by the anti-repeat rule.
type selectorRule struct {
	technique Technique
	sticky    bool
	match     func(Input) (bool, []string)
}

var rules = []selectorRule{
	{Celebrate, true, func(in Input) (bool, []string) {
		if in.Detections.Breakthrough.Fired {
			return true, append([]string{"breakthrough"}, in.Detections.Breakthrough.Matched...)
		}
		return false, nil
	}},
	{Validate, true, func(in Input) (bool, []string) {
		if in.TurnIndex >= earlyTurnWindow {
			return false, nil
		}
		if in.Detections.RSD.Fired {
			return true, append([]string{"early rsd"}, in.Detections.RSD.Matched...)
		}
		if in.Detections.SelfAttack.Fired {
			return true, append([]string{"early self-attack"}, in.Detections.SelfAttack.Matched...)
		}
		return false, nil
	}},
	{Attune, false, func(in Input) (bool, []string) {
		if in.Intensity.Current >= attuneIntensityAt && in.Intensity.Trend == intensity.TrendRising {
			return true, []string{"high rising intensity"}
		}
		return false, nil
	}},
	{Clarify, false, func(in Input) (bool, []string) {
		lower := strings.ToLower(in.Text)
		for _, m := range absolutistMarkers {
			if strings.Contains(lower, m) {
				return true, []string{"absolutist framing: " + m}
			}
		}
		return false, nil
	}},
	{Space, false, func(in Input) (bool, []string) {
		// After a celebration, new unresolved feeling means holding the
		// paradox between the insight and the residue, not redirecting.
		if len(in.Recent) == 0 || in.Recent[len(in.Recent)-1] != Celebrate {
			return false, nil
		}
		if unresolvedFeeling(in) {
			return true, []string{"residue after celebration"}
		}
		return false, nil
	}},
}

// Select picks the technique for one turn by evaluating the rule table
// top-down. When no rule matches, MIRROR is the least surprising default.
func Select(in Input) Decision {
	for _, r := range rules {
		ok, signals := r.match(in)
		if !ok {
			continue
		}
		if !r.sticky && justUsed(in.Recent, r.technique) {
			continue // anti-repeat: fall through to the next rule
		}
		return Decision{
			Technique:  r.technique,
			Confidence: confidence(in, len(signals)),
			Signals:    signals,
			Element:    in.Tone.DominantElement,
		}
	}

	return Decision{
		Technique:  Mirror,
		Confidence: confidence(in, 0),
		Signals:    []string{"default"},
		Element:    in.Tone.DominantElement,
	}
}

// justUsed reports whether the technique appears in the last 1–2 entries.
func justUsed(recent []Technique, t Technique) bool {
	n := len(recent)
	for i := n - 1; i >= 0 && i >= n-2; i-- {
		if recent[i] == t {
			return true
		}
	}
	return false
}

func unresolvedFeeling(in Input) bool {
	if in.Detections.RSD.Fired || in.Detections.SelfAttack.Fired {
		return true
	}
	if in.Tone.DominantElement == tone.Water && in.Tone.Scores[tone.Water] > 0.5 {
		return true
	}
	return in.Intensity.Current >= 4.0
}

// confidence is heuristic: each supporting signal beyond the first adds
// weight. Callers may use it to gate LLM temperature or response length.
func confidence(in Input, signalCount int) float64 {
	c := 0.5
	if signalCount > 1 {
		c += 0.1 * float64(signalCount-1)
	}
	if in.Detections.Any() {
		c += 0.1
	}
	if in.Tone.NeedsBalancing {
		c += 0.05
	}
	if c > 1.0 {
		c = 1.0
	}
	return c
}
