// Package intensity maintains the per-conversation emotional-intensity
// trajectory on a 0–10 scale. Updates are additive deltas with clamping at
// the point of mutation — no multiplicative decay — so behavior stays
// predictable under any sequence of detector signals.
package intensity

import (
	"github.com/MikeSquared-Agency/attune/internal/detect"
	"github.com/MikeSquared-Agency/attune/internal/tone"
)

// Trend describes the direction of the last few intensity values.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendPlateau Trend = "plateau"
)

// maxHistory bounds the rolling intensity history.
const maxHistory = 8

// trendEpsilon is the minimum movement that counts as rising or falling.
const trendEpsilon = 0.25

// Per-signal deltas. Distress signals escalate, breakthroughs and calming
// language de-escalate, and a quiet turn drifts down slightly.
const (
	deltaRSD          = 1.5
	deltaSelfAttack   = 1.5
	deltaEnergyHigh   = 1.0
	deltaEnergyLow    = -0.5
	deltaBreakthrough = -2.0
	deltaCalming      = -1.0
	deltaQuietTurn    = -0.25
)

// State is one conversation's intensity trajectory.
type State struct {
	Current float64
	History []float64
	Trend   Trend
}

// NewState returns a fresh conversation-scoped state.
func NewState() State {
	return State{Current: 0, Trend: TrendPlateau}
}

// Update applies one turn's signals and returns the next state. The receiver
// is not mutated; conversation-scoped ownership belongs to the caller.
func Update(s State, a tone.Analysis, d detect.Set, calming bool) State {
	delta := 0.0
	escalated := false

	if d.RSD.Fired {
		delta += deltaRSD
		escalated = true
	}
	if d.SelfAttack.Fired {
		delta += deltaSelfAttack
		escalated = true
	}
	if a.EnergyLevel == tone.EnergyHigh {
		delta += deltaEnergyHigh
		escalated = true
	}
	if a.EnergyLevel == tone.EnergyLow {
		delta += deltaEnergyLow
	}
	if d.Breakthrough.Fired {
		delta += deltaBreakthrough
	}
	if calming {
		delta += deltaCalming
	}
	if !escalated && !d.Breakthrough.Fired && !calming {
		delta += deltaQuietTurn
	}

	next := State{
		Current: clamp(s.Current + delta),
		History: appendBounded(s.History, s.Current),
	}
	next.Trend = trend(next.Current, next.History)
	return next
}

// trend compares the current value against the last couple of recorded
// values. Fewer than two data points is always a plateau.
func trend(current float64, history []float64) Trend {
	if len(history) == 0 {
		return TrendPlateau
	}
	prev := history[len(history)-1]
	ref := prev
	if len(history) >= 2 {
		ref = (prev + history[len(history)-2]) / 2
	}
	switch {
	case current > ref+trendEpsilon:
		return TrendRising
	case current < ref-trendEpsilon:
		return TrendFalling
	default:
		return TrendPlateau
	}
}

func appendBounded(history []float64, v float64) []float64 {
	out := append(append([]float64(nil), history...), v)
	if len(out) > maxHistory {
		out = out[len(out)-maxHistory:]
	}
	return out
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
