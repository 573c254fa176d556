package shaper

import (
	"github.com/MikeSquared-Agency/attune/internal/technique"
	"github.com/MikeSquared-Agency/attune/internal/tone"
)

// VoiceParams are the delivery parameters handed to the TTS layer. Speed and
// pitch are multipliers around 1.0; emphasis and warmth are [0,1].
type VoiceParams struct {
	Speed    float64 `json:"speed"`
	Pitch    float64 `json:"pitch"`
	Emphasis float64 `json:"emphasis"`
	Warmth   float64 `json:"warmth"`
}

// The neutral anchor the per-element and per-technique deltas move from:
// slightly slow, slightly low, warm.
var baselineVoice = VoiceParams{
	Speed:    0.95,
	Pitch:    0.98,
	Emphasis: 0.5,
	Warmth:   0.7,
}

// elementVoiceDelta adjusts delivery to match the mirrored element.
var elementVoiceDelta = map[tone.Element]VoiceParams{
	tone.Fire:   {Speed: 0.10, Pitch: 0.03, Emphasis: 0.30, Warmth: 0.0},
	tone.Water:  {Speed: -0.10, Pitch: -0.05, Emphasis: -0.10, Warmth: 0.10},
	tone.Earth:  {Speed: -0.05, Pitch: -0.02, Emphasis: 0.0, Warmth: 0.05},
	tone.Air:    {Speed: 0.05, Pitch: 0.02, Emphasis: 0.10, Warmth: 0.0},
	tone.Aether: {Speed: -0.08, Pitch: -0.03, Emphasis: -0.15, Warmth: 0.05},
}

// techniqueVoiceDelta adjusts delivery to match the listening technique.
// Validation and celebration run warm; clarification runs flat and even.
var techniqueVoiceDelta = map[technique.Technique]VoiceParams{
	technique.Mirror:    {},
	technique.Validate:  {Speed: -0.02, Warmth: 0.20},
	technique.Attune:    {Speed: -0.05, Emphasis: -0.05, Warmth: 0.15},
	technique.Clarify:   {Speed: 0.05, Emphasis: -0.10, Warmth: -0.20},
	technique.Celebrate: {Speed: 0.05, Pitch: 0.03, Emphasis: 0.15, Warmth: 0.20},
	technique.Space:     {Speed: -0.10, Pitch: -0.02, Emphasis: -0.20, Warmth: 0.10},
}

// deriveVoice combines the baseline with element and technique deltas.
// Derivation is deterministic: same technique and tone, same parameters.
func deriveVoice(t technique.Technique, e tone.Element, energy tone.EnergyLevel) VoiceParams {
	v := baselineVoice
	ed := elementVoiceDelta[e]
	td := techniqueVoiceDelta[t]

	v.Speed += ed.Speed + td.Speed
	v.Pitch += ed.Pitch + td.Pitch
	v.Emphasis += ed.Emphasis + td.Emphasis
	v.Warmth += ed.Warmth + td.Warmth

	// High-energy mirrors lean in slightly; low-energy mirrors slow down.
	switch energy {
	case tone.EnergyHigh:
		v.Speed += 0.03
		v.Emphasis += 0.05
	case tone.EnergyLow:
		v.Speed -= 0.05
	}

	v.Speed = clampRange(v.Speed, 0.7, 1.3)
	v.Pitch = clampRange(v.Pitch, 0.8, 1.2)
	v.Emphasis = clampRange(v.Emphasis, 0.0, 1.0)
	v.Warmth = clampRange(v.Warmth, 0.0, 1.0)
	return v
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
