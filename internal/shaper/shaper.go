// Package shaper turns a technique decision, tone analysis, and balance
// decision into the final two-phase response envelope: mirror the user's
// element back first, then introduce the counter-element.
package shaper

import (
	"strings"
	"time"

	"github.com/MikeSquared-Agency/attune/internal/balance"
	"github.com/MikeSquared-Agency/attune/internal/technique"
	"github.com/MikeSquared-Agency/attune/internal/tone"
)

// MirrorPhase reflects the user's detected element and energy back in tone.
type MirrorPhase struct {
	Element  tone.Element  `json:"element"`
	Text     string        `json:"text"`
	Duration time.Duration `json:"duration"`
}

// BalancePhase introduces the counter-element framing. When balancing is off
// it degenerates to a no-op: same element as the mirror, empty transition.
type BalancePhase struct {
	Element    tone.Element `json:"element"`
	Text       string       `json:"text"`
	Transition string       `json:"transition"`
}

// Envelope is the engine's final output for one turn.
type Envelope struct {
	Mirror             MirrorPhase         `json:"mirror_phase"`
	Balance            BalancePhase        `json:"balance_phase"`
	Voice              VoiceParams         `json:"voice_parameters"`
	Technique          technique.Technique `json:"technique"`
	Confidence         float64             `json:"confidence_score"`
	MultiModalEnhanced bool                `json:"multi_modal_enhanced"`
}

// wordsPerSecond approximates spoken pacing for the mirror duration estimate.
const wordsPerSecond = 2.5

// Shape builds the response envelope. draft is the externally generated
// reply text; when empty (collaborator absent, failed, or timed out) the
// deterministic fallback templates carry the reply instead. Shape always
// returns a complete envelope.
func Shape(draft string, dec technique.Decision, a tone.Analysis, bal balance.Decision) Envelope {
	mirrorText, balanceText := splitDraft(draft)
	enhanced := mirrorText != ""

	if mirrorText == "" {
		mirrorText = fallbackMirror(dec.Technique, a.DominantElement)
	}

	env := Envelope{
		Mirror: MirrorPhase{
			Element:  a.DominantElement,
			Text:     mirrorText,
			Duration: speakingDuration(mirrorText),
		},
		Voice:              deriveVoice(dec.Technique, a.DominantElement, a.EnergyLevel),
		Technique:          dec.Technique,
		Confidence:         dec.Confidence,
		MultiModalEnhanced: enhanced,
	}

	if !bal.ShouldBalance {
		// No-op balance: same element, empty transition, no voice delta.
		env.Balance = BalancePhase{Element: a.DominantElement}
		return env
	}

	if balanceText == "" {
		balanceText = fallbackBalance(bal.Element)
	}
	env.Balance = BalancePhase{
		Element:    bal.Element,
		Text:       balanceText,
		Transition: transitionFor(bal.Element),
	}
	return env
}

// splitDraft divides an externally generated reply into mirror and balance
// material at a sentence boundary near the midpoint. A draft too short to
// split becomes mirror material only.
func splitDraft(draft string) (string, string) {
	draft = strings.TrimSpace(draft)
	if draft == "" {
		return "", ""
	}

	sentences := splitSentences(draft)
	if len(sentences) < 2 {
		return draft, ""
	}

	mid := (len(sentences) + 1) / 2
	mirror := strings.TrimSpace(strings.Join(sentences[:mid], " "))
	rest := strings.TrimSpace(strings.Join(sentences[mid:], " "))
	return mirror, rest
}

func splitSentences(text string) []string {
	var out []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			s := strings.TrimSpace(b.String())
			if s != "" {
				out = append(out, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}
	return out
}

func speakingDuration(text string) time.Duration {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	seconds := float64(words) / wordsPerSecond
	return time.Duration(seconds * float64(time.Second))
}
