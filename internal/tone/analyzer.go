package tone

import (
	"strings"
	"unicode"
)

// Energy thresholds for the structural score. Bands, high to low:
// high ≥ highEnergyAt, medium ≥ 0, medium_low ≥ lowEnergyAt, else low.
const (
	highEnergyAt = 1.0
	lowEnergyAt  = -0.6
)

// Analyze classifies an utterance into a dominant element and energy band.
// It never fails: empty, emoji-only, numeric, all-caps, and very long input
// all resolve to a valid Analysis.
func Analyze(text string) Analysis {
	lower := strings.ToLower(text)

	scores := make(map[Element]float64, len(elementLexicon))
	for _, e := range elementPriority {
		scores[e] = 0
	}
	for element, family := range elementLexicon {
		for _, kw := range family {
			if strings.Contains(lower, kw.phrase) {
				scores[element] += kw.weight
			}
		}
	}

	dominant := dominantElement(scores)
	energy := energyLevel(text, lower)
	needsBalancing := energy == EnergyHigh || energy == EnergyLow

	return Analysis{
		DominantElement:         dominant,
		EnergyLevel:             energy,
		EmotionalQualities:      qualities(dominant, scores),
		Tempo:                   wordsPerSentence(text),
		NeedsBalancing:          needsBalancing,
		SuggestedBalanceElement: Complement(dominant),
		Scores:                  scores,
	}
}

// dominantElement picks the highest score, breaking ties by the fixed
// priority order so classification stays deterministic. An all-zero score
// (empty or contentless input) resolves to the first priority element.
func dominantElement(scores map[Element]float64) Element {
	best := elementPriority[0]
	bestScore := scores[best]
	for _, e := range elementPriority[1:] {
		if scores[e] > bestScore {
			best = e
			bestScore = scores[e]
		}
	}
	return best
}

func qualities(dominant Element, scores map[Element]float64) []string {
	out := append([]string(nil), elementQualities[dominant]...)
	for _, e := range elementPriority {
		if e == dominant {
			continue
		}
		if scores[e] >= 0.8 {
			out = append(out, elementQualities[e]...)
		}
	}
	return out
}

// energyLevel derives the energy band from structural signals: exclamation
// density, shouted words, arousal keywords, sentence shape, and repetition.
func energyLevel(text, lower string) EnergyLevel {
	score := 0.0

	exclaims := strings.Count(text, "!")
	if exclaims > 3 {
		exclaims = 3
	}
	score += float64(exclaims) * 0.35

	if hasShoutedWord(text) {
		score += 0.5
	}

	arousal := 0.0
	for _, marker := range highArousal {
		if strings.Contains(lower, marker) {
			arousal += 0.4
		}
	}
	if arousal > 1.2 {
		arousal = 1.2
	}
	score += arousal

	damp := 0.0
	for _, marker := range lowArousal {
		if strings.Contains(lower, marker) {
			damp += 0.4
		}
	}
	if damp > 1.2 {
		damp = 1.2
	}
	score -= damp

	tempo := wordsPerSentence(text)
	switch {
	case tempo > 0 && tempo < 6 && sentenceCount(text) > 1:
		score += 0.2 // short punchy sentences
	case tempo > 25:
		score -= 0.2 // long winding sentences
	}

	if hasHeavyRepetition(lower) {
		score += 0.3
	}

	switch {
	case score >= highEnergyAt:
		return EnergyHigh
	case score >= 0:
		return EnergyMedium
	case score >= lowEnergyAt:
		return EnergyMediumLow
	default:
		return EnergyLow
	}
}

// hasShoutedWord reports whether any word of 2+ letters is fully uppercase.
func hasShoutedWord(text string) bool {
	for _, word := range strings.Fields(text) {
		letters := 0
		upper := 0
		for _, r := range word {
			if unicode.IsLetter(r) {
				letters++
				if unicode.IsUpper(r) {
					upper++
				}
			}
		}
		if letters >= 2 && upper == letters {
			return true
		}
	}
	return false
}

// hasHeavyRepetition reports whether any word of 4+ characters appears three
// or more times.
func hasHeavyRepetition(lower string) bool {
	counts := make(map[string]int)
	for _, word := range strings.Fields(lower) {
		word = strings.Trim(word, ".,!?…")
		if len(word) < 4 {
			continue
		}
		counts[word]++
		if counts[word] >= 3 {
			return true
		}
	}
	return false
}

func sentenceCount(text string) int {
	n := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			n++
		}
	}
	if n == 0 && strings.TrimSpace(text) != "" {
		return 1
	}
	return n
}

func wordsPerSentence(text string) float64 {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	sentences := sentenceCount(text)
	if sentences == 0 {
		sentences = 1
	}
	return float64(words) / float64(sentences)
}
