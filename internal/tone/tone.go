package tone

// Element is one of the five mood/energy archetypes the engine classifies into.
type Element string

const (
	Fire   Element = "fire"
	Water  Element = "water"
	Earth  Element = "earth"
	Air    Element = "air"
	Aether Element = "aether"
)

// elementPriority is the deterministic tie-break order: fire > water > earth > air > aether.
var elementPriority = []Element{Fire, Water, Earth, Air, Aether}

// Elements returns the five elements in priority order.
func Elements() []Element {
	out := make([]Element, len(elementPriority))
	copy(out, elementPriority)
	return out
}

// EnergyLevel is the classifier's energy band for one utterance.
type EnergyLevel string

const (
	EnergyLow       EnergyLevel = "low"
	EnergyMediumLow EnergyLevel = "medium_low"
	EnergyMedium    EnergyLevel = "medium"
	EnergyHigh      EnergyLevel = "high"
)

// Analysis is the classifier output for a single utterance. Read-only once built.
type Analysis struct {
	DominantElement         Element
	EnergyLevel             EnergyLevel
	EmotionalQualities      []string
	Tempo                   float64 // words per sentence, a rough pacing signal
	NeedsBalancing          bool
	SuggestedBalanceElement Element
	Scores                  map[Element]float64
}

// complements is the fixed counter-element table: fire is grounded, water is
// gently activated, air is grounded, earth is loosened, aether is embodied.
var complements = map[Element]Element{
	Fire:   Earth,
	Water:  Fire,
	Earth:  Air,
	Air:    Earth,
	Aether: Earth,
}

// Complement returns the default balancing element for a dominant element.
func Complement(e Element) Element {
	if c, ok := complements[e]; ok {
		return c
	}
	return Earth
}

// ScoreVector returns the five element scores in priority order, suitable for
// similarity comparison between turns.
func (a Analysis) ScoreVector() []float64 {
	v := make([]float64, len(elementPriority))
	for i, e := range elementPriority {
		v[i] = a.Scores[e]
	}
	return v
}
