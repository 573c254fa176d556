// Package detect holds the engine's inflection-point detectors: independent
// heuristic pattern matchers that may all fire on the same turn. Each detector
// is a pure function over the utterance text (plus, for breakthrough, a short
// slice of recent turns) driven by an ordered (pattern, weight) rule table.
package detect

import "strings"

// Kind identifies one detector.
type Kind string

const (
	KindRSD          Kind = "rsd"
	KindSelfAttack   Kind = "self_attack"
	KindBreakthrough Kind = "breakthrough"
	KindProfound     Kind = "profound"
)

// Result is a single detector outcome. Matched carries the rule phrases that
// hit, for explainability.
type Result struct {
	Kind    Kind
	Fired   bool
	Score   float64
	Matched []string
}

// Set is the combined output of all four detectors for one turn.
type Set struct {
	RSD          Result
	SelfAttack   Result
	Breakthrough Result
	Profound     Result
}

// Any reports whether any detector fired.
func (s Set) Any() bool {
	return s.RSD.Fired || s.SelfAttack.Fired || s.Breakthrough.Fired || s.Profound.Fired
}

// rule is one weighted pattern. Rules are evaluated in table order; every
// matching rule contributes its weight.
type rule struct {
	pattern string
	weight  float64
}

// rsdRules match language implying others are judging, excluding, or mocking
// the speaker.
var rsdRules = []rule{
	{"everyone thinks", 0.6},
	{"they're all talking about me", 0.7},
	{"theyre all talking about me", 0.7},
	{"talking about me", 0.5},
	{"laughing at me", 0.6},
	{"looking at me", 0.5},
	{"laughing and looking", 0.5},
	{"laughing", 0.2},
	{"they think i", 0.5},
	{"think im weird", 0.5},
	{"think i'm weird", 0.5},
	{"judging me", 0.6},
	{"nobody likes me", 0.7},
	{"no one likes me", 0.7},
	{"left me out", 0.6},
	{"didn't invite me", 0.6},
	{"excluded", 0.5},
	{"ignoring me", 0.5},
	{"making fun of", 0.6},
	{"everyone", 0.2},
	{"hates me", 0.6},
}

// selfBlameRules and execFunctionRules together drive the self-attack
// detector: self-blame alone can fire it, but executive-function or masking
// language amplifies.
var selfBlameRules = []rule{
	{"i'm so stupid", 0.7},
	{"im so stupid", 0.7},
	{"i'm an idiot", 0.7},
	{"what's wrong with me", 0.6},
	{"whats wrong with me", 0.6},
	{"i always mess", 0.6},
	{"i always ruin", 0.6},
	{"i hate myself", 0.8},
	{"i'm broken", 0.6},
	{"im broken", 0.6},
	{"i'm useless", 0.7},
	{"i'm lazy", 0.5},
	{"im lazy", 0.5},
	{"i should be able to", 0.4},
	{"why can't i just", 0.5},
	{"why cant i just", 0.5},
	{"i'm the problem", 0.6},
}

var execFunctionRules = []rule{
	{"can't focus", 0.4},
	{"cant focus", 0.4},
	{"executive function", 0.5},
	{"forgot again", 0.4},
	{"masking", 0.4},
	{"adhd", 0.4},
	{"autis", 0.4},
	{"overstimulat", 0.4},
	{"start the task", 0.3},
	{"time blind", 0.4},
	{"everyone else can", 0.4},
}

// breakthroughRules match hedge-then-insight markers — a shift from certainty
// to reconsideration. The lexical triggers are deliberately broad ("wait",
// "i guess", "maybe") and preserved as observed behavior; tightening them is
// a tuning decision, not a correctness fix.
var breakthroughRules = []rule{
	{"wait...", 0.5},
	{"wait,", 0.4},
	{"wait.", 0.4},
	{"wait ", 0.3},
	{"i guess", 0.4},
	{"maybe it's not", 0.5},
	{"maybe its not", 0.5},
	{"probably not", 0.4},
	{"maybe i was", 0.4},
	{"now i see", 0.5},
	{"i never thought of it", 0.5},
	{"i just realized", 0.6},
	{"i just realised", 0.6},
	{"actually, maybe", 0.4},
	{"not that extreme", 0.4},
	{"not as bad as", 0.4},
}

// profoundRules match transformation/sacred/consciousness language. A hit
// accelerates relationship-trust growth in session memory.
var profoundRules = []rule{
	{"sacred", 0.5},
	{"divine", 0.5},
	{"transcend", 0.5},
	{"consciousness", 0.5},
	{"awakening", 0.5},
	{"oneness", 0.6},
	{"everything is connected", 0.6},
	{"profound", 0.4},
	{"transform", 0.4},
	{"rebirth", 0.5},
	{"my whole life", 0.3},
	{"never be the same", 0.5},
	{"something shifted", 0.5},
}

// Firing thresholds per detector.
const (
	rsdThreshold          = 0.5
	selfAttackThreshold   = 0.5
	breakthroughThreshold = 0.6
	profoundThreshold     = 0.5
)

// Run evaluates all four detectors over the utterance. recent is the short
// tail of prior user turns (oldest first), consulted only by the breakthrough
// detector; it may be nil.
func Run(text string, recent []string) Set {
	lower := strings.ToLower(text)
	return Set{
		RSD:          RSD(lower),
		SelfAttack:   SelfAttack(lower),
		Breakthrough: Breakthrough(lower, recent),
		Profound:     Profound(lower),
	}
}

// RSD detects rejection-sensitive-dysphoria language. Input must be lowercased.
func RSD(lower string) Result {
	score, matched := applyRules(lower, rsdRules)
	return Result{Kind: KindRSD, Fired: score >= rsdThreshold, Score: score, Matched: matched}
}

// SelfAttack detects self-blame, amplified by executive-function or masking
// language. Input must be lowercased.
func SelfAttack(lower string) Result {
	blame, blameMatched := applyRules(lower, selfBlameRules)
	exec, execMatched := applyRules(lower, execFunctionRules)

	score := blame
	matched := blameMatched
	if blame > 0 && exec > 0 {
		// Self-blame wrapped around neurodivergent struggle is the
		// signature pattern; the combination counts more than the parts.
		score = blame + exec + 0.2
		matched = append(matched, execMatched...)
	}
	return Result{Kind: KindSelfAttack, Fired: score >= selfAttackThreshold, Score: score, Matched: matched}
}

// Breakthrough detects a hedge-then-insight shift. Firing is stronger when
// recent turns carried distress language that the current turn walks back.
func Breakthrough(lower string, recent []string) Result {
	score, matched := applyRules(lower, breakthroughRules)

	// A reconsideration right after distress turns is more credible.
	if score > 0 && len(recent) > 0 {
		for _, prior := range recent {
			pl := strings.ToLower(prior)
			if r := RSD(pl); r.Fired {
				score += 0.2
				break
			}
			if r := SelfAttack(pl); r.Fired {
				score += 0.2
				break
			}
		}
	}

	return Result{Kind: KindBreakthrough, Fired: score >= breakthroughThreshold, Score: score, Matched: matched}
}

// Profound detects transformation/sacred/consciousness markers.
func Profound(lower string) Result {
	score, matched := applyRules(lower, profoundRules)
	return Result{Kind: KindProfound, Fired: score >= profoundThreshold, Score: score, Matched: matched}
}

func applyRules(lower string, rules []rule) (float64, []string) {
	score := 0.0
	var matched []string
	for _, r := range rules {
		if strings.Contains(lower, r.pattern) {
			score += r.weight
			matched = append(matched, strings.TrimSpace(r.pattern))
		}
	}
	return score, matched
}
