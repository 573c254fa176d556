package tone

// keyword is a single weighted lexical signal. Detector behavior is data:
// adding or reweighting a phrase here is the whole tuning surface.
type keyword struct {
	phrase string
	weight float64
}

// elementLexicon holds the weighted keyword families per element. Phrases are
// matched case-insensitively as substrings of the utterance.
var elementLexicon = map[Element][]keyword{
	Fire: {
		{"urgent", 0.6},
		{"right now", 0.5},
		{"can't believe", 0.5},
		{"cant believe", 0.5},
		{"messed up", 0.5},
		{"furious", 0.7},
		{"angry", 0.6},
		{"rage", 0.6},
		{"pissed", 0.6},
		{"fed up", 0.5},
		{"hate", 0.4},
		{"burn", 0.4},
		{"ignite", 0.4},
		{"fire", 0.4},
		{"passion", 0.4},
		{"intense", 0.4},
		{"immediately", 0.4},
		{"now", 0.2},
		{"stuck", 0.3},
		{"frustrat", 0.5},
		{"drive", 0.3},
		{"fight", 0.4},
	},
	Water: {
		{"sad", 0.6},
		{"overwhelm", 0.7},
		{"tears", 0.6},
		{"cry", 0.5},
		{"grief", 0.6},
		{"heartbroken", 0.7},
		{"heavy", 0.4},
		{"heart", 0.4},
		{"emotion", 0.5},
		{"feel", 0.3},
		{"feeling", 0.3},
		{"lonely", 0.5},
		{"miss", 0.3},
		{"hurt", 0.4},
		{"drowning", 0.6},
		{"flooded", 0.5},
		{"intuition", 0.4},
		{"dream", 0.3},
		{"heal", 0.4},
	},
	Earth: {
		{"practical", 0.6},
		{"plan", 0.4},
		{"step by step", 0.6},
		{"structure", 0.5},
		{"routine", 0.5},
		{"ground", 0.5},
		{"stable", 0.5},
		{"steady", 0.4},
		{"organize", 0.5},
		{"organis", 0.5},
		{"manifest", 0.4},
		{"build", 0.4},
		{"concrete", 0.4},
		{"schedule", 0.4},
		{"budget", 0.4},
		{"checklist", 0.5},
		{"how do i actually", 0.5},
	},
	Air: {
		{"scattered", 0.6},
		{"racing thoughts", 0.7},
		{"so many ideas", 0.6},
		{"thinking about", 0.4},
		{"think", 0.3},
		{"thought", 0.3},
		{"idea", 0.4},
		{"wonder if", 0.4},
		{"what if", 0.4},
		{"confus", 0.5},
		{"distract", 0.5},
		{"speak", 0.3},
		{"talk", 0.2},
		{"words", 0.3},
		{"brainstorm", 0.5},
		{"curious", 0.4},
	},
	Aether: {
		{"unity", 0.6},
		{"oneness", 0.7},
		{"sacred", 0.6},
		{"divine", 0.6},
		{"transcend", 0.6},
		{"consciousness", 0.6},
		{"universe", 0.5},
		{"spirit", 0.5},
		{"soul", 0.4},
		{"void", 0.5},
		{"emptiness", 0.5},
		{"everything is connected", 0.7},
		{"meaning of", 0.4},
		{"awakening", 0.6},
		{"infinite", 0.5},
	},
}

// qualities are the emotional quality labels attached per element when the
// element scores at all.
var elementQualities = map[Element][]string{
	Fire:   {"urgency", "activation"},
	Water:  {"emotional depth", "flow"},
	Earth:  {"groundedness", "practicality"},
	Air:    {"ideation", "mental motion"},
	Aether: {"transcendence", "unity"},
}

// highArousal and lowArousal shift the structural energy score. These overlap
// with the element families on purpose: "urgent" is both a fire signal and an
// energy signal.
var highArousal = []string{
	"urgent", "now", "asap", "hurry", "immediately", "can't wait", "right away",
	"excited", "amazing", "furious", "screaming",
}

var lowArousal = []string{
	"tired", "exhausted", "drained", "heavy", "numb", "empty", "slow",
	"sad", "tears", "can't get up", "no energy", "flat",
}
