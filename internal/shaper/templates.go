package shaper

import (
	"github.com/MikeSquared-Agency/attune/internal/technique"
	"github.com/MikeSquared-Agency/attune/internal/tone"
)

// Fallback templates keyed by technique, then element. The engine must work
// without the draft collaborator; these are the deterministic floor under
// every reply, written to reflect the element's register rather than restate
// the user's words.
var mirrorTemplates = map[technique.Technique]map[tone.Element]string{
	technique.Mirror: {
		tone.Fire:   "There's real fire in what you're saying — the urgency comes through clearly.",
		tone.Water:  "I can hear how much feeling is moving through this for you.",
		tone.Earth:  "You're looking for something solid to stand on here. That makes sense.",
		tone.Air:    "Your mind is moving fast through a lot of threads at once.",
		tone.Aether: "There's something larger than the day-to-day in what you're touching.",
	},
	technique.Validate: {
		tone.Fire:   "Of course this feels urgent — anyone carrying this would feel the heat of it.",
		tone.Water:  "What you're feeling is real, and it makes sense that it's this heavy.",
		tone.Earth:  "Wanting things to be steady and clear isn't too much to ask. It matters.",
		tone.Air:    "It makes sense that your thoughts are scattering — there's a lot in the air.",
		tone.Aether: "What you're sensing is worth taking seriously, even if it's hard to name.",
	},
	technique.Attune: {
		tone.Fire:   "I'm right here with you in the intensity of this.",
		tone.Water:  "I'm staying with you in this feeling — no need to move anywhere yet.",
		tone.Earth:  "Let's stay exactly where you are for a moment. Nothing to fix yet.",
		tone.Air:    "I'm following every thread with you. Take the space you need.",
		tone.Aether: "I'm here in this with you, at whatever depth it wants to go.",
	},
	technique.Clarify: {
		tone.Fire:   "When you say everything needs to happen now — is there one piece that's truly on fire?",
		tone.Water:  "You said it always goes this way. Was there ever a time it went differently?",
		tone.Earth:  "What would 'handled' actually look like, concretely?",
		tone.Air:    "Of all the thoughts circling, which one keeps coming back?",
		tone.Aether: "When you say everything is connected — what's the connection you feel most?",
	},
	technique.Celebrate: {
		tone.Fire:   "Did you catch what you just did? You turned and looked at it differently.",
		tone.Water:  "Something just softened there — you let a new possibility in.",
		tone.Earth:  "That's a real shift. You just found ground that wasn't there a minute ago.",
		tone.Air:    "That's the thought worth keeping — you just reframed the whole thing.",
		tone.Aether: "Notice that opening. Something just moved in how you see this.",
	},
	technique.Space: {
		tone.Fire:   "Both things can be true — the insight you found, and the heat that's still here.",
		tone.Water:  "The understanding is real, and so is what's still aching. They can sit together.",
		tone.Earth:  "You don't have to resolve this right now. Let it settle at its own pace.",
		tone.Air:    "No need to tie the threads together yet. Let them hang for a while.",
		tone.Aether: "Hold the question lightly. It doesn't need an answer tonight.",
	},
}

// balanceTemplates introduce the counter-element's register.
var balanceTemplates = map[tone.Element]string{
	tone.Fire:   "Maybe there's one small spark worth acting on — something alive you could begin.",
	tone.Water:  "It might help to let this flow instead of holding it — what wants to be felt here?",
	tone.Earth:  "When you're ready, one small, solid step is enough. Just the next foothold.",
	tone.Air:    "It could help to loosen this a little — step back and look at it from above.",
	tone.Aether: "There may be a wider view holding all of this, bigger than any single piece.",
}

// transitions bridge the mirror phase into the balance phase, keyed by the
// balance element being introduced.
var transitions = map[tone.Element]string{
	tone.Fire:   "And somewhere under that, there's energy waiting...",
	tone.Water:  "And alongside that, something softer...",
	tone.Earth:  "And at the same time, the ground is still here...",
	tone.Air:    "And maybe there's a little more room to breathe...",
	tone.Aether: "And around all of it, something quieter...",
}

func fallbackMirror(t technique.Technique, e tone.Element) string {
	if byElement, ok := mirrorTemplates[t]; ok {
		if text, ok := byElement[e]; ok {
			return text
		}
	}
	// Unknown combinations resolve to the plain mirror register.
	return mirrorTemplates[technique.Mirror][tone.Water]
}

func fallbackBalance(e tone.Element) string {
	if text, ok := balanceTemplates[e]; ok {
		return text
	}
	return balanceTemplates[tone.Earth]
}

func transitionFor(e tone.Element) string {
	if t, ok := transitions[e]; ok {
		return t
	}
	return transitions[tone.Earth]
}
