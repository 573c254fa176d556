package intensity

import "strings"

// calmingMarkers are explicit de-escalation phrases in the user's own words.
var calmingMarkers = []string{
	"i feel better",
	"feeling better",
	"calmer now",
	"i'm okay now",
	"im okay now",
	"that helps",
	"deep breath",
	"breathing",
	"relieved",
	"more settled",
	"less worried",
}

// Calming reports whether the utterance carries explicit calming language.
func Calming(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range calmingMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
