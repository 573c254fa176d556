// Package replay seeds session memory from conversation export files: user
// turns are run through the turn pipeline offline (no draft generation, no
// bus) so a user's trust level, preferences, and breakthrough history exist
// before their first live conversation.
package replay

import "time"

// ConversationMessage is a single turn from an export file.
type ConversationMessage struct {
	Role      string // "user" or "assistant"
	Text      string
	Timestamp time.Time
}

// Segment is a slice of conversation replayed as one conversation: intensity
// is conversation-scoped, so each segment starts from zero.
type Segment struct {
	Messages   []ConversationMessage
	SessionRef string // source file + segment index
	StartTime  time.Time
	EndTime    time.Time
}
