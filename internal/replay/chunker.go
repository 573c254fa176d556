package replay

import (
	"fmt"
	"time"
)

const (
	maxSegmentMessages = 40
	conversationGap    = 30 * time.Minute
)

// SegmentConversation splits an export into conversation-sized segments.
// It breaks on time gaps and message count boundaries; a gap longer than
// conversationGap is treated as a new conversation.
func SegmentConversation(msgs []ConversationMessage, sessionRef string) []Segment {
	if len(msgs) == 0 {
		return nil
	}

	var segments []Segment
	var current []ConversationMessage
	segIdx := 0

	for _, msg := range msgs {
		if len(current) > 0 && !msg.Timestamp.IsZero() {
			prev := current[len(current)-1]
			if !prev.Timestamp.IsZero() && msg.Timestamp.Sub(prev.Timestamp) > conversationGap {
				segments = append(segments, buildSegment(current, sessionRef, segIdx))
				current = nil
				segIdx++
			}
		}

		if len(current) >= maxSegmentMessages {
			segments = append(segments, buildSegment(current, sessionRef, segIdx))
			current = nil
			segIdx++
		}

		current = append(current, msg)
	}

	if len(current) > 0 {
		segments = append(segments, buildSegment(current, sessionRef, segIdx))
	}

	return segments
}

func buildSegment(msgs []ConversationMessage, sessionRef string, idx int) Segment {
	ref := fmt.Sprintf("%s#seg-%d", sessionRef, idx)
	s := Segment{
		Messages:   make([]ConversationMessage, len(msgs)),
		SessionRef: ref,
	}
	copy(s.Messages, msgs)

	if !msgs[0].Timestamp.IsZero() {
		s.StartTime = msgs[0].Timestamp
	}
	if !msgs[len(msgs)-1].Timestamp.IsZero() {
		s.EndTime = msgs[len(msgs)-1].Timestamp
	}

	return s
}
