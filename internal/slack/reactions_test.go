package slack

import (
	"testing"
)

func TestParseReaction(t *testing.T) {
	tests := []struct {
		reaction string
		want     ReviewVerdict
	}{
		{"+1", VerdictConfirmed},
		{"thumbsup", VerdictConfirmed},
		{"-1", VerdictRejected},
		{"thumbsdown", VerdictRejected},
		{"shrug", VerdictSkipped},
		{"eyes", VerdictUnknown},
		{"", VerdictUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.reaction, func(t *testing.T) {
			if got := ParseReaction(tt.reaction); got != tt.want {
				t.Errorf("ParseReaction(%q) = %q, want %q", tt.reaction, got, tt.want)
			}
		})
	}
}

func TestParseReactionEvent(t *testing.T) {
	data := []byte(`{"metadata":{"text":":+1:","user_id":"U123","channel_id":"C456","message_ts":"1756400000.000100"}}`)

	evt, err := ParseReactionEvent(data)
	if err != nil {
		t.Fatalf("ParseReactionEvent: %v", err)
	}

	if evt.Reaction != "+1" {
		t.Errorf("Reaction = %q, want +1 (colons stripped)", evt.Reaction)
	}
	if evt.UserID != "U123" {
		t.Errorf("UserID = %q, want U123", evt.UserID)
	}
	if evt.Channel != "C456" {
		t.Errorf("Channel = %q, want C456", evt.Channel)
	}
	if evt.MessageTS != "1756400000.000100" {
		t.Errorf("MessageTS = %q", evt.MessageTS)
	}
}

func TestParseReactionEvent_BareName(t *testing.T) {
	data := []byte(`{"metadata":{"text":"thumbsdown","message_ts":"1.2"}}`)

	evt, err := ParseReactionEvent(data)
	if err != nil {
		t.Fatalf("ParseReactionEvent: %v", err)
	}
	if evt.Reaction != "thumbsdown" {
		t.Errorf("Reaction = %q, want thumbsdown", evt.Reaction)
	}
}

func TestParseReactionEvent_Invalid(t *testing.T) {
	if _, err := ParseReactionEvent([]byte("not json")); err == nil {
		t.Error("expected an error for malformed payload")
	}
}
