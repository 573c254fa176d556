package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// exportLine is a single line of a conversation export JSONL file. Exports
// from the voice gateway use "text"; older dumps use "content".
type exportLine struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Content   string `json:"content"`
	UserID    string `json:"user_id"`
	Timestamp string `json:"timestamp"`
}

// ParseExportFile parses a conversation export JSONL file. It returns the
// user id found in the file (empty if none) and the ordered messages.
func ParseExportFile(path string) (string, []ConversationMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	var userID string
	var msgs []ConversationMessage

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024) // 10MB line buffer
	for scanner.Scan() {
		var line exportLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue // skip malformed lines
		}

		if line.Role != "user" && line.Role != "assistant" {
			continue
		}

		text := line.Text
		if text == "" {
			text = line.Content
		}
		if text == "" {
			continue
		}

		if userID == "" && line.UserID != "" {
			userID = line.UserID
		}

		ts, _ := time.Parse(time.RFC3339Nano, line.Timestamp)
		msgs = append(msgs, ConversationMessage{
			Role:      line.Role,
			Text:      text,
			Timestamp: ts,
		})
	}
	if err := scanner.Err(); err != nil {
		return "", nil, fmt.Errorf("scan: %w", err)
	}

	return userID, msgs, nil
}
