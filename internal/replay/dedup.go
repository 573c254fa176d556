package replay

import (
	"time"
)

// dedupWindow is the tolerance for matching timestamps across export files.
const dedupWindow = 1 * time.Second

// overlapThreshold is the fraction of timestamps that must match to consider
// two export files duplicates of the same conversation.
const overlapThreshold = 0.8

// fileFingerprint holds timing + content info for deduplication.
type fileFingerprint struct {
	Path       string
	Timestamps []time.Time
	Previews   []string // first 3 message texts (trimmed)
}

// BuildFingerprint creates a fingerprint from parsed conversation messages.
func BuildFingerprint(path string, msgs []ConversationMessage) fileFingerprint {
	fp := fileFingerprint{Path: path}

	for _, m := range msgs {
		if !m.Timestamp.IsZero() {
			fp.Timestamps = append(fp.Timestamps, m.Timestamp)
		}
	}

	for i, m := range msgs {
		if i >= 3 {
			break
		}
		text := m.Text
		if len(text) > 100 {
			text = text[:100]
		}
		fp.Previews = append(fp.Previews, text)
	}

	return fp
}

// FindDuplicates returns paths of files that overlap an earlier file in the
// list. Earlier files win; exports are processed in discovery order.
func FindDuplicates(fps []fileFingerprint) map[string]bool {
	duplicates := make(map[string]bool)

	for i, fp := range fps {
		if duplicates[fp.Path] {
			continue
		}
		for j := i + 1; j < len(fps); j++ {
			if duplicates[fps[j].Path] {
				continue
			}
			if isDuplicate(fp, fps[j]) {
				duplicates[fps[j].Path] = true
			}
		}
	}

	return duplicates
}

// isDuplicate compares by timestamp overlap when both files carry timestamps;
// exports without them fall back to matching opening messages.
func isDuplicate(a, b fileFingerprint) bool {
	if len(a.Timestamps) > 0 && len(b.Timestamps) > 0 {
		return isOverlapping(a, b)
	}
	return samePreviews(a, b)
}

func samePreviews(a, b fileFingerprint) bool {
	if len(a.Previews) == 0 || len(a.Previews) != len(b.Previews) {
		return false
	}
	for i := range a.Previews {
		if a.Previews[i] != b.Previews[i] {
			return false
		}
	}
	return true
}

// isOverlapping checks if >80% of one file's timestamps appear in the other
// within the dedupWindow.
func isOverlapping(a, b fileFingerprint) bool {
	if len(b.Timestamps) == 0 {
		return false
	}

	matches := 0
	for _, bt := range b.Timestamps {
		for _, at := range a.Timestamps {
			diff := bt.Sub(at)
			if diff < 0 {
				diff = -diff
			}
			if diff <= dedupWindow {
				matches++
				break
			}
		}
	}

	return float64(matches)/float64(len(b.Timestamps)) >= overlapThreshold
}
