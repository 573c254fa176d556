package replay

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestStateRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "replay-state.json")

	s := &ReplayState{path: path}
	s.MarkProcessed("a.jsonl")
	s.MarkProcessed("b.jsonl")
	s.TurnsReplayed = 17
	s.Breakthroughs = 2
	s.SessionsSeeded = 3
	s.AddError("c.jsonl: parse failed")

	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if s.LastProcessedAt.IsZero() {
		t.Error("Save should stamp LastProcessedAt")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read state back: %v", err)
	}
	var loaded ReplayState
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("parse state: %v", err)
	}

	if !loaded.IsProcessed("a.jsonl") || !loaded.IsProcessed("b.jsonl") {
		t.Error("processed files lost in roundtrip")
	}
	if loaded.IsProcessed("c.jsonl") {
		t.Error("c.jsonl was never processed")
	}
	if loaded.TurnsReplayed != 17 || loaded.Breakthroughs != 2 || loaded.SessionsSeeded != 3 {
		t.Errorf("counters lost: %+v", loaded)
	}
	if len(loaded.Errors) != 1 {
		t.Errorf("expected 1 recorded error, got %d", len(loaded.Errors))
	}
}

func TestIsProcessed_Empty(t *testing.T) {
	s := &ReplayState{}
	if s.IsProcessed("anything.jsonl") {
		t.Error("fresh state has no processed files")
	}
}

func TestExpandHome(t *testing.T) {
	got := expandHome("~/exports")
	if got == "~/exports" {
		t.Skip("no home directory available")
	}
	if got[0] == '~' {
		t.Errorf("tilde not expanded: %q", got)
	}

	if abs := expandHome("/var/exports"); abs != "/var/exports" {
		t.Errorf("absolute path must pass through, got %q", abs)
	}
}
