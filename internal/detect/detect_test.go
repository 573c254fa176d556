package detect

import (
	"strings"
	"testing"
)

func TestRSD(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		fired bool
	}{
		{"social judgment language", "everyone thinks i'm weird, they were laughing at me", true},
		{"exclusion language", "they didn't invite me, i got left me out of everything", true},
		{"single weak marker does not fire", "everyone went home early", false},
		{"neutral text", "the meeting was fine and we shipped on time", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RSD(strings.ToLower(tt.text))
			if got.Fired != tt.fired {
				t.Errorf("RSD(%q).Fired = %v (score %f), want %v", tt.text, got.Fired, got.Score, tt.fired)
			}
			if got.Fired && len(got.Matched) == 0 {
				t.Error("fired result must carry matched phrases")
			}
		})
	}
}

func TestSelfAttack(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		fired bool
	}{
		{"self-blame alone", "i'm so stupid, i always mess this up", true},
		{"exec-function language alone does not fire", "i can't focus today", false},
		{"neutral text", "i finished the report", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelfAttack(strings.ToLower(tt.text))
			if got.Fired != tt.fired {
				t.Errorf("SelfAttack(%q).Fired = %v (score %f), want %v", tt.text, got.Fired, got.Score, tt.fired)
			}
		})
	}
}

func TestSelfAttack_ComboAmplifies(t *testing.T) {
	blameOnly := SelfAttack("i'm so stupid")
	combo := SelfAttack("why can't i just start the task like everyone else can? i'm so stupid")

	if !combo.Fired {
		t.Fatal("combo should fire")
	}
	if combo.Score <= blameOnly.Score {
		t.Errorf("combo score %f should exceed blame-only score %f", combo.Score, blameOnly.Score)
	}
}

func TestBreakthrough(t *testing.T) {
	got := Breakthrough("wait... maybe it's not that extreme", nil)
	if !got.Fired {
		t.Errorf("hedge-then-insight should fire, score %f", got.Score)
	}

	got = Breakthrough("the weather is nice", nil)
	if got.Fired {
		t.Errorf("neutral text should not fire, score %f", got.Score)
	}
}

func TestBreakthrough_RecentDistressBoost(t *testing.T) {
	text := "i guess that's true"

	alone := Breakthrough(text, nil)
	if alone.Fired {
		t.Fatalf("weak hedge should not fire without context, score %f", alone.Score)
	}

	boosted := Breakthrough(text, []string{"nobody likes me"})
	if !boosted.Fired {
		t.Errorf("weak hedge after distress turn should fire, score %f", boosted.Score)
	}
}

func TestProfound(t *testing.T) {
	got := Profound("something shifted in my consciousness")
	if !got.Fired {
		t.Errorf("transformation language should fire, score %f", got.Score)
	}

	got = Profound("just a regular tuesday")
	if got.Fired {
		t.Errorf("neutral text should not fire, score %f", got.Score)
	}
}

func TestRun_ThreeTurnSequence(t *testing.T) {
	turn1 := "nobody likes me, they're all talking about me"
	turn2 := "i'm so stupid, what's wrong with me"
	turn3 := "wait... maybe it's not that bad, i guess i was wrong"

	s1 := Run(turn1, nil)
	if !s1.RSD.Fired {
		t.Errorf("turn 1 should fire rsd, score %f", s1.RSD.Score)
	}
	if s1.Breakthrough.Fired {
		t.Error("turn 1 should not fire breakthrough")
	}

	s2 := Run(turn2, []string{turn1})
	if !s2.SelfAttack.Fired {
		t.Errorf("turn 2 should fire self-attack, score %f", s2.SelfAttack.Score)
	}

	s3 := Run(turn3, []string{turn1, turn2})
	if !s3.Breakthrough.Fired {
		t.Errorf("turn 3 should fire breakthrough, score %f", s3.Breakthrough.Score)
	}
}

func TestSet_Any(t *testing.T) {
	if (Set{}).Any() {
		t.Error("empty set should report no detections")
	}

	s := Run("i hate myself", nil)
	if !s.Any() {
		t.Error("set with a fired detector should report Any")
	}

	if Run("", nil).Any() {
		t.Error("empty text should fire nothing")
	}
}
