package insight

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/attune/internal/store"
)

func record(kind string, scores []float64) store.TurnRecord {
	r := store.TurnRecord{
		ID:              uuid.New(),
		UserID:          "u1",
		DominantElement: "water",
		Technique:       "VALIDATE",
		Intensity:       6.0,
		ElementScores:   scores,
		CreatedAt:       time.Now(),
	}
	switch kind {
	case "rsd":
		r.RSDFired = true
	case "self_attack":
		r.SelfAttackFired = true
	case "breakthrough":
		r.BreakthroughFired = true
	case "profound":
		r.ProfoundFired = true
	}
	return r
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"scaled", []float64{1, 2, 3}, []float64{2, 4, 6}, 1.0},
		{"orthogonal", []float64{1, 0, 0}, []float64{0, 1, 0}, 0.0},
		{"zero vector", []float64{0, 0, 0}, []float64{1, 2, 3}, 0.0},
		{"length mismatch", []float64{1, 2}, []float64{1, 2, 3}, 0.0},
		{"empty", nil, nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("cosineSimilarity() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestClusterTurns_GroupsByKind(t *testing.T) {
	d := NewDetector(nil)

	records := []store.TurnRecord{
		record("rsd", []float64{0.1, 0.8, 0.1, 0.0, 0.0}),
		record("rsd", []float64{0.1, 0.8, 0.1, 0.0, 0.0}),
		record("breakthrough", []float64{0.1, 0.2, 0.1, 0.5, 0.1}),
	}

	clusters := d.clusterTurns(records, 0.85)

	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}

	byKind := make(map[string]TurnCluster)
	for _, c := range clusters {
		byKind[c.Kind] = c
	}
	if byKind["rsd"].Count != 2 {
		t.Errorf("rsd cluster count = %d, want 2", byKind["rsd"].Count)
	}
	if byKind["breakthrough"].Count != 1 {
		t.Errorf("breakthrough cluster count = %d, want 1", byKind["breakthrough"].Count)
	}
}

func TestClusterTurns_SplitsDissimilarScores(t *testing.T) {
	d := NewDetector(nil)

	// Same detector kind but near-orthogonal elemental profiles.
	records := []store.TurnRecord{
		record("rsd", []float64{0.9, 0.1, 0.0, 0.0, 0.0}),
		record("rsd", []float64{0.9, 0.1, 0.0, 0.0, 0.0}),
		record("rsd", []float64{0.0, 0.0, 0.9, 0.1, 0.0}),
	}

	clusters := d.clusterTurns(records, 0.85)

	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}
	counts := []int{clusters[0].Count, clusters[1].Count}
	if counts[0]+counts[1] != 3 {
		t.Errorf("cluster counts %v should cover all 3 turns", counts)
	}
}

func TestClusterTurns_SkipsTurnsWithoutDetections(t *testing.T) {
	d := NewDetector(nil)

	records := []store.TurnRecord{
		record("", []float64{0.2, 0.2, 0.2, 0.2, 0.2}),
	}

	if clusters := d.clusterTurns(records, 0.85); len(clusters) != 0 {
		t.Errorf("expected no clusters for detection-free turns, got %d", len(clusters))
	}
}

func TestPrimaryKind_Precedence(t *testing.T) {
	r := record("breakthrough", nil)
	r.RSDFired = true
	r.SelfAttackFired = true
	r.ProfoundFired = true

	if got := primaryKind(r); got != "breakthrough" {
		t.Errorf("primaryKind() = %q, want breakthrough", got)
	}

	r.BreakthroughFired = false
	if got := primaryKind(r); got != "profound" {
		t.Errorf("primaryKind() = %q, want profound", got)
	}

	r.ProfoundFired = false
	if got := primaryKind(r); got != "rsd" {
		t.Errorf("primaryKind() = %q, want rsd", got)
	}

	r.RSDFired = false
	if got := primaryKind(r); got != "self_attack" {
		t.Errorf("primaryKind() = %q, want self_attack", got)
	}
}
