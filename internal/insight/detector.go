// Package insight mines a user's stored turn history for recurring emotional
// patterns: turns where the same detector fired over a similar elemental
// profile are clustered and proposed back to the bus as technique-bias
// adjustments for that user.
package insight

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/attune/internal/store"
)

// TurnCluster represents a group of similar detection turns for one user.
type TurnCluster struct {
	Kind                string        `json:"kind"`
	Count               int           `json:"count"`
	DominantElement     string        `json:"dominant_element"`
	SuggestedTechniques []string      `json:"suggested_techniques"`
	Turns               []ClusterTurn `json:"turns"`
}

// ClusterTurn is a single turn within a cluster.
type ClusterTurn struct {
	ID        uuid.UUID `json:"id"`
	Element   string    `json:"element"`
	Technique string    `json:"technique"`
	Intensity float64   `json:"intensity"`
	CreatedAt time.Time `json:"created_at"`
}

// Detector finds and clusters detection turns for insight proposals.
type Detector struct {
	store *store.Store
}

func NewDetector(s *store.Store) *Detector {
	return &Detector{store: s}
}

// FindClusters loads a user's detection turns and groups them by detector
// kind and element-score similarity.
func (d *Detector) FindClusters(ctx context.Context, userID string, since *time.Time, threshold float64) ([]TurnCluster, error) {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.85 // default cosine similarity threshold
	}

	records, err := d.store.TurnsWithDetections(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("load detection turns: %w", err)
	}

	clusters := d.clusterTurns(records, threshold)

	mapper := NewMapper()
	for i := range clusters {
		clusters[i].SuggestedTechniques = mapper.TechniquesFor(clusters[i].Kind)
	}

	return clusters, nil
}

// clusterTurns groups records by detector kind, then by element-score
// similarity within each kind.
func (d *Detector) clusterTurns(records []store.TurnRecord, threshold float64) []TurnCluster {
	kindGroups := make(map[string][]store.TurnRecord)
	for _, r := range records {
		kind := primaryKind(r)
		if kind == "" {
			continue
		}
		kindGroups[kind] = append(kindGroups[kind], r)
	}

	var clusters []TurnCluster

	for kind, group := range kindGroups {
		for _, cluster := range d.clusterByScores(group, threshold) {
			if len(cluster) == 0 {
				continue
			}

			turns := make([]ClusterTurn, len(cluster))
			for i, r := range cluster {
				turns[i] = ClusterTurn{
					ID:        r.ID,
					Element:   r.DominantElement,
					Technique: r.Technique,
					Intensity: r.Intensity,
					CreatedAt: r.CreatedAt,
				}
			}

			clusters = append(clusters, TurnCluster{
				Kind:            kind,
				Count:           len(cluster),
				DominantElement: cluster[0].DominantElement,
				Turns:           turns,
			})
		}
	}

	return clusters
}

// clusterByScores clusters turns by cosine similarity of their element
// score vectors. Greedy single-pass grouping; good enough at session scale.
func (d *Detector) clusterByScores(records []store.TurnRecord, threshold float64) [][]store.TurnRecord {
	if len(records) == 0 {
		return nil
	}

	var clusters [][]store.TurnRecord
	used := make(map[uuid.UUID]bool)

	for _, r := range records {
		if used[r.ID] {
			continue
		}

		cluster := []store.TurnRecord{r}
		used[r.ID] = true

		for _, other := range records {
			if used[other.ID] || other.ID == r.ID {
				continue
			}
			if cosineSimilarity(r.ElementScores, other.ElementScores) >= threshold {
				cluster = append(cluster, other)
				used[other.ID] = true
			}
		}

		clusters = append(clusters, cluster)
	}

	return clusters
}

// primaryKind picks the most significant detector that fired on a turn.
func primaryKind(r store.TurnRecord) string {
	switch {
	case r.BreakthroughFired:
		return "breakthrough"
	case r.ProfoundFired:
		return "profound"
	case r.RSDFired:
		return "rsd"
	case r.SelfAttackFired:
		return "self_attack"
	default:
		return ""
	}
}

// cosineSimilarity calculates cosine similarity between two vectors.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := 0; i < len(a); i++ {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0.0 || normB == 0.0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
