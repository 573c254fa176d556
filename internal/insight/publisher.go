package insight

import (
	"fmt"
	"time"

	"github.com/MikeSquared-Agency/attune/internal/relay"
)

// InsightEvent is a per-user pattern proposal published for downstream
// personalization loops.
type InsightEvent struct {
	UserID              string        `json:"user_id"`
	Kind                string        `json:"kind"`
	DominantElement     string        `json:"dominant_element"`
	SuggestedTechniques []string      `json:"suggested_techniques"`
	ProposedAdjustment  string        `json:"proposed_adjustment"`
	ClusterSize         int           `json:"cluster_size"`
	Turns               []ClusterTurn `json:"turns"`
	Timestamp           time.Time     `json:"timestamp"`
}

// Publisher publishes insight proposals to NATS.
type Publisher struct {
	relay *relay.Client
}

func NewPublisher(r *relay.Client) *Publisher {
	return &Publisher{relay: r}
}

// PublishInsight publishes a cluster as a proposal on companion.insight.proposed.
func (p *Publisher) PublishInsight(userID string, cluster TurnCluster) error {
	event := InsightEvent{
		UserID:              userID,
		Kind:                cluster.Kind,
		DominantElement:     cluster.DominantElement,
		SuggestedTechniques: cluster.SuggestedTechniques,
		ProposedAdjustment:  generateAdjustment(cluster),
		ClusterSize:         cluster.Count,
		Turns:               cluster.Turns,
		Timestamp:           time.Now().UTC(),
	}

	return p.relay.Publish(relay.SubjectInsightProposed, event)
}

// generateAdjustment creates a human-readable description of the proposal.
func generateAdjustment(cluster TurnCluster) string {
	switch cluster.Kind {
	case "rsd":
		return fmt.Sprintf("Lead with validation earlier: %d rejection-sensitivity turns clustered on %s",
			cluster.Count, cluster.DominantElement)
	case "self_attack":
		return fmt.Sprintf("Interrupt self-blame sooner: %d self-attack turns clustered on %s",
			cluster.Count, cluster.DominantElement)
	case "breakthrough":
		return fmt.Sprintf("Leave room after wins: %d breakthrough turns clustered on %s",
			cluster.Count, cluster.DominantElement)
	case "profound":
		return fmt.Sprintf("Slow down and hold: %d profound-moment turns clustered on %s",
			cluster.Count, cluster.DominantElement)
	default:
		return fmt.Sprintf("Review %d %s turns clustered on %s",
			cluster.Count, cluster.Kind, cluster.DominantElement)
	}
}
