package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/MikeSquared-Agency/attune/internal/engine"
)

// TurnRecord is the flattened journal row the insight detector reads back.
type TurnRecord struct {
	ID                uuid.UUID
	UserID            string
	ConversationID    string
	DominantElement   string
	Technique         string
	Intensity         float64
	RSDFired          bool
	SelfAttackFired   bool
	BreakthroughFired bool
	ProfoundFired     bool
	ElementScores     []float64
	CreatedAt         time.Time
}

// WriteTurn journals a processed turn across the turn tables.
// Tables: companion_turns, turn_phases, turn_voice.
func (s *Store) WriteTurn(ctx context.Context, res *engine.Result, conversationID, utterance string) (uuid.UUID, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	turnID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO companion_turns (id, user_id, conversation_id, utterance, dominant_element, energy_level,
			technique, confidence, intensity, intensity_trend, needs_balancing, balance_element,
			rsd_fired, self_attack_fired, breakthrough_fired, profound_fired, element_scores, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, now())`,
		turnID, res.Memory.UserID, conversationID, utterance,
		string(res.Tone.DominantElement), string(res.Tone.EnergyLevel),
		string(res.Decision.Technique), res.Decision.Confidence,
		res.Intensity.Current, string(res.Intensity.Trend),
		res.Balance.ShouldBalance, string(res.Balance.Element),
		res.Detections.RSD.Fired, res.Detections.SelfAttack.Fired,
		res.Detections.Breakthrough.Fired, res.Detections.Profound.Fired,
		pgVector(res.Tone.ScoreVector()),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert turn: %w", err)
	}

	env := res.Envelope
	_, err = tx.Exec(ctx, `
		INSERT INTO turn_phases (id, turn_id, phase, element, text, transition, duration_ms)
		VALUES ($1, $2, 'mirror', $3, $4, '', $5)`,
		uuid.New(), turnID, string(env.Mirror.Element), env.Mirror.Text, env.Mirror.Duration.Milliseconds(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert mirror phase: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO turn_phases (id, turn_id, phase, element, text, transition, duration_ms)
		VALUES ($1, $2, 'balance', $3, $4, $5, 0)`,
		uuid.New(), turnID, string(env.Balance.Element), env.Balance.Text, env.Balance.Transition,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert balance phase: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO turn_voice (id, turn_id, speed, pitch, emphasis, warmth)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), turnID, env.Voice.Speed, env.Voice.Pitch, env.Voice.Emphasis, env.Voice.Warmth,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert voice params: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}

	return turnID, nil
}

// TurnsWithDetections returns a user's journaled turns where at least one
// detector fired, newest first, for insight clustering.
func (s *Store) TurnsWithDetections(ctx context.Context, userID string, since *time.Time) ([]TurnRecord, error) {
	query := `
		SELECT id, user_id, conversation_id, dominant_element, technique, intensity,
			rsd_fired, self_attack_fired, breakthrough_fired, profound_fired,
			element_scores::text, created_at
		FROM companion_turns
		WHERE user_id = $1
		AND (rsd_fired OR self_attack_fired OR breakthrough_fired OR profound_fired)`

	args := []any{userID}
	if since != nil {
		query += " AND created_at >= $2"
		args = append(args, *since)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var out []TurnRecord
	for rows.Next() {
		var (
			t         TurnRecord
			vectorStr string
		)
		err := rows.Scan(&t.ID, &t.UserID, &t.ConversationID, &t.DominantElement, &t.Technique,
			&t.Intensity, &t.RSDFired, &t.SelfAttackFired, &t.BreakthroughFired, &t.ProfoundFired,
			&vectorStr, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}
		scores, parseErr := ParseVector(vectorStr)
		if parseErr != nil {
			continue // skip rows with malformed vectors
		}
		t.ElementScores = scores
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turn rows: %w", err)
	}
	return out, nil
}
