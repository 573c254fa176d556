package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MikeSquared-Agency/attune/internal/session"
	"github.com/MikeSquared-Agency/attune/internal/technique"
	"github.com/MikeSquared-Agency/attune/internal/tone"
)

// GetSession loads a user's session memory. A missing row is not an error to
// the engine — callers translate it into a fresh session.
func (s *Store) GetSession(ctx context.Context, userID string) (*session.Memory, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, trust_level, recent_techniques, preferences, breakthroughs, updated_at
		FROM companion_sessions
		WHERE user_id = $1`,
		userID,
	)

	var (
		mem           session.Memory
		techniques    []string
		prefsJSON     []byte
		breakthroughs []time.Time
	)
	err := row.Scan(&mem.UserID, &mem.TrustLevel, &techniques, &prefsJSON, &breakthroughs, &mem.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for _, t := range techniques {
		mem.RecentTechniques = append(mem.RecentTechniques, technique.Technique(t))
	}
	mem.Breakthroughs = breakthroughs

	if len(prefsJSON) > 0 {
		var prefs map[tone.Element]session.ElementPreference
		if err := json.Unmarshal(prefsJSON, &prefs); err != nil {
			// Corrupt preferences degrade to a fresh table rather than
			// failing the turn.
			prefs = nil
		}
		mem.Preferences = prefs
	}

	mem.Normalize()
	return &mem, nil
}

// UpsertSession persists the engine's proposed session memory update.
func (s *Store) UpsertSession(ctx context.Context, mem session.Memory) error {
	techniques := make([]string, len(mem.RecentTechniques))
	for i, t := range mem.RecentTechniques {
		techniques[i] = string(t)
	}

	prefsJSON, err := json.Marshal(mem.Preferences)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO companion_sessions (user_id, trust_level, recent_techniques, preferences, breakthroughs, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id)
		DO UPDATE SET
			trust_level = $2,
			recent_techniques = $3,
			preferences = $4,
			breakthroughs = $5,
			updated_at = now()`,
		mem.UserID, mem.TrustLevel, techniques, prefsJSON, mem.Breakthroughs,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}
