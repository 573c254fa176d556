package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// FeedbackRecord is one explicit preference or review signal about how a
// user's dominant element should be balanced.
type FeedbackRecord struct {
	ID              uuid.UUID
	UserID          string
	DominantElement string
	BalanceElement  string
	Disable         bool
	Source          string // "user" or "review"
	Status          string // pending | applied | rejected
}

// WriteFeedback stores an explicit balancing-preference signal.
func (s *Store) WriteFeedback(ctx context.Context, rec FeedbackRecord) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO companion_feedback (id, user_id, dominant_element, balance_element, disable_balancing, source, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
		id, rec.UserID, rec.DominantElement, rec.BalanceElement, rec.Disable, rec.Source, rec.Status,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert feedback: %w", err)
	}
	return id, nil
}

// UpdateFeedbackStatus marks a feedback record applied or rejected.
func (s *Store) UpdateFeedbackStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE companion_feedback SET status = $1, reviewed_at = now()
		WHERE id = $2`,
		status, id,
	)
	return err
}
