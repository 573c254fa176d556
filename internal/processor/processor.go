// Package processor wires the turn engine to the outside world: it consumes
// utterance and feedback events from NATS, persists turns and sessions,
// publishes shaped responses, and runs the Slack wellbeing review loop.
package processor

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/attune/internal/engine"
	"github.com/MikeSquared-Agency/attune/internal/relay"
	"github.com/MikeSquared-Agency/attune/internal/session"
	"github.com/MikeSquared-Agency/attune/internal/slack"
	"github.com/MikeSquared-Agency/attune/internal/store"
	"github.com/MikeSquared-Agency/attune/internal/tone"
	"github.com/MikeSquared-Agency/attune/internal/trust"
)

const (
	// alertIntensityAt and alertStreak gate the sustained-intensity wellbeing
	// alert: the conversation has to hold at or above this reading for this
	// many consecutive turns before the channel hears about it.
	alertIntensityAt = 7.5
	alertStreak      = 3
)

// UtteranceEvent is the inbound turn payload from the voice/text gateway.
type UtteranceEvent struct {
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
	Draft          string `json:"draft,omitempty"`
}

// FeedbackEvent is an explicit user signal about how their dominant element
// should be balanced, or a rupture report when a response landed badly.
type FeedbackEvent struct {
	UserID          string `json:"user_id"`
	ConversationID  string `json:"conversation_id"`
	DominantElement string `json:"dominant_element"`
	BalanceElement  string `json:"balance_element"`
	Disable         bool   `json:"disable"`
	Rupture         bool   `json:"rupture"`
}

// pendingAlert tracks a posted wellbeing alert awaiting a reviewer reaction.
type pendingAlert struct {
	UserID          string
	ConversationID  string
	DominantElement string
	BalanceElement  string
}

// Processor orchestrates attune's turn pipeline around the engine.
type Processor struct {
	store  *store.Store
	engine *engine.Engine
	relay  *relay.Client
	slack  *slack.Poster
	logger *slog.Logger
	users  *session.Locker

	mu            sync.Mutex
	pendingAlerts map[string]*pendingAlert // keyed by Slack message TS
	highStreaks   map[string]int           // conversation -> consecutive high-intensity turns
	alerted       map[string]bool          // conversation -> alert already posted
}

func New(s *store.Store, eng *engine.Engine, r *relay.Client, sl *slack.Poster, logger *slog.Logger) *Processor {
	return &Processor{
		store:         s,
		engine:        eng,
		relay:         r,
		slack:         sl,
		logger:        logger,
		users:         session.NewLocker(),
		pendingAlerts: make(map[string]*pendingAlert),
		highStreaks:   make(map[string]int),
		alerted:       make(map[string]bool),
	}
}

// HandleUtterance is the NATS handler for companion.utterance.received.
func (p *Processor) HandleUtterance(subject string, data []byte) {
	ctx := context.Background()

	var evt UtteranceEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse utterance event", "error", err)
		return
	}
	if evt.UserID == "" || evt.ConversationID == "" {
		p.logger.Warn("utterance event missing ids, dropping")
		return
	}

	// Load, process, and store under the per-user lock so a concurrent
	// feedback or review update is never clobbered by this turn's snapshot.
	unlock := p.users.Lock(evt.UserID)
	defer unlock()

	var mem *session.Memory
	if p.store != nil {
		loaded, err := p.store.GetSession(ctx, evt.UserID)
		if err != nil {
			p.logger.Warn("session load failed, starting fresh", "user_id", evt.UserID, "error", err)
		} else {
			mem = loaded
		}
	}

	res, err := p.engine.ProcessTurn(ctx, engine.Request{
		Text:           evt.Text,
		Draft:          evt.Draft,
		Memory:         mem,
		ConversationID: evt.ConversationID,
		UserID:         evt.UserID,
	})
	if err != nil {
		p.logger.Error("turn processing failed", "conversation_id", evt.ConversationID, "error", err)
		return
	}

	if p.store != nil {
		if _, err := p.store.WriteTurn(ctx, res, evt.ConversationID, evt.Text); err != nil {
			p.logger.Error("failed to persist turn", "conversation_id", evt.ConversationID, "error", err)
		}
		if err := p.store.UpsertSession(ctx, res.Memory); err != nil {
			p.logger.Error("failed to persist session", "user_id", evt.UserID, "error", err)
		}
	}

	if err := p.relay.Publish(relay.SubjectTurnShaped, map[string]any{
		"user_id":         evt.UserID,
		"conversation_id": evt.ConversationID,
		"envelope":        res.Envelope,
	}); err != nil {
		p.logger.Error("failed to publish shaped turn", "error", err)
	}

	if res.Detections.Breakthrough.Fired {
		if err := p.relay.Publish(relay.SubjectBreakthroughDetected, map[string]any{
			"user_id":         evt.UserID,
			"conversation_id": evt.ConversationID,
			"profound":        res.Detections.Profound.Fired,
			"intensity":       res.Intensity.Current,
		}); err != nil {
			p.logger.Error("failed to publish breakthrough", "error", err)
		}
		p.postAlert(ctx, evt, res, "breakthrough", 1)
	}

	p.trackIntensity(ctx, evt, res)
}

// trackIntensity maintains the per-conversation high-intensity streak and
// posts a sustained-intensity alert once per conversation.
func (p *Processor) trackIntensity(ctx context.Context, evt UtteranceEvent, res *engine.Result) {
	p.mu.Lock()
	if res.Intensity.Current >= alertIntensityAt {
		p.highStreaks[evt.ConversationID]++
	} else {
		p.highStreaks[evt.ConversationID] = 0
		delete(p.alerted, evt.ConversationID)
	}
	streak := p.highStreaks[evt.ConversationID]
	already := p.alerted[evt.ConversationID]
	if streak >= alertStreak && !already {
		p.alerted[evt.ConversationID] = true
	}
	p.mu.Unlock()

	if streak < alertStreak || already {
		return
	}

	if err := p.relay.Publish(relay.SubjectWellbeingAlert, map[string]any{
		"user_id":         evt.UserID,
		"conversation_id": evt.ConversationID,
		"intensity":       res.Intensity.Current,
		"trend":           string(res.Intensity.Trend),
		"turns_at_peak":   streak,
	}); err != nil {
		p.logger.Error("failed to publish wellbeing alert", "error", err)
	}

	p.postAlert(ctx, evt, res, "sustained_intensity", streak)
}

func (p *Processor) postAlert(ctx context.Context, evt UtteranceEvent, res *engine.Result, kind string, turnsAtPeak int) {
	if p.slack == nil {
		return
	}

	ts, err := p.slack.PostAlert(ctx, slack.Alert{
		UserRef:     shortRef(evt.UserID),
		Kind:        kind,
		Intensity:   res.Intensity.Current,
		Trend:       string(res.Intensity.Trend),
		Element:     string(res.Tone.DominantElement),
		Technique:   string(res.Decision.Technique),
		TurnsAtPeak: turnsAtPeak,
	})
	if err != nil {
		p.logger.Error("slack post failed", "error", err)
		return
	}

	p.mu.Lock()
	p.pendingAlerts[ts] = &pendingAlert{
		UserID:          evt.UserID,
		ConversationID:  evt.ConversationID,
		DominantElement: string(res.Tone.DominantElement),
		BalanceElement:  string(res.Balance.Element),
	}
	p.mu.Unlock()
}

// HandleFeedback is the NATS handler for companion.feedback.submitted.
func (p *Processor) HandleFeedback(subject string, data []byte) {
	ctx := context.Background()

	var evt FeedbackEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse feedback event", "error", err)
		return
	}
	if evt.UserID == "" {
		p.logger.Warn("feedback event missing user_id, dropping")
		return
	}

	unlock := p.users.Lock(evt.UserID)
	defer unlock()

	mem := p.loadOrFresh(ctx, evt.UserID)
	now := time.Now().UTC()

	feedbackType := "confirmed"
	switch {
	case evt.Rupture:
		mem.RecordRupture(true)
		feedbackType = "rejected"
	default:
		dominant, ok := parseElement(evt.DominantElement)
		if !ok {
			p.logger.Warn("feedback has unknown dominant element", "element", evt.DominantElement)
			return
		}
		balanceEl, ok := parseElement(evt.BalanceElement)
		if !ok && !evt.Disable {
			p.logger.Warn("feedback has unknown balance element", "element", evt.BalanceElement)
			return
		}
		mem.ApplyExplicitPreference(dominant, balanceEl, evt.Disable, now)
		if evt.Disable {
			feedbackType = "disabled"
		}
	}
	mem.UpdatedAt = now

	if p.store != nil {
		if err := p.store.UpsertSession(ctx, mem); err != nil {
			p.logger.Error("failed to persist session", "user_id", evt.UserID, "error", err)
		}
		if _, err := p.store.WriteFeedback(ctx, store.FeedbackRecord{
			UserID:          evt.UserID,
			DominantElement: evt.DominantElement,
			BalanceElement:  evt.BalanceElement,
			Disable:         evt.Disable,
			Source:          "user",
			Status:          "applied",
		}); err != nil {
			p.logger.Error("failed to persist feedback", "user_id", evt.UserID, "error", err)
		}
	}

	if err := p.relay.Publish(relay.SubjectPreferenceApplied, relay.FeedbackSignal{
		UserID:          evt.UserID,
		ConversationID:  evt.ConversationID,
		DominantElement: evt.DominantElement,
		BalanceElement:  evt.BalanceElement,
		FeedbackType:    feedbackType,
	}); err != nil {
		p.logger.Error("failed to publish preference applied", "error", err)
	}

	p.logger.Info("feedback applied",
		"user_id", evt.UserID,
		"type", feedbackType,
		"dominant", evt.DominantElement,
		"balance", evt.BalanceElement,
	)
}

// HandleReaction processes Slack reaction feedback on wellbeing alerts.
// A confirmation means the approach landed; a rejection means it missed and
// counts as a soft rupture against the session's trust level.
func (p *Processor) HandleReaction(subject string, data []byte) {
	ctx := context.Background()

	evt, err := slack.ParseReactionEvent(data)
	if err != nil {
		p.logger.Error("failed to parse reaction", "error", err)
		return
	}

	verdict := slack.ParseReaction(evt.Reaction)
	if verdict == slack.VerdictUnknown {
		return
	}

	p.mu.Lock()
	alert, ok := p.pendingAlerts[evt.MessageTS]
	if ok {
		delete(p.pendingAlerts, evt.MessageTS)
	}
	p.mu.Unlock()
	if !ok {
		return // not a message we're tracking
	}

	p.logger.Info("processing review reaction",
		"reaction", evt.Reaction,
		"verdict", string(verdict),
		"user_id", alert.UserID,
	)

	unlock := p.users.Lock(alert.UserID)
	defer unlock()

	mem := p.loadOrFresh(ctx, alert.UserID)
	switch verdict {
	case slack.VerdictConfirmed:
		mem.TrustLevel = trust.UpdateScore(mem.TrustLevel, "validated", true)
	case slack.VerdictRejected:
		mem.RecordRupture(false)
	case slack.VerdictSkipped:
		// no session change
	}
	mem.UpdatedAt = time.Now().UTC()

	if p.store != nil {
		if err := p.store.UpsertSession(ctx, mem); err != nil {
			p.logger.Error("failed to persist session", "user_id", alert.UserID, "error", err)
		}
		if _, err := p.store.WriteFeedback(ctx, store.FeedbackRecord{
			UserID:          alert.UserID,
			DominantElement: alert.DominantElement,
			BalanceElement:  alert.BalanceElement,
			Source:          "review",
			Status:          string(verdict),
		}); err != nil {
			p.logger.Error("failed to persist review feedback", "error", err)
		}
	}

	if err := p.relay.Publish(relay.SubjectPreferenceApplied, relay.FeedbackSignal{
		UserID:          alert.UserID,
		ConversationID:  alert.ConversationID,
		DominantElement: alert.DominantElement,
		BalanceElement:  alert.BalanceElement,
		FeedbackType:    string(verdict),
	}); err != nil {
		p.logger.Error("failed to publish review signal", "error", err)
	}

	if verdict == slack.VerdictRejected && p.slack != nil {
		if err := p.slack.PostThread(ctx, evt.MessageTS, "What missed here? A short note on what the user needed is the highest-value tuning signal."); err != nil {
			p.logger.Error("failed to post correction thread", "error", err)
		}
	}
}

// HandleConversationEnded drops working state for a finished conversation.
func (p *Processor) HandleConversationEnded(subject string, data []byte) {
	var evt struct {
		ConversationID string `json:"conversation_id"`
	}
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse conversation ended event", "error", err)
		return
	}
	if evt.ConversationID == "" {
		return
	}

	p.engine.EndConversation(evt.ConversationID)

	p.mu.Lock()
	delete(p.highStreaks, evt.ConversationID)
	delete(p.alerted, evt.ConversationID)
	p.mu.Unlock()

	p.logger.Info("conversation ended", "conversation_id", evt.ConversationID)
}

func (p *Processor) loadOrFresh(ctx context.Context, userID string) session.Memory {
	if p.store != nil {
		if loaded, err := p.store.GetSession(ctx, userID); err == nil && loaded != nil {
			return *loaded
		}
	}
	return session.Fresh(userID)
}

func parseElement(s string) (tone.Element, bool) {
	for _, e := range tone.Elements() {
		if string(e) == s {
			return e, true
		}
	}
	return "", false
}

// shortRef keeps raw user ids out of the review channel.
func shortRef(userID string) string {
	if len(userID) > 8 {
		return userID[:8]
	}
	return userID
}
