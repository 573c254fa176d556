// Package relay is the NATS transport for companion events: incoming
// utterances and feedback, outgoing shaped turns, breakthroughs, and
// wellbeing alerts.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects attune subscribes to or publishes on.
const (
	SubjectUtteranceReceived    = "companion.utterance.received"
	SubjectFeedbackSubmitted    = "companion.feedback.submitted"
	SubjectTurnShaped           = "companion.turn.shaped"
	SubjectBreakthroughDetected = "companion.breakthrough.detected"
	SubjectWellbeingAlert       = "companion.wellbeing.alert"
	SubjectInsightProposed      = "companion.insight.proposed"
	SubjectPreferenceApplied    = "companion.preference.applied"
	SubjectConversationEnded    = "companion.conversation.ended"
	SubjectSlackReaction        = "swarm.slack.reaction"
)

// FeedbackSignal is emitted back onto the bus when explicit user or reviewer
// feedback adjusts a session's balancing preference or trust level, so
// downstream personalization loops can observe it.
type FeedbackSignal struct {
	UserID          string `json:"user_id"`
	ConversationID  string `json:"conversation_id"`
	DominantElement string `json:"dominant_element"`
	BalanceElement  string `json:"balance_element"`
	FeedbackType    string `json:"feedback_type"` // confirmed | rejected | disabled
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
