// Package slack is the optional human review loop: sustained high-intensity
// sessions and breakthroughs are posted to a companion channel, and reviewer
// reactions feed back into session trust and balancing preferences. Attune
// runs fine without Slack configured.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// Alert summarizes why a session was surfaced for review. UserRef is an
// opaque short reference, never raw utterance text — the review channel sees
// trajectory, not content.
type Alert struct {
	UserRef     string
	Kind        string // "sustained_intensity" or "breakthrough"
	Intensity   float64
	Trend       string
	Element     string
	Technique   string
	TurnsAtPeak int
}

// PostAlert posts a wellbeing alert for review. Returns the message
// timestamp (ts) used for tracking reviewer reactions.
func (p *Poster) PostAlert(ctx context.Context, a Alert) (string, error) {
	text := formatAlert(a)

	body, err := json.Marshal(map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
			{
				"type": "context",
				"elements": []map[string]any{
					{
						"type": "mrkdwn",
						"text": "React: :+1: approach landed | :-1: approach missed | :shrug: unclear",
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}

	p.logger.Info("posted wellbeing alert", "ts", slackResp.TS, "user_ref", a.UserRef, "kind", a.Kind)
	return slackResp.TS, nil
}

// PostThread posts a threaded reply to a message.
func (p *Poster) PostThread(ctx context.Context, threadTS, text string) error {
	body, err := json.Marshal(map[string]any{
		"channel":   p.channel,
		"thread_ts": threadTS,
		"text":      text,
	})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return fmt.Errorf("slack error: %s", slackResp.Error)
	}
	return nil
}

func formatAlert(a Alert) string {
	switch a.Kind {
	case "breakthrough":
		return fmt.Sprintf(
			"*Breakthrough* — user `%s`\nElement: %s | Technique: %s | Intensity: %.1f (%s)",
			a.UserRef, a.Element, a.Technique, a.Intensity, a.Trend,
		)
	default:
		return fmt.Sprintf(
			"*Sustained high intensity* — user `%s`\nIntensity %.1f (%s) for %d turns | Element: %s | Technique: %s",
			a.UserRef, a.Intensity, a.Trend, a.TurnsAtPeak, a.Element, a.Technique,
		)
	}
}
