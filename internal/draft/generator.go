// Package draft wraps the external text-generation collaborator. It is the
// only stage on the turn path that can block on the network, so every call
// carries a deadline and every failure is recoverable: callers fall back to
// the shaper's templates instead of surfacing an error to the user.
package draft

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/attune/internal/anthropic"
	"github.com/MikeSquared-Agency/attune/internal/balance"
	"github.com/MikeSquared-Agency/attune/internal/technique"
	"github.com/MikeSquared-Agency/attune/internal/tone"
)

// Completer is the slice of the LLM client the generator needs.
type Completer interface {
	Complete(ctx context.Context, system string, messages []anthropic.Message, maxTokens int) (string, error)
}

type Generator struct {
	llm     Completer
	timeout time.Duration
	logger  *slog.Logger
}

func New(llm Completer, timeout time.Duration, logger *slog.Logger) *Generator {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Generator{llm: llm, timeout: timeout, logger: logger}
}

// Generate produces a draft reply for the turn. An empty string with a nil
// error never happens: either the draft is non-empty or err explains the
// fallback.
func (g *Generator) Generate(ctx context.Context, utterance string, a tone.Analysis, dec technique.Decision, bal balance.Decision) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	balancing := "off"
	if bal.ShouldBalance {
		balancing = "on"
	}
	prompt := fmt.Sprintf(userPromptFormat,
		utterance,
		a.DominantElement,
		a.EnergyLevel,
		dec.Technique,
		bal.Element,
		balancing,
	)

	raw, err := g.llm.Complete(ctx, systemPrompt, []anthropic.Message{
		{Role: "user", Content: prompt},
	}, 512)
	if err != nil {
		return "", fmt.Errorf("draft generation: %w", err)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("draft generation: empty reply")
	}

	g.logger.Debug("draft generated",
		"technique", string(dec.Technique),
		"element", string(a.DominantElement),
		"draft_len", len(raw),
	)
	return raw, nil
}
