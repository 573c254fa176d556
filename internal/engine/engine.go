// Package engine composes the classifier, detectors, intensity tracker,
// technique selector, balancing policy, and response shaper into the
// single-call turn contract: utterance in, envelope plus proposed state
// updates out. The engine never fails a turn — degenerate input classifies
// to a valid default and collaborator failures degrade to templates.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/attune/internal/balance"
	"github.com/MikeSquared-Agency/attune/internal/detect"
	"github.com/MikeSquared-Agency/attune/internal/intensity"
	"github.com/MikeSquared-Agency/attune/internal/session"
	"github.com/MikeSquared-Agency/attune/internal/shaper"
	"github.com/MikeSquared-Agency/attune/internal/technique"
	"github.com/MikeSquared-Agency/attune/internal/tone"
)

// DraftGenerator is the external text-generation collaborator. It may be nil;
// the engine then runs entirely on fallback templates.
type DraftGenerator interface {
	Generate(ctx context.Context, utterance string, a tone.Analysis, dec technique.Decision, bal balance.Decision) (string, error)
}

// Request is one turn's input. ConversationID and UserID are opaque keys;
// the engine does not validate their format.
type Request struct {
	Text           string
	Draft          string // pre-generated reply; empty triggers the generator or fallback
	Memory         *session.Memory
	ConversationID string
	UserID         string
}

// Result is the engine output the caller is responsible for persisting.
type Result struct {
	Envelope   shaper.Envelope
	Memory     session.Memory
	Intensity  intensity.State
	Tone       tone.Analysis
	Decision   technique.Decision
	Detections detect.Set
	Balance    balance.Decision
}

// recentTextWindow is how many prior user turns the breakthrough detector
// gets to look back over.
const recentTextWindow = 3

// conversation is the engine's per-conversation working state. Its mutex
// serializes overlapping turns for the same conversation so session updates
// are read-then-write safe.
type conversation struct {
	mu          sync.Mutex
	intensity   intensity.State
	turnIndex   int
	recentTexts []string
}

type Engine struct {
	drafts DraftGenerator
	logger *slog.Logger

	mu     sync.Mutex
	convos map[string]*conversation
}

func New(drafts DraftGenerator, logger *slog.Logger) *Engine {
	return &Engine{
		drafts: drafts,
		logger: logger,
		convos: make(map[string]*conversation),
	}
}

// ProcessTurn runs one utterance through the full pipeline. It always
// returns a complete Result; the error is reserved for a context that was
// already cancelled before any work happened.
func (e *Engine) ProcessTurn(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conv := e.conversation(req.ConversationID)
	conv.mu.Lock()
	defer conv.mu.Unlock()

	mem := session.Fresh(req.UserID)
	if req.Memory != nil {
		// Deep copy so updates are proposed on the result, never written
		// through the caller's maps and slices.
		mem = req.Memory.Clone()
	}
	mem.Normalize()

	// Classifier and detectors are independent reads over the same text;
	// they compose into later stages in either order.
	analysis := tone.Analyze(req.Text)
	detections := detect.Run(req.Text, conv.recentTexts)
	calming := intensity.Calming(req.Text)

	state := intensity.Update(conv.intensity, analysis, detections, calming)

	decision := technique.Select(technique.Input{
		Text:       req.Text,
		Tone:       analysis,
		Detections: detections,
		Intensity:  state,
		TurnIndex:  conv.turnIndex,
		Recent:     mem.RecentTechniques,
	})

	bal := balance.Decide(analysis, &mem)

	draftText := req.Draft
	if draftText == "" && e.drafts != nil {
		generated, err := e.drafts.Generate(ctx, req.Text, analysis, decision, bal)
		if err != nil {
			// Collaborator failure is never fatal; templates carry the turn.
			e.logger.Warn("draft generation failed, using fallback templates",
				"conversation_id", req.ConversationID,
				"error", err,
			)
		} else {
			draftText = generated
		}
	}

	envelope := shaper.Shape(draftText, decision, analysis, bal)

	now := time.Now().UTC()
	profound := detections.Profound.Fired
	if detections.Breakthrough.Fired {
		mem.RecordBreakthrough(now, profound)
	} else {
		mem.RecordRoutineTurn(profound)
	}
	mem.RecordTechnique(decision.Technique)
	if bal.ShouldBalance {
		mem.NudgeImplicitPreference(analysis.DominantElement, bal.Element, now)
	}
	mem.UpdatedAt = now

	conv.intensity = state
	conv.turnIndex++
	conv.recentTexts = append(conv.recentTexts, req.Text)
	if len(conv.recentTexts) > recentTextWindow {
		conv.recentTexts = conv.recentTexts[len(conv.recentTexts)-recentTextWindow:]
	}

	e.logger.Info("turn processed",
		"conversation_id", req.ConversationID,
		"element", string(analysis.DominantElement),
		"energy", string(analysis.EnergyLevel),
		"technique", string(decision.Technique),
		"intensity", state.Current,
		"balancing", bal.ShouldBalance,
	)

	return &Result{
		Envelope:   envelope,
		Memory:     mem,
		Intensity:  state,
		Tone:       analysis,
		Decision:   decision,
		Detections: detections,
		Balance:    bal,
	}, nil
}

// EndConversation drops the working state for a conversation. Intensity is
// conversation-scoped; a new conversation starts from zero.
func (e *Engine) EndConversation(conversationID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.convos, conversationID)
}

func (e *Engine) conversation(id string) *conversation {
	e.mu.Lock()
	defer e.mu.Unlock()
	conv, ok := e.convos[id]
	if !ok {
		conv = &conversation{intensity: intensity.NewState()}
		e.convos[id] = conv
	}
	return conv
}
