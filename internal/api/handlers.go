package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/attune/internal/engine"
	"github.com/MikeSquared-Agency/attune/internal/session"
	"github.com/MikeSquared-Agency/attune/internal/shaper"
)

// TurnRequest is the synchronous turn-processing payload. NATS carries the
// live voice path; this endpoint serves text clients and integration tests.
type TurnRequest struct {
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
	Text           string `json:"text"`
	Draft          string `json:"draft,omitempty"`
}

type TurnResponse struct {
	Envelope     shaper.Envelope `json:"envelope"`
	Element      string          `json:"element"`
	Energy       string          `json:"energy"`
	Technique    string          `json:"technique"`
	Intensity    float64         `json:"intensity"`
	Trend        string          `json:"trend"`
	Balancing    bool            `json:"balancing"`
	Breakthrough bool            `json:"breakthrough"`
}

func (s *Server) processTurn(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"invalid JSON: %v"}`, err), http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.ConversationID == "" {
		http.Error(w, `{"error":"user_id and conversation_id are required"}`, http.StatusBadRequest)
		return
	}

	// Same serialization as the event path: load, process, and store under
	// the per-user lock so concurrent requests don't overwrite each other.
	unlock := s.users.Lock(req.UserID)
	defer unlock()

	var mem *session.Memory
	if s.store != nil {
		loaded, err := s.store.GetSession(r.Context(), req.UserID)
		if err != nil {
			slog.Warn("session load failed, starting fresh", "user_id", req.UserID, "error", err)
		} else {
			mem = loaded
		}
	}

	res, err := s.engine.ProcessTurn(r.Context(), engine.Request{
		Text:           req.Text,
		Draft:          req.Draft,
		Memory:         mem,
		ConversationID: req.ConversationID,
		UserID:         req.UserID,
	})
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"turn processing failed: %v"}`, err), http.StatusInternalServerError)
		return
	}

	if s.store != nil {
		if _, err := s.store.WriteTurn(r.Context(), res, req.ConversationID, req.Text); err != nil {
			slog.Error("failed to persist turn", "conversation_id", req.ConversationID, "error", err)
		}
		if err := s.store.UpsertSession(r.Context(), res.Memory); err != nil {
			slog.Error("failed to persist session", "user_id", req.UserID, "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TurnResponse{
		Envelope:     res.Envelope,
		Element:      string(res.Tone.DominantElement),
		Energy:       string(res.Tone.EnergyLevel),
		Technique:    string(res.Decision.Technique),
		Intensity:    res.Intensity.Current,
		Trend:        string(res.Intensity.Trend),
		Balancing:    res.Balance.ShouldBalance,
		Breakthrough: res.Detections.Breakthrough.Fired,
	})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		http.Error(w, `{"error":"userID is required"}`, http.StatusBadRequest)
		return
	}

	if s.store == nil {
		http.Error(w, `{"error":"session store not configured"}`, http.StatusServiceUnavailable)
		return
	}

	mem, err := s.store.GetSession(r.Context(), userID)
	if err != nil {
		http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(mem)
}

func (s *Server) endConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if conversationID == "" {
		http.Error(w, `{"error":"conversationID is required"}`, http.StatusBadRequest)
		return
	}

	s.engine.EndConversation(conversationID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ended"})
}
