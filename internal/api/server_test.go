package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/MikeSquared-Agency/attune/internal/engine"
)

func testServer(token string) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(8760, token, nil, engine.New(nil, logger))
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer("")

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := testServer("")

	req := httptest.NewRequest("GET", "/api/v1/attune/status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["agent"] != "attune" {
		t.Errorf("expected agent attune, got %q", body["agent"])
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := testServer("")

	req := httptest.NewRequest("GET", "/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestProcessTurnEndpoint(t *testing.T) {
	srv := testServer("")

	payload := `{"user_id":"u1","conversation_id":"c1","text":"I am so furious, everything is urgent right now!!"}`
	req := httptest.NewRequest("POST", "/api/v1/turns", strings.NewReader(payload))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body TurnResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Element != "fire" {
		t.Errorf("element = %q, want fire", body.Element)
	}
	if body.Envelope.Mirror.Text == "" {
		t.Error("mirror text must not be empty")
	}
	if body.Technique == "" {
		t.Error("technique must be set")
	}
}

func TestProcessTurnEndpoint_ConcurrentSameUser(t *testing.T) {
	srv := testServer("")

	var wg sync.WaitGroup
	codes := make([]int, 8)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := `{"user_id":"u1","conversation_id":"c1","text":"still thinking this through"}`
			req := httptest.NewRequest("POST", "/api/v1/turns", strings.NewReader(payload))
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, req)
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusOK {
			t.Errorf("request %d: expected 200, got %d", i, code)
		}
	}
}

func TestProcessTurnEndpoint_MissingIDs(t *testing.T) {
	srv := testServer("")

	req := httptest.NewRequest("POST", "/api/v1/turns", strings.NewReader(`{"text":"hi"}`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSessionEndpoint_NoStore(t *testing.T) {
	srv := testServer("")

	req := httptest.NewRequest("GET", "/api/v1/sessions/u1", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without a store, got %d", w.Code)
	}
}

func TestEndConversationEndpoint(t *testing.T) {
	srv := testServer("")

	req := httptest.NewRequest("POST", "/api/v1/conversations/c1/end", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestBearerAuth(t *testing.T) {
	srv := testServer("topsecret")

	// Health stays open.
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("health should not require auth, got %d", w.Code)
	}

	payload := `{"user_id":"u1","conversation_id":"c1","text":"hello"}`

	// Missing token is rejected.
	req = httptest.NewRequest("POST", "/api/v1/turns", strings.NewReader(payload))
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}

	// Wrong token is rejected.
	req = httptest.NewRequest("POST", "/api/v1/turns", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong token, got %d", w.Code)
	}

	// Correct token passes.
	req = httptest.NewRequest("POST", "/api/v1/turns", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer topsecret")
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with correct token, got %d", w.Code)
	}
}
