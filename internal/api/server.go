package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/attune/internal/engine"
	"github.com/MikeSquared-Agency/attune/internal/session"
	"github.com/MikeSquared-Agency/attune/internal/store"
)

type Server struct {
	router *chi.Mux
	port   int
	store  *store.Store
	engine *engine.Engine
	users  *session.Locker
}

func NewServer(port int, apiToken string, db *store.Store, eng *engine.Engine) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
		store:  db,
		engine: eng,
		users:  session.NewLocker(),
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/attune/status", s.status)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/turns", s.processTurn)
		r.Get("/sessions/{userID}", s.getSession)
		r.Post("/conversations/{conversationID}/end", s.endConversation)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"agent":  "attune",
		"status": "serving",
	})
}
