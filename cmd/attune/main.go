package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/attune/internal/anthropic"
	"github.com/MikeSquared-Agency/attune/internal/api"
	"github.com/MikeSquared-Agency/attune/internal/config"
	"github.com/MikeSquared-Agency/attune/internal/draft"
	"github.com/MikeSquared-Agency/attune/internal/engine"
	"github.com/MikeSquared-Agency/attune/internal/processor"
	"github.com/MikeSquared-Agency/attune/internal/relay"
	"github.com/MikeSquared-Agency/attune/internal/slack"
	"github.com/MikeSquared-Agency/attune/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("attune starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	// Draft generator (optional — without it every turn runs on templates)
	var drafts engine.DraftGenerator
	if cfg.AnthropicAPIKey != "" {
		llm := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		drafts = draft.New(llm, time.Duration(cfg.DraftTimeoutMS)*time.Millisecond, slog.Default())
		slog.Info("draft generator ready", "model", cfg.AnthropicModel, "timeout_ms", cfg.DraftTimeoutMS)
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set — running on fallback templates")
	}

	// Turn engine
	eng := engine.New(drafts, slog.Default())

	// NATS
	relayClient, err := relay.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer relayClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	// Slack poster (optional — attune works without Slack, just no wellbeing review loop)
	var slackPoster *slack.Poster
	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		slackPoster = slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, slog.Default())
		slog.Info("slack poster ready", "channel", cfg.SlackChannel)
	} else {
		slog.Warn("slack not configured — running without wellbeing review loop")
	}

	// Processor — the main pipeline
	proc := processor.New(db, eng, relayClient, slackPoster, slog.Default())

	// Subscribe to conversation events
	if err := relayClient.Subscribe(relay.SubjectUtteranceReceived, proc.HandleUtterance); err != nil {
		slog.Error("failed to subscribe to utterances", "error", err)
		os.Exit(1)
	}
	if err := relayClient.Subscribe(relay.SubjectFeedbackSubmitted, proc.HandleFeedback); err != nil {
		slog.Error("failed to subscribe to feedback", "error", err)
		os.Exit(1)
	}
	if err := relayClient.Subscribe(relay.SubjectConversationEnded, proc.HandleConversationEnded); err != nil {
		slog.Error("failed to subscribe to conversation endings", "error", err)
		os.Exit(1)
	}

	// Subscribe to Slack reactions for the review loop
	if err := relayClient.Subscribe(relay.SubjectSlackReaction, proc.HandleReaction); err != nil {
		slog.Error("failed to subscribe to slack reactions", "error", err)
		os.Exit(1)
	}

	// HTTP API
	srv := api.NewInsightServer(cfg.Port, cfg.APIToken, db, eng, relayClient)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if err := relayClient.Publish("swarm.agent.attune.registered", map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"port":      cfg.Port,
	}); err != nil {
		slog.Warn("failed to publish registration", "error", err)
	}

	slog.Info("attune ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("attune stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
