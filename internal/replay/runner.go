package replay

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/attune/internal/engine"
	"github.com/MikeSquared-Agency/attune/internal/session"
	"github.com/MikeSquared-Agency/attune/internal/store"
)

// Config holds the replay command configuration.
type Config struct {
	ExportDir   string
	Since       time.Time
	Until       time.Time
	DryRun      bool
	MinMessages int
	SingleFile  string // process a single file only
	UserID      string // override when export files carry no user id
}

// Runner replays export files through the turn pipeline. Draft generation is
// disabled: replay only needs the classification, detection, and session
// updates, and templates carry the envelopes.
type Runner struct {
	cfg    Config
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
}

func NewRunner(cfg Config, s *store.Store, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		store:  s,
		engine: engine.New(nil, logger),
		logger: logger,
	}
}

// Run executes the replay process.
func (r *Runner) Run(ctx context.Context) error {
	state, err := LoadState()
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	files, err := r.discoverFiles()
	if err != nil {
		return fmt.Errorf("discover files: %w", err)
	}
	r.logger.Info("export files discovered", "count", len(files))

	type parsedFile struct {
		path   string
		userID string
		msgs   []ConversationMessage
		fp     fileFingerprint
	}

	var parsed []parsedFile
	for _, path := range files {
		if state.IsProcessed(path) {
			continue
		}
		userID, msgs, err := ParseExportFile(path)
		if err != nil {
			r.logger.Warn("failed to parse export file", "path", path, "error", err)
			state.AddError(fmt.Sprintf("parse %s: %v", path, err))
			continue
		}
		if len(msgs) < r.cfg.MinMessages {
			continue
		}
		if !hasUserMessages(msgs) {
			continue
		}
		if !r.inDateRange(msgs) {
			continue
		}
		parsed = append(parsed, parsedFile{
			path:   path,
			userID: userID,
			msgs:   msgs,
			fp:     BuildFingerprint(path, msgs),
		})
	}

	var fps []fileFingerprint
	for _, p := range parsed {
		fps = append(fps, p.fp)
	}
	duplicates := FindDuplicates(fps)

	state.FilesRemaining = len(parsed) - len(duplicates)
	r.logger.Info("files to replay",
		"total", len(parsed),
		"duplicates_skipped", len(duplicates),
	)

	// Session memory is carried across segments and files per user.
	memories := make(map[string]session.Memory)

	for _, pf := range parsed {
		select {
		case <-ctx.Done():
			r.logger.Info("replay interrupted, saving state")
			_ = state.Save()
			return ctx.Err()
		default:
		}

		if duplicates[pf.path] {
			r.logger.Info("skipping duplicate export file", "path", pf.path)
			continue
		}

		userID := r.cfg.UserID
		if userID == "" {
			userID = pf.userID
		}
		if userID == "" {
			r.logger.Warn("export file has no user id, skipping", "path", pf.path)
			state.AddError(fmt.Sprintf("no user id: %s", pf.path))
			continue
		}

		mem, ok := memories[userID]
		if !ok {
			mem = r.loadMemory(ctx, userID)
		}

		r.logger.Info("replaying file", "path", pf.path, "user_id", userID, "messages", len(pf.msgs))

		for _, seg := range SegmentConversation(pf.msgs, filepath.Base(pf.path)) {
			for _, msg := range seg.Messages {
				if msg.Role != "user" {
					continue
				}

				res, err := r.engine.ProcessTurn(ctx, engine.Request{
					Text:           msg.Text,
					Memory:         &mem,
					ConversationID: seg.SessionRef,
					UserID:         userID,
				})
				if err != nil {
					_ = state.Save()
					return err
				}
				mem = res.Memory

				state.TurnsReplayed++
				if res.Detections.Breakthrough.Fired {
					state.Breakthroughs++
				}

				if !r.cfg.DryRun && r.store != nil {
					if _, err := r.store.WriteTurn(ctx, res, seg.SessionRef, msg.Text); err != nil {
						r.logger.Error("failed to persist replayed turn", "session_ref", seg.SessionRef, "error", err)
						state.AddError(fmt.Sprintf("persist %s: %v", seg.SessionRef, err))
					}
				}
			}
			// Each segment is its own conversation; intensity resets.
			r.engine.EndConversation(seg.SessionRef)
		}

		memories[userID] = mem
		state.MarkProcessed(pf.path)
		state.FilesRemaining--
		_ = state.Save()
	}

	for userID, mem := range memories {
		if !r.cfg.DryRun && r.store != nil {
			if err := r.store.UpsertSession(ctx, mem); err != nil {
				r.logger.Error("failed to seed session", "user_id", userID, "error", err)
				state.AddError(fmt.Sprintf("seed %s: %v", userID, err))
				continue
			}
		}
		state.SessionsSeeded++
		r.logger.Info("session seeded",
			"user_id", userID,
			"trust_level", mem.TrustLevel,
			"breakthroughs", len(mem.Breakthroughs),
			"dry_run", r.cfg.DryRun,
		)
	}

	_ = state.Save()

	r.logger.Info("replay complete",
		"turns_replayed", state.TurnsReplayed,
		"breakthroughs", state.Breakthroughs,
		"sessions_seeded", state.SessionsSeeded,
		"dry_run", r.cfg.DryRun,
	)

	fmt.Printf("\n=== Replay Summary ===\n")
	fmt.Printf("Turns replayed: %d\n", state.TurnsReplayed)
	fmt.Printf("Breakthroughs found: %d\n", state.Breakthroughs)
	fmt.Printf("Sessions seeded: %d\n", state.SessionsSeeded)
	fmt.Printf("Errors: %d\n", len(state.Errors))
	if r.cfg.DryRun {
		fmt.Printf("Mode: DRY RUN (no DB writes)\n")
	}
	fmt.Printf("State file: %s\n", expandHome(defaultStatePath))

	return nil
}

func (r *Runner) loadMemory(ctx context.Context, userID string) session.Memory {
	if r.store != nil {
		if loaded, err := r.store.GetSession(ctx, userID); err == nil && loaded != nil {
			return *loaded
		}
	}
	return session.Fresh(userID)
}

func (r *Runner) discoverFiles() ([]string, error) {
	if r.cfg.SingleFile != "" {
		path := expandHome(r.cfg.SingleFile)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("single file not found: %s", path)
		}
		return []string{path}, nil
	}

	dir := expandHome(r.cfg.ExportDir)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("export dir not found: %s", dir)
	}

	var files []string
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip errors
		}
		if !info.IsDir() && strings.HasSuffix(info.Name(), ".jsonl") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		r.logger.Warn("error walking export dir", "dir", dir, "error", err)
	}

	return files, nil
}

func hasUserMessages(msgs []ConversationMessage) bool {
	for _, m := range msgs {
		if m.Role == "user" {
			return true
		}
	}
	return false
}

// inDateRange checks if any message falls within the configured since/until range.
func (r *Runner) inDateRange(msgs []ConversationMessage) bool {
	if r.cfg.Since.IsZero() && r.cfg.Until.IsZero() {
		return true
	}

	for _, m := range msgs {
		if m.Timestamp.IsZero() {
			continue
		}
		if !r.cfg.Since.IsZero() && m.Timestamp.Before(r.cfg.Since) {
			continue
		}
		if !r.cfg.Until.IsZero() && m.Timestamp.After(r.cfg.Until) {
			continue
		}
		return true
	}
	return false
}
