package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/attune/internal/engine"
	"github.com/MikeSquared-Agency/attune/internal/insight"
	"github.com/MikeSquared-Agency/attune/internal/relay"
	"github.com/MikeSquared-Agency/attune/internal/store"
)

// InsightServer extends the base server with pattern-insight scans.
type InsightServer struct {
	*Server
	relay *relay.Client
}

// ScanRequest represents the request payload for insight scans.
type ScanRequest struct {
	UserID    string   `json:"user_id"`
	Since     *string  `json:"since,omitempty"`     // ISO timestamp
	Threshold *float64 `json:"threshold,omitempty"` // similarity threshold
	DryRun    bool     `json:"dry_run"`             // don't publish, just return results
}

// ScanResponse represents the response from insight scans.
type ScanResponse struct {
	Clusters []insight.TurnCluster `json:"clusters"`
	Count    int                   `json:"count"`
	DryRun   bool                  `json:"dry_run"`
}

// NewInsightServer creates a server with insight-scan capabilities.
func NewInsightServer(port int, apiToken string, db *store.Store, eng *engine.Engine, r *relay.Client) *InsightServer {
	base := NewServer(port, apiToken, db, eng)
	is := &InsightServer{
		Server: base,
		relay:  r,
	}

	base.router.Route("/api/v1/insights", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/scan", is.scanInsights)
		r.Get("/scan/{userID}", is.scanInsightsDryRun)
	})

	return is
}

// scanInsights handles POST /api/v1/insights/scan
func (is *InsightServer) scanInsights(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"invalid JSON: %v"}`, err), http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, `{"error":"user_id is required"}`, http.StatusBadRequest)
		return
	}

	clusters, err := is.performScan(r.Context(), &req)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"scan failed: %v"}`, err), http.StatusInternalServerError)
		return
	}

	if !req.DryRun && len(clusters) > 0 && is.relay != nil {
		publisher := insight.NewPublisher(is.relay)
		for _, cluster := range clusters {
			if err := publisher.PublishInsight(req.UserID, cluster); err != nil {
				// Log error but don't fail the request
				slog.Warn("failed to publish insight proposal",
					"kind", cluster.Kind,
					"cluster_size", cluster.Count,
					"error", err)
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ScanResponse{
		Clusters: clusters,
		Count:    len(clusters),
		DryRun:   req.DryRun,
	})
}

// scanInsightsDryRun handles GET /api/v1/insights/scan/{userID}
func (is *InsightServer) scanInsightsDryRun(w http.ResponseWriter, r *http.Request) {
	req := ScanRequest{
		UserID: chi.URLParam(r, "userID"),
		DryRun: true,
	}

	if since := r.URL.Query().Get("since"); since != "" {
		req.Since = &since
	}

	if thresholdStr := r.URL.Query().Get("threshold"); thresholdStr != "" {
		threshold, err := strconv.ParseFloat(thresholdStr, 64)
		if err != nil {
			http.Error(w, fmt.Sprintf(`{"error":"invalid threshold: %v"}`, err), http.StatusBadRequest)
			return
		}
		req.Threshold = &threshold
	}

	clusters, err := is.performScan(r.Context(), &req)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"scan failed: %v"}`, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ScanResponse{
		Clusters: clusters,
		Count:    len(clusters),
		DryRun:   true,
	})
}

// performScan executes the detection and clustering logic.
func (is *InsightServer) performScan(ctx context.Context, req *ScanRequest) ([]insight.TurnCluster, error) {
	if is.store == nil {
		return nil, fmt.Errorf("turn store not configured")
	}

	detector := insight.NewDetector(is.store)

	var since *time.Time
	if req.Since != nil {
		t, err := time.Parse(time.RFC3339, *req.Since)
		if err != nil {
			return nil, fmt.Errorf("invalid since timestamp: %w", err)
		}
		since = &t
	}

	threshold := 0.85
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	return detector.FindClusters(ctx, req.UserID, since, threshold)
}
