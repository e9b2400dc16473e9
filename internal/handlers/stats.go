package handlers

import (
	"context"
	"net/http"

	"broll/internal/catalog"
	"broll/internal/contextutil"
)

// StatsProvider is the catalog surface for the stats endpoint.
type StatsProvider interface {
	Stats(ctx context.Context) (*catalog.Stats, error)
}

// StatsHandler handles HTTP requests for catalog statistics.
type StatsHandler struct {
	store StatsProvider
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(store StatsProvider) *StatsHandler {
	return &StatsHandler{store: store}
}

// StatsResponse represents the catalog statistics payload.
type StatsResponse struct {
	TotalClips      int            `json:"total_clips"`
	TotalSizeBytes  int64          `json:"total_size_bytes"`
	TotalDuration   float64        `json:"total_duration_seconds"`
	ClipsByDevice   map[string]int `json:"clips_by_device"`
	AnalyzedClips   int            `json:"analyzed_clips"`
	FailedClips     int            `json:"failed_clips"`
	ClipsWithGPS    int            `json:"clips_with_gps"`
	EmbeddedClips   int            `json:"embedded_clips"`
	EarliestCreated string         `json:"earliest_created,omitempty"`
	LatestCreated   string         `json:"latest_created,omitempty"`
}

// ServeHTTP handles HTTP requests for catalog statistics.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	stats, err := h.store.Stats(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to compute stats", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	writeJSON(w, ctx, http.StatusOK, StatsResponse{
		TotalClips:      stats.TotalClips,
		TotalSizeBytes:  stats.TotalSizeBytes,
		TotalDuration:   stats.TotalDuration,
		ClipsByDevice:   stats.ClipsByDevice,
		AnalyzedClips:   stats.AnalyzedClips,
		FailedClips:     stats.FailedClips,
		ClipsWithGPS:    stats.ClipsWithGPS,
		EmbeddedClips:   stats.EmbeddedClips,
		EarliestCreated: stats.EarliestCreated,
		LatestCreated:   stats.LatestCreated,
	})
}
