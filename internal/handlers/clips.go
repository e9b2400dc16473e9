package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"broll/internal/catalog"
	"broll/internal/contextutil"
)

// ClipStore is the catalog surface the clip endpoints read from.
type ClipStore interface {
	List(ctx context.Context, limit, offset int) ([]*catalog.Entry, error)
	GetByID(ctx context.Context, id int64) (*catalog.Entry, error)
}

// ClipResponse is the JSON shape of a catalog entry.
type ClipResponse struct {
	ID              int64    `json:"id"`
	Path            string   `json:"path"`
	Name            string   `json:"name"`
	SizeBytes       int64    `json:"size_bytes"`
	Device          string   `json:"device"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty"`
	Width           *int     `json:"width,omitempty"`
	Height          *int     `json:"height,omitempty"`
	Resolution      string   `json:"resolution,omitempty"`
	FPS             *float64 `json:"fps,omitempty"`
	Codec           string   `json:"codec,omitempty"`
	CreationDate    string   `json:"creation_date,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	LocationName    string   `json:"location_name,omitempty"`
	SceneDescription *string `json:"scene_description,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Mood            *string  `json:"mood,omitempty"`
	CameraMovement  *string  `json:"camera_movement,omitempty"`
	TimeOfDay       *string  `json:"time_of_day,omitempty"`
	ThumbnailURL    string   `json:"thumbnail_url,omitempty"`
	ProcessedAt     string   `json:"processed_at,omitempty"`
}

func toClipResponse(e *catalog.Entry) ClipResponse {
	resp := ClipResponse{
		ID:               e.ID,
		Path:             e.Path,
		Name:             e.Name,
		SizeBytes:        e.SizeBytes,
		Device:           e.Device,
		DurationSeconds:  e.DurationSeconds,
		Width:            e.Width,
		Height:           e.Height,
		Resolution:       e.Resolution,
		FPS:              e.FPS,
		Codec:            e.Codec,
		CreationDate:     e.CreationDate,
		Latitude:         e.Latitude,
		Longitude:        e.Longitude,
		LocationName:     e.LocationName,
		SceneDescription: e.SceneDescription,
		Tags:             e.Tags,
		Mood:             e.Mood,
		CameraMovement:   e.CameraMovement,
		TimeOfDay:        e.TimeOfDay,
	}
	if e.ThumbnailPath != "" {
		resp.ThumbnailURL = "/api/thumbs/" + e.ThumbnailPath
	}
	if !e.ProcessedAt.IsZero() {
		resp.ProcessedAt = e.ProcessedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

// ListClipsHandler handles HTTP requests for listing catalog entries.
type ListClipsHandler struct {
	store ClipStore
}

// NewListClipsHandler creates a new ListClipsHandler.
func NewListClipsHandler(store ClipStore) *ListClipsHandler {
	return &ListClipsHandler{store: store}
}

// ListClipsResponse represents the response for the clip list endpoint.
type ListClipsResponse struct {
	Clips []ClipResponse `json:"clips"`
	Count int            `json:"count"`
}

// ServeHTTP handles HTTP requests for listing catalog entries.
func (h *ListClipsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)

	entries, err := h.store.List(ctx, limit, offset)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list clips", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list clips")
		return
	}

	resp := ListClipsResponse{Clips: make([]ClipResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Clips = append(resp.Clips, toClipResponse(e))
	}
	resp.Count = len(resp.Clips)
	writeJSON(w, ctx, http.StatusOK, resp)
}

// GetClipHandler handles HTTP requests for a single catalog entry.
type GetClipHandler struct {
	store ClipStore
}

// NewGetClipHandler creates a new GetClipHandler.
func NewGetClipHandler(store ClipStore) *GetClipHandler {
	return &GetClipHandler{store: store}
}

// ServeHTTP handles HTTP requests for a single catalog entry.
func (h *GetClipHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid clip id")
		return
	}

	entry, err := h.store.GetByID(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Clip not found")
		return
	}
	if err != nil {
		logger.ErrorContext(ctx, "failed to get clip", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get clip")
		return
	}

	writeJSON(w, ctx, http.StatusOK, toClipResponse(entry))
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, ctx context.Context, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
