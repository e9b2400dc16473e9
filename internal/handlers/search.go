package handlers

import (
	"context"
	"net/http"
	"strings"

	"broll/internal/contextutil"
	"broll/internal/search"
)

// SearchService is the search surface for the search endpoint.
type SearchService interface {
	Search(ctx context.Context, query string, mode search.Mode, limit int) ([]search.Hit, error)
}

// SearchHandler handles HTTP requests for searching the catalog.
type SearchHandler struct {
	engine SearchService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(engine SearchService) *SearchHandler {
	return &SearchHandler{engine: engine}
}

// SearchHit is one result in a search response.
type SearchHit struct {
	Clip      ClipResponse `json:"clip"`
	Score     float64      `json:"score"`
	InLexical bool         `json:"in_lexical"`
	InVector  bool         `json:"in_vector"`
}

// SearchResponse represents the response for the search endpoint.
type SearchResponse struct {
	Query   string      `json:"query"`
	Mode    string      `json:"mode"`
	Results []SearchHit `json:"results"`
}

// ServeHTTP handles HTTP requests for searching the catalog.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Missing query parameter q")
		return
	}
	mode := search.ParseMode(r.URL.Query().Get("mode"))
	limit := queryInt(r, "limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	hits, err := h.engine.Search(ctx, query, mode, limit)
	if err != nil {
		logger.ErrorContext(ctx, "search failed", "query", query, "mode", mode, "error", err)
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	resp := SearchResponse{Query: query, Mode: string(mode), Results: make([]SearchHit, 0, len(hits))}
	for _, hit := range hits {
		resp.Results = append(resp.Results, SearchHit{
			Clip:      toClipResponse(hit.Entry),
			Score:     hit.Score,
			InLexical: hit.InLexical,
			InVector:  hit.InVector,
		})
	}
	writeJSON(w, ctx, http.StatusOK, resp)
}
