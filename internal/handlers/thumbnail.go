package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ThumbnailHandler serves thumbnail images from the catalog's thumbs
// directory.
type ThumbnailHandler struct {
	thumbsDir string
}

// NewThumbnailHandler creates a new ThumbnailHandler.
func NewThumbnailHandler(thumbsDir string) *ThumbnailHandler {
	return &ThumbnailHandler{thumbsDir: thumbsDir}
}

// ServeHTTP serves a single thumbnail by file name.
func (h *ThumbnailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	// Thumbnail names are fingerprint hex plus .jpg; anything with path
	// structure is a traversal attempt.
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		writeError(w, http.StatusBadRequest, "Invalid thumbnail name")
		return
	}

	path := filepath.Join(h.thumbsDir, name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "Thumbnail not found")
		return
	}
	http.ServeFile(w, r, path)
}
