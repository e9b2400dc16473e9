package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"broll/internal/handlers"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Store     handlers.ClipStore
	Stats     handlers.StatsProvider
	Engine    handlers.SearchService
	Chat      handlers.ChatSender
	DB        *sql.DB
	ThumbsDir string
	IndexHTML string // Embedded HTML content
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.DB))
		r.Method(http.MethodGet, "/clips", handlers.NewListClipsHandler(deps.Store))
		r.Method(http.MethodGet, "/clips/{id}", handlers.NewGetClipHandler(deps.Store))
		r.Method(http.MethodGet, "/search", handlers.NewSearchHandler(deps.Engine))
		r.Method(http.MethodGet, "/stats", handlers.NewStatsHandler(deps.Stats))
		r.Method(http.MethodGet, "/thumbs/{name}", handlers.NewThumbnailHandler(deps.ThumbsDir))
		r.Method(http.MethodPost, "/chat", handlers.NewChatHandler(deps.Chat))
	})

	// Serve HTML page at root
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(deps.IndexHTML))
	})

	return r
}
