package cmd

import (
	_ "embed"
	"fmt"
	"log/slog"
	nethttp "net/http"

	"github.com/spf13/cobra"

	"broll/internal/config"
	"broll/internal/http"
	"broll/internal/llm"
	"broll/internal/search"
	"broll/internal/service"
)

//go:embed index.html
var indexHTML string

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the catalog browser and chat UI",
	Long: `Start the local web server: a clip browser with thumbnails, search
across the catalog, and a chat assistant grounded in the cataloged
footage.

Examples:
  broll web --drive /Volumes/footage`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = store.Close()
		}()

		embedder := llm.NewEmbeddingsClient(cfg.EmbedBaseURL, cfg.APIKey, cfg.EmbedModel, cfg.EmbeddingDim)
		engine := search.NewEngine(store, embedder)
		chatter := llm.NewClient(cfg.ChatBaseURL, cfg.APIKey, cfg.ChatModel)
		chat := service.NewChatService(engine, chatter)

		router := http.NewRouter(&http.Deps{
			Store:     store,
			Stats:     store,
			Engine:    engine,
			Chat:      chat,
			DB:        store.DB(),
			ThumbsDir: config.ThumbsDir(driveRoot),
			IndexHTML: indexHTML,
		})

		addr := cfg.WebHost + ":" + cfg.WebPort
		slog.Info("Starting web server", "addr", addr, "drive", driveRoot)
		fmt.Printf("Serving catalog at http://%s\n", addr)
		return nethttp.ListenAndServe(addr, router)
	},
}

func init() {
	rootCmd.AddCommand(webCmd)
}
