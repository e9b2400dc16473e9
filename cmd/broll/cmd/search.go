package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"broll/internal/llm"
	"broll/internal/search"
)

var (
	searchMode  string
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog",
	Long: `Search cataloged clips by keyword, by meaning, or both.

Hybrid mode (the default) fuses full-text and vector rankings; keyword
mode uses full-text search only and needs no model; semantic mode ranks
by embedding similarity only.

Examples:
  broll search "golden hour drone over coastline"
  broll search sunset --mode keyword
  broll search "people laughing" --mode semantic --limit 5`,
	Args: cobra.ExactArgs(1),
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

		hits, err := engine.Search(ctx, args[0], search.ParseMode(searchMode), searchLimit)
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			fmt.Println("No results found")
			return nil
		}

		for i, hit := range hits {
			e := hit.Entry
			fmt.Printf("%2d. %s (score %.4f)\n", i+1, e.Path, hit.Score)
			if e.DurationSeconds != nil {
				fmt.Printf("    %.1fs  %s  %s\n", *e.DurationSeconds, e.Resolution, e.Device)
			}
			if e.SceneDescription != nil && *e.SceneDescription != "" {
				fmt.Printf("    %s\n", *e.SceneDescription)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchMode, "mode", "hybrid", "search mode: hybrid, keyword, or semantic")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}
