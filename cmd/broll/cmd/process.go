package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"broll/internal/analysis"
	"broll/internal/config"
	"broll/internal/frames"
	"broll/internal/ingest"
	"broll/internal/llm"
	"broll/internal/metadata"
	"broll/internal/scanner"
)

var (
	processForce        bool
	processMetadataOnly bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Scan the drive and ingest new or changed clips",
	Long: `Walk the drive for video files, skip clips whose content has not
changed since the last run, and push the rest through the pipeline:
probe metadata, sample keyframes, analyze them with the vision model,
and store the result in the catalog.

Examples:
  broll process --drive /Volumes/footage
  broll process --force
  broll process --metadata-only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = store.Close()
		}()

		known, err := store.AllFingerprints(ctx)
		if err != nil {
			return err
		}

		results, err := scanner.Scan(ctx, driveRoot, known, processForce)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		if len(results) == 0 {
			fmt.Println("Catalog is up to date")
			return nil
		}
		fmt.Printf("Found %d clip(s) to process\n", len(results))

		vision := llm.NewClient(cfg.VisionBaseURL, cfg.APIKey, cfg.VisionModel)
		embedder := llm.NewEmbeddingsClient(cfg.EmbedBaseURL, cfg.APIKey, cfg.EmbedModel, cfg.EmbeddingDim)

		pipeline := ingest.NewPipeline(
			store,
			frames.NewFFmpeg(),
			analysis.NewVisionAnalyzer(vision),
			embedder,
			loadGeocoder(),
		)

		summary, err := pipeline.Process(ctx, results, ingest.Options{
			Keyframes:    cfg.Keyframes,
			ThumbsDir:    config.ThumbsDir(driveRoot),
			MetadataOnly: processMetadataOnly,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Done: %d ingested, %d failed, %d errored\n",
			summary.Ingested, summary.Failed, summary.Errored)
		return nil
	},
}

// loadGeocoder reads an optional places file from the catalog directory;
// without one, GPS coordinates are stored but never named.
func loadGeocoder() metadata.Geocoder {
	path := config.AppDir(driveRoot) + "/places.json"
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return metadata.NoopGeocoder{}
	}
	g, err := metadata.LoadTableGeocoder(path, 0.5)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: ignoring places file: %v\n", err)
		return metadata.NoopGeocoder{}
	}
	return g
}

func init() {
	processCmd.Flags().BoolVar(&processForce, "force", false, "reprocess clips even if unchanged")
	processCmd.Flags().BoolVar(&processMetadataOnly, "metadata-only", false, "skip analysis and embedding")
	rootCmd.AddCommand(processCmd)
}
