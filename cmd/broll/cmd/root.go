package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"broll/internal/catalog"
	"broll/internal/config"
	"broll/internal/vectorindex"
)

var (
	driveRoot string
	cfg       *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "broll",
	Short: "Catalog and search b-roll footage drives",
	Long: `broll builds a searchable catalog of the video clips on a footage
drive. It samples keyframes, analyzes them with a local vision model,
and stores everything in a SQLite catalog that lives on the drive
itself, so the index travels with the media.

Clips can then be found by keyword, by meaning, or both.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		opts := &slog.HandlerOptions{Level: cfg.LogLevel}
		var handler slog.Handler
		if cfg.LogFormat == "json" {
			handler = slog.NewJSONHandler(os.Stderr, opts)
		} else {
			handler = slog.NewTextHandler(os.Stderr, opts)
		}
		slog.SetDefault(slog.New(handler))

		driveRoot, err = filepath.Abs(driveRoot)
		if err != nil {
			return fmt.Errorf("failed to resolve drive root: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&driveRoot, "drive", "d", ".", "footage drive root")
}

// openCatalog opens the drive's catalog database and wires the
// configured vector backend.
func openCatalog(ctx context.Context) (*catalog.Store, error) {
	dbPath := config.DBPath(driveRoot)
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("no catalog at %s (run \"broll init\" first)", dbPath)
	}

	db, err := catalog.Open(dbPath)
	if err != nil {
		return nil, err
	}

	var vectors vectorindex.Index = vectorindex.NewSQLiteIndex(db)
	if cfg.VectorBackend == "qdrant" {
		vectors, err = vectorindex.NewQdrantIndex(ctx, cfg.QdrantURL, cfg.QdrantColl, cfg.EmbeddingDim)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
		}
	}

	return catalog.NewStore(db, vectors), nil
}
