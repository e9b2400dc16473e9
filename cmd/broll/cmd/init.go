package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"broll/internal/catalog"
	"broll/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a catalog on a footage drive",
	Long: `Create the catalog directory and database on the drive root.

Examples:
  broll init --drive /Volumes/footage`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(config.ThumbsDir(driveRoot), 0o755); err != nil {
			return fmt.Errorf("failed to create catalog directory: %w", err)
		}

		db, err := catalog.Open(config.DBPath(driveRoot))
		if err != nil {
			return err
		}
		defer func() {
			_ = db.Close()
		}()

		fmt.Printf("Initialized catalog at %s\n", config.AppDir(driveRoot))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
