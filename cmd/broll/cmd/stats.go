package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = store.Close()
		}()

		stats, err := store.Stats(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Clips:      %d\n", stats.TotalClips)
		fmt.Printf("Size:       %.1f GB\n", float64(stats.TotalSizeBytes)/1e9)
		fmt.Printf("Duration:   %.1f minutes\n", stats.TotalDuration/60)
		fmt.Printf("Analyzed:   %d\n", stats.AnalyzedClips)
		fmt.Printf("Failed:     %d\n", stats.FailedClips)
		fmt.Printf("With GPS:   %d\n", stats.ClipsWithGPS)
		fmt.Printf("Embedded:   %d\n", stats.EmbeddedClips)
		if stats.EarliestCreated != "" {
			fmt.Printf("Shot range: %s to %s\n", stats.EarliestCreated, stats.LatestCreated)
		}
		if len(stats.ClipsByDevice) > 0 {
			fmt.Println("By device:")
			for device, n := range stats.ClipsByDevice {
				fmt.Printf("  %-12s %d\n", device, n)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
