package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kozaktomas/photo-faces/internal/faces"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Detect faces in every photo that has not been processed yet",
	Long: `Walk the gallery directory, run face detection on each photo that has no
stored record and save the detected face boxes. Photos that were already
processed are skipped without being decoded.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().Int("concurrency", 1, "Number of photos to detect in parallel")
	scanCmd.Flags().Int("limit", 0, "Maximum number of new photos to process (0 = all)")
	scanCmd.Flags().Bool("json", false, "Output the scan summary as JSON")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jsonOutput := mustGetBool(cmd, "json")

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if !jsonOutput {
		fmt.Printf("Scanning %s...\n", a.cfg.Gallery.Root)
	}

	var bar *progressbar.ProgressBar
	opts := faces.ProcessOptions{
		Concurrency: mustGetInt(cmd, "concurrency"),
		Limit:       mustGetInt(cmd, "limit"),
	}
	if !jsonOutput {
		opts.Progress = func(p faces.ProcessProgress) {
			if bar == nil {
				bar = progressbar.NewOptions(p.Total,
					progressbar.OptionSetDescription("Detecting faces"),
					progressbar.OptionShowCount(),
					progressbar.OptionShowIts(),
					progressbar.OptionSetItsString("photos"),
					progressbar.OptionShowElapsedTimeOnFinish(),
					progressbar.OptionSetPredictTime(true),
					progressbar.OptionFullWidth(),
				)
			}
			_ = bar.Set(p.Done)
		}
	}

	stats := a.repo.ProcessAllImages(ctx, opts)
	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}

	if jsonOutput {
		return outputJSON(stats)
	}

	fmt.Printf("Found:     %d photos\n", stats.Found)
	fmt.Printf("Skipped:   %d already processed\n", stats.Skipped)
	fmt.Printf("Processed: %d photos, %d faces\n", stats.Processed, stats.Faces)
	if stats.Failed > 0 {
		fmt.Printf("Failed:    %d photos\n", stats.Failed)
	}
	if stats.Cancelled {
		fmt.Println("Scan was interrupted")
	}
	return nil
}
