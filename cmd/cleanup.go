package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove records of photos that no longer exist in the gallery",
	RunE:  runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.gallery.CheckAccess(); err != nil {
		return fmt.Errorf("gallery is not readable, refusing to clean up: %w", err)
	}
	removed := a.repo.CleanupOrphanedImages(ctx)
	fmt.Printf("Removed %d orphaned records\n", removed)
	return nil
}
