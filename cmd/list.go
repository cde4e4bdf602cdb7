package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List processed photos, newest first",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().Bool("json", false, "Output as JSON")
}

type listEntry struct {
	URI       string   `json:"uri"`
	Timestamp int64    `json:"timestamp"`
	Faces     int      `json:"face_count"`
	Names     []string `json:"names"`
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	jsonOutput := mustGetBool(cmd, "json")

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.repo.Records(ctx)
	if err != nil {
		return fmt.Errorf("listing records: %w", err)
	}

	if jsonOutput {
		entries := make([]listEntry, 0, len(records))
		for _, rec := range records {
			names := []string{}
			for _, f := range rec.Faces {
				if f.HasName() {
					names = append(names, *f.Name)
				}
			}
			entries = append(entries, listEntry{URI: rec.URI, Timestamp: rec.Timestamp, Faces: len(rec.Faces), Names: names})
		}
		return outputJSON(entries)
	}

	if len(records) == 0 {
		fmt.Println("No processed photos yet. Run 'photo-faces scan' first.")
		return nil
	}
	for _, rec := range records {
		fmt.Printf("%s  %2d faces  %-30s %s\n", formatTimestamp(rec.Timestamp), len(rec.Faces), faceNames(rec.Faces), rec.URI)
	}
	fmt.Printf("\n%d photos\n", len(records))
	return nil
}
