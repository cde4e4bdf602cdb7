package cmd

import (
	"fmt"

	"github.com/kozaktomas/photo-faces/internal/gallery"
	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <uri|path>",
	Short: "Suggest names for unnamed faces of a photo",
	Long: `Compare the unnamed faces of a photo with faces already named in other
photos and print the closest name for each. Requires face descriptors,
which are stored by 'photo-faces scan'.`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().Bool("json", false, "Output as JSON")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	jsonOutput := mustGetBool(cmd, "json")

	uri, err := gallery.ResolveURI(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	suggestions, err := a.repo.SuggestNames(ctx, uri)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(suggestions)
	}
	if len(suggestions) == 0 {
		fmt.Println("No suggestions")
		return nil
	}
	for _, s := range suggestions {
		fmt.Printf("[%s] %s (distance %.3f, from %s)\n", formatBox(s.BoundingBox), s.Name, s.Distance, s.SourceURI)
	}
	return nil
}
