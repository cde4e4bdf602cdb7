package cmd

import (
	"fmt"

	"github.com/kozaktomas/photo-faces/internal/faces"
	"github.com/kozaktomas/photo-faces/internal/gallery"
	"github.com/spf13/cobra"
)

var nameCmd = &cobra.Command{
	Use:   "name <uri|path>",
	Short: "Set or clear the name of a face",
	Long: `Assign a name to the face identified by its bounding box. The box must
match a stored face exactly, as printed by 'photo-faces show'.
An empty --name clears the label.`,
	Args: cobra.ExactArgs(1),
	RunE: runName,
}

func init() {
	rootCmd.AddCommand(nameCmd)

	nameCmd.Flags().String("box", "", "Face bounding box as left,top,right,bottom (required)")
	nameCmd.Flags().String("name", "", "Name for the face, empty to clear")
	_ = nameCmd.MarkFlagRequired("box")
}

func runName(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	uri, err := gallery.ResolveURI(args[0])
	if err != nil {
		return err
	}
	box, err := parseBox(mustGetString(cmd, "box"))
	if err != nil {
		return err
	}

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.repo.SaveName(ctx, uri, box, mustGetString(cmd, "name"))
	if err != nil {
		return err
	}
	switch result {
	case faces.SaveSuccess:
		fmt.Println("Saved")
	case faces.SaveUnchanged:
		fmt.Println("Nothing to change")
	}
	return nil
}
