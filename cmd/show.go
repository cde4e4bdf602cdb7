package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/kozaktomas/photo-faces/internal/constants"
	"github.com/kozaktomas/photo-faces/internal/faces"
	"github.com/kozaktomas/photo-faces/internal/gallery"
	"github.com/kozaktomas/photo-faces/internal/imaging"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <uri|path>",
	Short: "Show the faces of a processed photo",
	Long: `Print the stored face boxes of a photo. With --out the photo is also
rendered with its face boxes outlined and written as JPEG.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().String("out", "", "Write the annotated photo to this JPEG file")
	showCmd.Flags().Bool("json", false, "Output as JSON")
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := mustGetString(cmd, "out")
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

	img := a.repo.GetProcessedImage(ctx, uri)
	if img == nil {
		return fmt.Errorf("%s: %w", uri, faces.ErrImageNotFound)
	}

	if out != "" {
		if img.Image == nil {
			return errors.New("photo could not be rendered")
		}
		data, err := imaging.EncodeJPEG(img.Image, constants.JPEGQuality)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
	}

	if jsonOutput {
		return outputJSON(img.Record())
	}

	fmt.Printf("URI:   %s\n", img.URI)
	fmt.Printf("Taken: %s\n", formatTimestamp(img.Timestamp))
	fmt.Printf("Faces: %d\n", len(img.Faces))
	for i, f := range img.Faces {
		fmt.Printf("  %d. [%s] %s\n", i+1, formatBox(f.BoundingBox), f.DisplayName())
	}
	if out != "" {
		fmt.Printf("Annotated photo written to %s\n", out)
	}
	return nil
}
