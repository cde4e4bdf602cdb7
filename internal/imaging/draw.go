package imaging

import (
	"image"

	"github.com/fogleman/gg"
	"github.com/kozaktomas/photo-faces/internal/constants"
)

// DrawFaces returns a copy of img with a red rectangle stroked around each face.
func DrawFaces(img image.Image, faces []image.Rectangle) image.Image {
	dc := gg.NewContextForImage(img)
	dc.SetRGB(1, 0, 0)
	dc.SetLineWidth(constants.FaceStrokeWidth)

	for _, f := range faces {
		dc.DrawRectangle(float64(f.Min.X), float64(f.Min.Y), float64(f.Dx()), float64(f.Dy()))
		dc.Stroke()
	}
	return dc.Image()
}
