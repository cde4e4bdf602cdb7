package faces

import (
	"context"
	"image"

	"github.com/kozaktomas/photo-faces/internal/database"
	"github.com/kozaktomas/photo-faces/internal/gallery"
	"github.com/kozaktomas/photo-faces/internal/imaging"
)

// Renderer turns a stored record into a bitmap with its faces drawn.
type Renderer interface {
	Render(ctx context.Context, record database.ImageRecord) (image.Image, error)
}

// BitmapRenderer loads the photo at the detector's scaling factor, so stored
// bounding boxes line up with the bitmap, and strokes every face.
type BitmapRenderer struct {
	ScalingFactor float64
}

func (r BitmapRenderer) Render(ctx context.Context, record database.ImageRecord) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := gallery.PathFromURI(record.ImageURI)
	if err != nil {
		return nil, err
	}
	img, err := imaging.LoadBitmap(path, r.ScalingFactor)
	if err != nil {
		return nil, err
	}

	boxes := make([]image.Rectangle, len(record.Faces))
	for i, f := range record.Faces {
		boxes[i] = f.BoundingBox.Image()
	}
	return imaging.DrawFaces(img, boxes), nil
}
