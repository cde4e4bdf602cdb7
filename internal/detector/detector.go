// Package detector finds faces in gallery photos.
package detector

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/kozaktomas/photo-faces/internal/constants"
	"github.com/kozaktomas/photo-faces/internal/database"
	"github.com/kozaktomas/photo-faces/internal/gallery"
	"github.com/kozaktomas/photo-faces/internal/imaging"
)

// ErrTooSmall is returned for bitmaps below the minimum detectable size.
var ErrTooSmall = errors.New("image too small for face detection")

// Face is one detected face. Coordinates are in the space of the bitmap
// returned by LoadForDetection.
type Face struct {
	BoundingBox database.Rect
	Landmarks   []image.Point
	Descriptor  []float32
}

// Detector finds faces in the photo identified by uri. Implementations never
// fail: anything that goes wrong results in an empty slice.
type Detector interface {
	Detect(ctx context.Context, uri string) []Face
}

// Func adapts a plain function to the Detector interface.
type Func func(ctx context.Context, uri string) []Face

func (f Func) Detect(ctx context.Context, uri string) []Face {
	return f(ctx, uri)
}

// LoadForDetection loads the bitmap for uri at the given scaling factor and
// rejects images smaller than the minimum detectable size.
func LoadForDetection(uri string, scalingFactor float64) (image.Image, error) {
	path, err := gallery.PathFromURI(uri)
	if err != nil {
		return nil, err
	}
	img, err := imaging.LoadBitmap(path, scalingFactor)
	if err != nil {
		return nil, err
	}
	size := img.Bounds().Size()
	if size.X < constants.MinImageDimension || size.Y < constants.MinImageDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooSmall, size.X, size.Y)
	}
	return img, nil
}
