// Package imaging decodes photos into downscaled, orientation-corrected
// bitmaps and draws detected faces on them.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrInvalidDimensions is returned for images that report a non-positive size.
var ErrInvalidDimensions = errors.New("image has invalid dimensions")

// LoadBitmap reads the image at path, downsamples it by the power-of-two
// sample size closest to scalingFactor and applies the EXIF orientation.
func LoadBitmap(path string, scalingFactor float64) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return DecodeBitmap(data, scalingFactor)
}

// DecodeBitmap is LoadBitmap for an in-memory encoded image.
func DecodeBitmap(data []byte, scalingFactor float64) (image.Image, error) {
	orientation := Orientation(data)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image bounds: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrInvalidDimensions
	}

	targetWidth := max(int(float64(cfg.Width)*scalingFactor), 1)
	targetHeight := max(int(float64(cfg.Height)*scalingFactor), 1)
	sampleSize := CalculateInSampleSize(cfg.Width, cfg.Height, targetWidth, targetHeight)

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if sampleSize > 1 {
		img = downsample(img, sampleSize)
	}
	return ApplyOrientation(img, orientation), nil
}

// CalculateInSampleSize returns the largest power of two that keeps both
// halved dimensions at or above the requested size.
func CalculateInSampleSize(originalWidth, originalHeight, reqWidth, reqHeight int) int {
	inSampleSize := 1
	if originalHeight > reqHeight || originalWidth > reqWidth {
		halfHeight := originalHeight / 2
		halfWidth := originalWidth / 2

		for (halfHeight/inSampleSize) >= reqHeight && (halfWidth/inSampleSize) >= reqWidth {
			inSampleSize *= 2
		}
	}
	return inSampleSize
}

func downsample(img image.Image, sampleSize int) image.Image {
	bounds := img.Bounds()
	width := max(bounds.Dx()/sampleSize, 1)
	height := max(bounds.Dy()/sampleSize, 1)

	resized := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(resized, resized.Bounds(), img, bounds, draw.Src, nil)
	return resized
}

// ApplyOrientation returns img transformed so that it displays upright for
// the given EXIF orientation. Orientation 1 and unknown values return img as is.
func ApplyOrientation(img image.Image, orientation int) image.Image {
	if orientation <= OrientationNormal || orientation > OrientationRotate270 {
		return img
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	dstW, dstH := w, h
	if orientation >= OrientationTranspose {
		dstW, dstH = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))

	for y := range h {
		for x := range w {
			var dx, dy int
			switch orientation {
			case OrientationFlipH:
				dx, dy = w-1-x, y
			case OrientationRotate180:
				dx, dy = w-1-x, h-1-y
			case OrientationFlipV:
				dx, dy = x, h-1-y
			case OrientationTranspose:
				dx, dy = y, x
			case OrientationRotate90:
				dx, dy = h-1-y, x
			case OrientationTransverse:
				dx, dy = h-1-y, w-1-x
			case OrientationRotate270:
				dx, dy = y, w-1-x
			}
			dst.Set(dx, dy, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

// EncodeJPEG encodes img as JPEG with the given quality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
