package imaging

import (
	"bytes"
	"io"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// EXIF orientation values (TIFF tag 0x0112).
const (
	OrientationNormal     = 1
	OrientationFlipH      = 2
	OrientationRotate180  = 3
	OrientationFlipV      = 4
	OrientationTranspose  = 5
	OrientationRotate90   = 6
	OrientationTransverse = 7
	OrientationRotate270  = 8
)

// Orientation returns the EXIF orientation of an encoded image, or
// OrientationNormal when there is no EXIF block or the tag is missing.
func Orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return OrientationNormal
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return OrientationNormal
	}
	o, err := tag.Int(0)
	if err != nil || o < OrientationNormal || o > OrientationRotate270 {
		return OrientationNormal
	}
	return o
}

// CaptureTime returns DateTimeOriginal (falling back to DateTime) from the
// EXIF block of r.
func CaptureTime(r io.Reader) (time.Time, error) {
	x, err := exif.Decode(r)
	if err != nil {
		return time.Time{}, err
	}
	return x.DateTime()
}
