// Package imagingtest builds encoded photos for tests.
package imagingtest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"time"
)

// EXIF tag ids and TIFF value types used by JPEGWithExif.
const (
	tagOrientation      = 0x0112
	tagExifIFDPointer   = 0x8769
	tagDateTimeOriginal = 0x9003

	typeASCII = 2
	typeShort = 3
	typeLong  = 4

	exifTimeLayout = "2006:01:02 15:04:05"
)

// Red and Blue are the colors of the left and right half of generated photos.
var (
	Red  = color.RGBA{R: 255, A: 255}
	Blue = color.RGBA{B: 255, A: 255}
)

// JPEGWithExif encodes a w x h JPEG whose left half is Red and right half
// Blue, carrying an EXIF block with the given orientation. When taken is not
// zero the block also holds DateTimeOriginal, written in taken's wall clock.
func JPEGWithExif(w, h, orientation int, taken time.Time) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := Red
			if x >= w/2 {
				c = Blue
			}
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		return nil, err
	}
	encoded := buf.Bytes()

	// APP1 goes right after the SOI marker.
	out := make([]byte, 0, len(encoded)+128)
	out = append(out, encoded[:2]...)
	out = append(out, exifSegment(orientation, taken)...)
	return append(out, encoded[2:]...), nil
}

// exifSegment returns a complete big-endian APP1 segment.
func exifSegment(orientation int, taken time.Time) []byte {
	be := binary.BigEndian
	withDate := !taken.IsZero()

	ifd0Entries := 1
	if withDate {
		ifd0Entries = 2
	}
	exifIFDOffset := 8 + 2 + 12*ifd0Entries + 4
	dateOffset := exifIFDOffset + 2 + 12 + 4

	tiff := []byte{'M', 'M', 0, 42, 0, 0, 0, 8}
	tiff = be.AppendUint16(tiff, uint16(ifd0Entries))
	// A SHORT value is left-aligned in the 4 byte value field.
	tiff = appendEntry(tiff, tagOrientation, typeShort, 1, uint32(orientation)<<16)
	if withDate {
		tiff = appendEntry(tiff, tagExifIFDPointer, typeLong, 1, uint32(exifIFDOffset))
	}
	tiff = be.AppendUint32(tiff, 0)

	if withDate {
		date := append([]byte(taken.Format(exifTimeLayout)), 0)
		tiff = be.AppendUint16(tiff, 1)
		tiff = appendEntry(tiff, tagDateTimeOriginal, typeASCII, uint32(len(date)), uint32(dateOffset))
		tiff = be.AppendUint32(tiff, 0)
		tiff = append(tiff, date...)
	}

	payload := append([]byte("Exif\x00\x00"), tiff...)
	segment := []byte{0xFF, 0xE1}
	segment = be.AppendUint16(segment, uint16(len(payload)+2))
	return append(segment, payload...)
}

func appendEntry(b []byte, tag, typ uint16, count, value uint32) []byte {
	be := binary.BigEndian
	b = be.AppendUint16(b, tag)
	b = be.AppendUint16(b, typ)
	b = be.AppendUint32(b, count)
	return be.AppendUint32(b, value)
}
