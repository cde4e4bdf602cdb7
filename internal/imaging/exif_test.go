package imaging

import (
	"bytes"
	"image"
	"testing"
	"time"

	"github.com/kozaktomas/photo-faces/internal/imaging/imagingtest"
)

func exifJPEG(t *testing.T, w, h, orientation int, taken time.Time) []byte {
	t.Helper()
	data, err := imagingtest.JPEGWithExif(w, h, orientation, taken)
	if err != nil {
		t.Fatalf("failed to build jpeg: %v", err)
	}
	return data
}

func TestOrientation_FromExif(t *testing.T) {
	tests := []struct {
		name        string
		orientation int
	}{
		{"normal", OrientationNormal},
		{"rotate 180", OrientationRotate180},
		{"rotate 90", OrientationRotate90},
		{"rotate 270", OrientationRotate270},
		{"transverse", OrientationTransverse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := exifJPEG(t, 16, 8, tt.orientation, time.Time{})
			if got := Orientation(data); got != tt.orientation {
				t.Errorf("Orientation() = %d, want %d", got, tt.orientation)
			}
		})
	}
}

func TestOrientation_OutOfRangeIsNormal(t *testing.T) {
	data := exifJPEG(t, 16, 8, 42, time.Time{})
	if got := Orientation(data); got != OrientationNormal {
		t.Errorf("expected normal orientation for invalid tag, got %d", got)
	}
}

func TestCaptureTime_FromExif(t *testing.T) {
	taken := time.Date(2021, 7, 14, 9, 30, 15, 0, time.Local)
	data := exifJPEG(t, 16, 8, OrientationNormal, taken)

	got, err := CaptureTime(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("CaptureTime() error: %v", err)
	}
	if !got.Equal(taken) {
		t.Errorf("CaptureTime() = %v, want %v", got, taken)
	}
}

func TestCaptureTime_WithoutDate(t *testing.T) {
	data := exifJPEG(t, 16, 8, OrientationNormal, time.Time{})
	if _, err := CaptureTime(bytes.NewReader(data)); err == nil {
		t.Error("expected error when DateTimeOriginal is missing")
	}
}

func isRed(img image.Image, x, y int) bool {
	r, g, b, _ := img.At(x, y).RGBA()
	return r>>8 > 200 && g>>8 < 80 && b>>8 < 80
}

func isBlue(img image.Image, x, y int) bool {
	r, g, b, _ := img.At(x, y).RGBA()
	return b>>8 > 200 && r>>8 < 80 && g>>8 < 80
}

func TestDecodeBitmap_AppliesExifOrientation(t *testing.T) {
	// Stored as 64x32 with red on the left; orientation 6 displays it
	// rotated clockwise, so red ends up on top.
	data := exifJPEG(t, 64, 32, OrientationRotate90, time.Time{})

	img, err := DecodeBitmap(data, 1)
	if err != nil {
		t.Fatalf("DecodeBitmap() error: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(32, 64) {
		t.Fatalf("expected 32x64 after rotation, got %v", got)
	}
	if !isRed(img, 16, 8) {
		t.Errorf("expected red at the top, got %v", img.At(16, 8))
	}
	if !isBlue(img, 16, 56) {
		t.Errorf("expected blue at the bottom, got %v", img.At(16, 56))
	}
}

func TestDecodeBitmap_NormalExifKeepsLayout(t *testing.T) {
	data := exifJPEG(t, 64, 32, OrientationNormal, time.Time{})

	img, err := DecodeBitmap(data, 1)
	if err != nil {
		t.Fatalf("DecodeBitmap() error: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(64, 32) {
		t.Fatalf("expected 64x32, got %v", got)
	}
	if !isRed(img, 8, 16) || !isBlue(img, 56, 16) {
		t.Errorf("expected red left and blue right, got %v and %v", img.At(8, 16), img.At(56, 16))
	}
}
