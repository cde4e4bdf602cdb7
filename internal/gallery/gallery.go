// Package gallery enumerates photos below a root directory.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kozaktomas/photo-faces/internal/imaging"
	"github.com/kozaktomas/photo-faces/internal/logger"
)

// GalleryImage is one photo in the gallery.
type GalleryImage struct {
	URI       string `json:"uri"`
	Timestamp int64  `json:"timestamp"` // capture time in unix milliseconds
}

// Source lists the photos currently present in the gallery.
type Source interface {
	Photos(ctx context.Context) []GalleryImage
}

var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// IsSupported reports whether the file name has a supported image extension.
func IsSupported(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// Enumerator walks a directory tree for photos.
type Enumerator struct {
	root string
	log  *logger.Logger
}

// NewEnumerator returns an enumerator rooted at root.
func NewEnumerator(root string, log *logger.Logger) *Enumerator {
	if log == nil {
		log = logger.Nop()
	}
	return &Enumerator{root: root, log: log}
}

// Root returns the directory being enumerated.
func (e *Enumerator) Root() string {
	return e.root
}

// CheckAccess verifies that the gallery root exists and can be listed.
func (e *Enumerator) CheckAccess() error {
	_, err := os.ReadDir(e.root)
	return err
}

// Photos returns all supported images sorted newest first. Any failure to
// read the root results in an empty list; unreadable entries below the root
// are skipped.
func (e *Enumerator) Photos(ctx context.Context) []GalleryImage {
	images, err := e.List(ctx)
	if err != nil {
		e.log.Error("failed to enumerate gallery", "root", e.root, "error", err)
		if images == nil {
			return []GalleryImage{}
		}
	}
	return images
}

// List is Photos with error reporting. It returns an error when the root
// cannot be walked, when ctx is cancelled, or when entries had to be
// skipped; in the last case the readable photos are returned as well.
func (e *Enumerator) List(ctx context.Context) ([]GalleryImage, error) {
	var images []GalleryImage
	var skipped []error

	err := filepath.WalkDir(e.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == e.root {
				return err
			}
			e.log.Warn("skipping unreadable gallery entry", "path", path, "error", err)
			skipped = append(skipped, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !IsSupported(d.Name()) {
			return nil
		}

		uri, uriErr := URIFromPath(path)
		if uriErr != nil {
			e.log.Warn("skipping gallery entry", "path", path, "error", uriErr)
			skipped = append(skipped, uriErr)
			return nil
		}
		images = append(images, GalleryImage{URI: uri, Timestamp: captureTimestamp(path, d)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking gallery %s: %w", e.root, err)
	}

	sort.Slice(images, func(i, j int) bool {
		if images[i].Timestamp != images[j].Timestamp {
			return images[i].Timestamp > images[j].Timestamp
		}
		return images[i].URI < images[j].URI
	})
	if images == nil {
		images = []GalleryImage{}
	}
	if len(skipped) > 0 {
		return images, fmt.Errorf("%d gallery entries skipped: %w", len(skipped), errors.Join(skipped...))
	}
	return images, nil
}

// captureTimestamp prefers EXIF DateTimeOriginal and falls back to the
// modification time.
func captureTimestamp(path string, d fs.DirEntry) int64 {
	if f, err := os.Open(path); err == nil {
		taken, exifErr := imaging.CaptureTime(f)
		f.Close()
		if exifErr == nil && !taken.IsZero() {
			return taken.UnixMilli()
		}
	}
	info, err := d.Info()
	if err != nil {
		return 0
	}
	return info.ModTime().UnixMilli()
}
