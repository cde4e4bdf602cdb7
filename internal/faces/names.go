package faces

import (
	"context"
	"errors"
	"strings"

	"github.com/kozaktomas/photo-faces/internal/database"
)

// SaveResult is the outcome of a rename.
type SaveResult string

const (
	SaveSuccess   SaveResult = "success"
	SaveUnchanged SaveResult = "unchanged"
	SaveFailed    SaveResult = "error"
)

// ErrSaveFailed is returned when the updated record could not be stored.
var ErrSaveFailed = errors.New("failed to save face name")

// SaveName labels every face of uri whose bounding box equals box. An empty
// name clears the label. Nothing is written when no face changes.
func (r *Repository) SaveName(ctx context.Context, uri string, box database.Rect, name string) (SaveResult, error) {
	img := r.GetProcessedImage(ctx, uri)
	if img == nil {
		return SaveFailed, ErrImageNotFound
	}

	var label *string
	if name = strings.TrimSpace(name); name != "" {
		label = &name
	}

	changed := false
	for i := range img.Faces {
		f := &img.Faces[i]
		if f.BoundingBox != box || sameLabel(f.Name, label) {
			continue
		}
		if label == nil {
			f.Name = nil
		} else {
			v := *label
			f.Name = &v
		}
		changed = true
	}
	if !changed {
		return SaveUnchanged, nil
	}

	if !r.UpdateFaceNames(ctx, *img) {
		return SaveFailed, ErrSaveFailed
	}
	return SaveSuccess, nil
}

func sameLabel(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
