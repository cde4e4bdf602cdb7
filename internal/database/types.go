package database

import "image"

// Rect is a face bounding box in the coordinate space of the downscaled,
// orientation-corrected bitmap used for detection and rendering.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// RectFromImage converts an image.Rectangle into a Rect.
func RectFromImage(r image.Rectangle) Rect {
	return Rect{Left: r.Min.X, Top: r.Min.Y, Right: r.Max.X, Bottom: r.Max.Y}
}

// Image converts the rect back into an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}

// FaceEntry is one detected face inside an image record.
type FaceEntry struct {
	ImageURI    string    `json:"imageUri"`
	BoundingBox Rect      `json:"boundingBox"`
	Name        *string   `json:"name"`
	Descriptor  []float32 `json:"descriptor,omitempty"` // dlib 128-d descriptor, empty for legacy rows
}

// HasName reports whether the face carries a non-empty label.
func (f FaceEntry) HasName() bool {
	return f.Name != nil && *f.Name != ""
}

// DisplayName returns the label or an empty string.
func (f FaceEntry) DisplayName() string {
	if f.Name == nil {
		return ""
	}
	return *f.Name
}

// ImageRecord is the persisted row for one scanned photo.
type ImageRecord struct {
	ImageURI  string
	Timestamp int64 // capture time in unix milliseconds
	Faces     []FaceEntry
}

// CloneFaces returns a deep copy of the face list so callers can edit names
// without touching shared state (cache entries, listener snapshots).
func CloneFaces(faces []FaceEntry) []FaceEntry {
	if faces == nil {
		return nil
	}
	out := make([]FaceEntry, len(faces))
	for i, f := range faces {
		out[i] = f
		if f.Name != nil {
			name := *f.Name
			out[i].Name = &name
		}
		if f.Descriptor != nil {
			out[i].Descriptor = append([]float32(nil), f.Descriptor...)
		}
	}
	return out
}
