package gallery

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/photo-faces/internal/imaging/imagingtest"
)

func writeFile(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("not really an image"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("failed to set mtime: %v", err)
	}
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"a.jpg", true},
		{"a.JPEG", true},
		{"a.png", true},
		{"a.gif", true},
		{"a.bmp", true},
		{"a.webp", true},
		{"a.heic", false},
		{"a.txt", false},
		{"jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSupported(tt.name); got != tt.expected {
				t.Errorf("IsSupported(%q) = %v, want %v", tt.name, got, tt.expected)
			}
		})
	}
}

func TestPhotos_SortedNewestFirst(t *testing.T) {
	root := t.TempDir()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	writeFile(t, filepath.Join(root, "old.jpg"), base)
	writeFile(t, filepath.Join(root, "nested", "new.png"), base.Add(2*time.Hour))
	writeFile(t, filepath.Join(root, "middle.webp"), base.Add(time.Hour))
	writeFile(t, filepath.Join(root, "notes.txt"), base.Add(3*time.Hour))

	photos := NewEnumerator(root, nil).Photos(context.Background())
	if len(photos) != 3 {
		t.Fatalf("expected 3 photos, got %d: %v", len(photos), photos)
	}

	wantSuffixes := []string{"nested/new.png", "middle.webp", "old.jpg"}
	for i, suffix := range wantSuffixes {
		if !strings.HasPrefix(photos[i].URI, "file://") {
			t.Errorf("photo %d: expected file:// uri, got %q", i, photos[i].URI)
		}
		if !strings.HasSuffix(photos[i].URI, suffix) {
			t.Errorf("photo %d: expected uri ending in %q, got %q", i, suffix, photos[i].URI)
		}
	}
	if photos[2].Timestamp != base.UnixMilli() {
		t.Errorf("expected mtime timestamp %d, got %d", base.UnixMilli(), photos[2].Timestamp)
	}
}

func TestPhotos_TiesBrokenByURI(t *testing.T) {
	root := t.TempDir()
	ts := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	writeFile(t, filepath.Join(root, "b.jpg"), ts)
	writeFile(t, filepath.Join(root, "a.jpg"), ts)

	photos := NewEnumerator(root, nil).Photos(context.Background())
	if len(photos) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(photos))
	}
	if !strings.HasSuffix(photos[0].URI, "a.jpg") {
		t.Errorf("expected a.jpg first, got %q", photos[0].URI)
	}
}

func TestPhotos_MissingRootIsEmpty(t *testing.T) {
	e := NewEnumerator(filepath.Join(t.TempDir(), "missing"), nil)
	photos := e.Photos(context.Background())
	if photos == nil || len(photos) != 0 {
		t.Errorf("expected empty non-nil list, got %v", photos)
	}
	if err := e.CheckAccess(); err == nil {
		t.Error("expected CheckAccess to fail for missing root")
	}
}

func TestURIRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "with space.jpg")
	uri, err := URIFromPath(path)
	if err != nil {
		t.Fatalf("URIFromPath() error: %v", err)
	}
	if !strings.HasPrefix(uri, "file:///") {
		t.Errorf("unexpected uri %q", uri)
	}
	back, err := PathFromURI(uri)
	if err != nil {
		t.Fatalf("PathFromURI() error: %v", err)
	}
	if back != path {
		t.Errorf("round trip mismatch: %q != %q", back, path)
	}
}

func TestPathFromURI_RejectsOtherSchemes(t *testing.T) {
	for _, uri := range []string{"content://media/external/images/1", "http://example.com/a.jpg", "file://"} {
		if _, err := PathFromURI(uri); err == nil {
			t.Errorf("expected error for %q", uri)
		}
	}
}

func TestResolveURI(t *testing.T) {
	uri, err := ResolveURI("file:///photos/a.jpg")
	if err != nil || uri != "file:///photos/a.jpg" {
		t.Errorf("ResolveURI(uri) = %q, %v", uri, err)
	}
	uri, err = ResolveURI("/photos/a.jpg")
	if err != nil || uri != "file:///photos/a.jpg" {
		t.Errorf("ResolveURI(path) = %q, %v", uri, err)
	}
}

func writeJPEG(t *testing.T, path string, taken, mtime time.Time) {
	t.Helper()
	data, err := imagingtest.JPEGWithExif(16, 8, 1, taken)
	if err != nil {
		t.Fatalf("failed to build jpeg: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("failed to set mtime: %v", err)
	}
}

func TestPhotos_PrefersExifCaptureTime(t *testing.T) {
	root := t.TempDir()
	taken := time.Date(2020, 3, 1, 8, 0, 0, 0, time.Local)

	// Copied recently, but shot in 2020.
	writeJPEG(t, filepath.Join(root, "shot.jpg"), taken, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	// No capture date, so the 2022 mtime counts.
	writeJPEG(t, filepath.Join(root, "undated.jpg"), time.Time{}, time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC))

	photos := NewEnumerator(root, nil).Photos(context.Background())
	if len(photos) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(photos))
	}
	if !strings.HasSuffix(photos[0].URI, "undated.jpg") || !strings.HasSuffix(photos[1].URI, "shot.jpg") {
		t.Errorf("expected undated.jpg before shot.jpg, got %v", photos)
	}
	if photos[1].Timestamp != taken.UnixMilli() {
		t.Errorf("expected EXIF timestamp %d, got %d", taken.UnixMilli(), photos[1].Timestamp)
	}
}

func TestList_ReportsFailures(t *testing.T) {
	e := NewEnumerator(filepath.Join(t.TempDir(), "missing"), nil)
	if _, err := e.List(context.Background()); err == nil {
		t.Error("expected error for missing root")
	}

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.jpg"), time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewEnumerator(root, nil).List(ctx); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestList_UnreadableSubdirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.jpg"), time.Now())
	locked := filepath.Join(root, "locked")
	writeFile(t, filepath.Join(locked, "b.jpg"), time.Now())
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	e := NewEnumerator(root, nil)
	photos, err := e.List(context.Background())
	if err == nil {
		t.Error("expected skipped entries to be reported")
	}
	if len(photos) != 1 {
		t.Errorf("expected the readable photo, got %v", photos)
	}
	if got := e.Photos(context.Background()); len(got) != 1 {
		t.Errorf("Photos() should still return readable photos, got %v", got)
	}
}
