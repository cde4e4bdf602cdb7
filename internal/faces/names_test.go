package faces

import (
	"context"
	"errors"
	"testing"

	"github.com/kozaktomas/photo-faces/internal/database"
)

func TestSaveName(t *testing.T) {
	target := box(10, 10, 20, 20)
	other := box(30, 30, 40, 40)

	tests := []struct {
		name       string
		faces      []database.FaceEntry
		newName    string
		upsertErr  error
		wantResult SaveResult
		wantErr    error
		wantNames  []string
	}{
		{
			name:       "labels matching box only",
			faces:      []database.FaceEntry{{BoundingBox: target}, {BoundingBox: other}},
			newName:    "Alice",
			wantResult: SaveSuccess,
			wantNames:  []string{"Alice", ""},
		},
		{
			name:       "same name is unchanged",
			faces:      []database.FaceEntry{{BoundingBox: target, Name: strPtr("Alice")}},
			newName:    "Alice",
			wantResult: SaveUnchanged,
			wantNames:  []string{"Alice"},
		},
		{
			name:       "no matching box is unchanged",
			faces:      []database.FaceEntry{{BoundingBox: other}},
			newName:    "Alice",
			wantResult: SaveUnchanged,
			wantNames:  []string{""},
		},
		{
			name:       "renames existing label",
			faces:      []database.FaceEntry{{BoundingBox: target, Name: strPtr("Alice")}},
			newName:    " Bob ",
			wantResult: SaveSuccess,
			wantNames:  []string{"Bob"},
		},
		{
			name:       "empty name clears label",
			faces:      []database.FaceEntry{{BoundingBox: target, Name: strPtr("Alice")}},
			newName:    "",
			wantResult: SaveSuccess,
			wantNames:  []string{""},
		},
		{
			name:       "store failure",
			faces:      []database.FaceEntry{{BoundingBox: target}},
			newName:    "Alice",
			upsertErr:  errors.New("read only"),
			wantResult: SaveFailed,
			wantErr:    ErrSaveFailed,
			wantNames:  []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()
			f.store.AddRecord(database.ImageRecord{ImageURI: "file:///a.jpg", Timestamp: 7, Faces: tt.faces})
			f.store.UpsertError = tt.upsertErr

			res, err := f.repo.SaveName(ctx, "file:///a.jpg", target, tt.newName)
			if res != tt.wantResult {
				t.Errorf("expected result %q, got %q", tt.wantResult, res)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantResult == SaveUnchanged && f.store.UpsertCalls != 0 {
				t.Error("unchanged save must not write")
			}

			rec, _ := f.store.Get(ctx, "file:///a.jpg")
			if rec.Timestamp != 7 {
				t.Errorf("expected timestamp to be kept, got %d", rec.Timestamp)
			}
			for i, want := range tt.wantNames {
				if got := rec.Faces[i].DisplayName(); got != want {
					t.Errorf("face %d: expected name %q, got %q", i, want, got)
				}
			}
		})
	}
}

func TestSaveName_MissingImage(t *testing.T) {
	f := newFixture()
	res, err := f.repo.SaveName(context.Background(), "file:///nope.jpg", box(0, 0, 1, 1), "x")
	if res != SaveFailed || !errors.Is(err, ErrImageNotFound) {
		t.Errorf("SaveName() = %v, %v", res, err)
	}
}
