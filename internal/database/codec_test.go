package database

import (
	"image"
	"testing"
)

func TestEncodeFaces_NilIsEmptyArray(t *testing.T) {
	got, err := EncodeFaces(nil)
	if err != nil {
		t.Fatalf("EncodeFaces(nil) returned error: %v", err)
	}
	if got != "[]" {
		t.Errorf("EncodeFaces(nil) = %q, want %q", got, "[]")
	}
}

func TestEncodeFaces_Shape(t *testing.T) {
	name := "Alice"
	faces := []FaceEntry{{
		ImageURI:    "file:///photos/a.jpg",
		BoundingBox: Rect{Left: 1, Top: 2, Right: 30, Bottom: 40},
		Name:        &name,
	}}

	got, err := EncodeFaces(faces)
	if err != nil {
		t.Fatalf("EncodeFaces returned error: %v", err)
	}
	want := `[{"imageUri":"file:///photos/a.jpg","boundingBox":{"left":1,"top":2,"right":30,"bottom":40},"name":"Alice"}]`
	if got != want {
		t.Errorf("EncodeFaces =\n%s\nwant\n%s", got, want)
	}
}

func TestDecodeFaces(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLen   int
		wantName  string
		wantError bool
	}{
		{"empty string", "", 0, "", false},
		{"empty array", "[]", 0, "", false},
		{"unnamed face", `[{"imageUri":"u","boundingBox":{"left":0,"top":0,"right":10,"bottom":10},"name":null}]`, 1, "", false},
		{"named face", `[{"imageUri":"u","boundingBox":{"left":0,"top":0,"right":10,"bottom":10},"name":"Bob"}]`, 1, "Bob", false},
		{"garbage", `{not json`, 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			faces, err := DecodeFaces(tt.input)
			if (err != nil) != tt.wantError {
				t.Fatalf("DecodeFaces error = %v, wantError %v", err, tt.wantError)
			}
			if tt.wantError {
				return
			}
			if faces == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(faces) != tt.wantLen {
				t.Fatalf("expected %d faces, got %d", tt.wantLen, len(faces))
			}
			if tt.wantLen > 0 && faces[0].DisplayName() != tt.wantName {
				t.Errorf("expected name %q, got %q", tt.wantName, faces[0].DisplayName())
			}
		})
	}
}

func TestRectConversion(t *testing.T) {
	r := image.Rect(5, 6, 50, 60)
	got := RectFromImage(r)
	if got != (Rect{Left: 5, Top: 6, Right: 50, Bottom: 60}) {
		t.Errorf("RectFromImage = %+v", got)
	}
	if got.Image() != r {
		t.Errorf("Image() = %v, want %v", got.Image(), r)
	}
}

func TestCloneFaces_Independent(t *testing.T) {
	name := "Carol"
	orig := []FaceEntry{{ImageURI: "u", Name: &name, Descriptor: []float32{1, 2}}}

	clone := CloneFaces(orig)
	*clone[0].Name = "Dave"
	clone[0].Descriptor[0] = 9

	if *orig[0].Name != "Carol" {
		t.Errorf("original name changed to %q", *orig[0].Name)
	}
	if orig[0].Descriptor[0] != 1 {
		t.Errorf("original descriptor changed")
	}
	if CloneFaces(nil) != nil {
		t.Error("CloneFaces(nil) should be nil")
	}
}
