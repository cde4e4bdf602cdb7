package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kozaktomas/photo-faces/internal/database"
)

// outputJSON writes data as indented JSON to stdout.
func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}

// parseBox parses "left,top,right,bottom".
func parseBox(s string) (database.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return database.Rect{}, fmt.Errorf("box must be left,top,right,bottom, got %q", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return database.Rect{}, fmt.Errorf("invalid box coordinate %q: %w", p, err)
		}
		v[i] = n
	}
	r := database.Rect{Left: v[0], Top: v[1], Right: v[2], Bottom: v[3]}
	if r.Right <= r.Left || r.Bottom <= r.Top {
		return database.Rect{}, fmt.Errorf("box %q is empty", s)
	}
	return r, nil
}

func formatBox(r database.Rect) string {
	return fmt.Sprintf("%d,%d,%d,%d", r.Left, r.Top, r.Right, r.Bottom)
}

func formatTimestamp(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02 15:04:05")
}

func faceNames(faces []database.FaceEntry) string {
	var names []string
	for _, f := range faces {
		if f.HasName() {
			names = append(names, *f.Name)
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
