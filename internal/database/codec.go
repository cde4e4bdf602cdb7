package database

import (
	"encoding/json"
	"fmt"
)

// EncodeFaces serializes a face list for the faces column. A nil list is
// stored as an empty JSON array so the column is never NULL.
func EncodeFaces(faces []FaceEntry) (string, error) {
	if faces == nil {
		faces = []FaceEntry{}
	}
	data, err := json.Marshal(faces)
	if err != nil {
		return "", fmt.Errorf("encoding faces: %w", err)
	}
	return string(data), nil
}

// DecodeFaces parses the faces column. Empty input decodes to an empty list.
func DecodeFaces(data string) ([]FaceEntry, error) {
	faces := []FaceEntry{}
	if data == "" {
		return faces, nil
	}
	if err := json.Unmarshal([]byte(data), &faces); err != nil {
		return nil, fmt.Errorf("decoding faces: %w", err)
	}
	return faces, nil
}
