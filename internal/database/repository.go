package database

import (
	"context"
)

// ImageReader provides read-only access to scanned image records
type ImageReader interface {
	// GetAll returns every record ordered by timestamp, newest first
	GetAll(ctx context.Context) ([]ImageRecord, error)
	// Get retrieves a record by URI, returns nil if not found
	Get(ctx context.Context, uri string) (*ImageRecord, error)
	// Exists checks if a record exists for the given URI
	Exists(ctx context.Context, uri string) (bool, error)
	// Count returns the total number of records stored
	Count(ctx context.Context) (int, error)
}

// ImageWriter provides write access to scanned image records
type ImageWriter interface {
	ImageReader

	// Upsert inserts the record or replaces the existing row with the same URI
	Upsert(ctx context.Context, record ImageRecord) error
	// DeleteByURIs removes all records whose URI is in the list and returns the number removed
	DeleteByURIs(ctx context.Context, uris []string) (int64, error)
}

// Store is an ImageWriter backed by a connection that must be closed.
type Store interface {
	ImageWriter
	Close() error
}
