package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// deleteBatchSize keeps IN lists below SQLite's bound-variable limit.
const deleteBatchSize = 500

// Dialect captures the SQL differences between backends.
type Dialect struct {
	// Placeholder returns the bind marker for the n-th (1-based) argument.
	Placeholder func(n int) string
	// UpsertSQL inserts (image_uri, timestamp, faces) replacing any existing row.
	UpsertSQL string
}

// QuestionPlaceholder is used by SQLite and MariaDB.
func QuestionPlaceholder(int) string { return "?" }

// DollarPlaceholder is used by PostgreSQL.
func DollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

// SQLRepository implements ImageWriter on top of database/sql.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLRepository creates a repository for db using the given dialect.
func NewSQLRepository(db *sql.DB, dialect Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

// Upsert inserts the record or replaces the row with the same URI.
func (r *SQLRepository) Upsert(ctx context.Context, record ImageRecord) error {
	if record.ImageURI == "" {
		return errors.New("image URI is required")
	}
	faces, err := EncodeFaces(record.Faces)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, r.dialect.UpsertSQL, record.ImageURI, record.Timestamp, faces); err != nil {
		return fmt.Errorf("upsert image %s: %w", record.ImageURI, err)
	}
	return nil
}

// GetAll returns every record, newest first.
func (r *SQLRepository) GetAll(ctx context.Context) ([]ImageRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT image_uri, timestamp, faces FROM face_images ORDER BY timestamp DESC, image_uri`)
	if err != nil {
		return nil, fmt.Errorf("query images: %w", err)
	}
	defer rows.Close()

	var records []ImageRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate images: %w", err)
	}
	return records, nil
}

// Get returns the record for uri or nil when it does not exist.
func (r *SQLRepository) Get(ctx context.Context, uri string) (*ImageRecord, error) {
	query := "SELECT image_uri, timestamp, faces FROM face_images WHERE image_uri = " + r.dialect.Placeholder(1)
	record, err := scanRecord(r.db.QueryRowContext(ctx, query, uri))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Exists checks whether a record for uri is stored.
func (r *SQLRepository) Exists(ctx context.Context, uri string) (bool, error) {
	query := "SELECT COUNT(*) FROM face_images WHERE image_uri = " + r.dialect.Placeholder(1)
	var n int
	if err := r.db.QueryRowContext(ctx, query, uri).Scan(&n); err != nil {
		return false, fmt.Errorf("check image %s: %w", uri, err)
	}
	return n > 0, nil
}

// Count returns the number of stored records.
func (r *SQLRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM face_images").Scan(&n); err != nil {
		return 0, fmt.Errorf("count images: %w", err)
	}
	return n, nil
}

// DeleteByURIs removes the given URIs in batches and returns the number of rows deleted.
func (r *SQLRepository) DeleteByURIs(ctx context.Context, uris []string) (int64, error) {
	var total int64
	for start := 0; start < len(uris); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(uris))
		batch := uris[start:end]

		marks := make([]string, len(batch))
		args := make([]any, len(batch))
		for i, uri := range batch {
			marks[i] = r.dialect.Placeholder(i + 1)
			args[i] = uri
		}

		query := "DELETE FROM face_images WHERE image_uri IN (" + strings.Join(marks, ", ") + ")"
		result, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return total, fmt.Errorf("delete images: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("delete images rows affected: %w", err)
		}
		total += n
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*ImageRecord, error) {
	var (
		record ImageRecord
		faces  string
	)
	if err := row.Scan(&record.ImageURI, &record.Timestamp, &faces); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan image: %w", err)
	}
	decoded, err := DecodeFaces(faces)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", record.ImageURI, err)
	}
	record.Faces = decoded
	return &record, nil
}
