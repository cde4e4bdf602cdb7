// Package sqlite provides the default single-file backend for image records.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kozaktomas/photo-faces/internal/config"
	"github.com/kozaktomas/photo-faces/internal/database"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var dialect = database.Dialect{
	Placeholder: database.QuestionPlaceholder,
	UpsertSQL: `INSERT INTO face_images (image_uri, timestamp, faces) VALUES (?, ?, ?)
		ON CONFLICT(image_uri) DO UPDATE SET timestamp = excluded.timestamp, faces = excluded.faces`,
}

// Store is a SQLite-backed image store.
type Store struct {
	*database.SQLRepository
	db *sql.DB
}

// dsn turns a plain file path into a modernc DSN with WAL and a busy timeout.
// Values that already look like DSNs are passed through.
func dsn(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
}

// connMaxLifetime returns how long the single connection may be reused.
// An in-memory database lives only as long as its connection, so it is
// never recycled.
func connMaxLifetime(dsn string) time.Duration {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file::memory:") || strings.Contains(dsn, "mode=memory") {
		return 0
	}
	return time.Hour
}

// Open opens (creating if needed) the database file and applies migrations.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (database.Store, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("database path is required")
	}

	source := dsn(cfg.URL)
	db, err := sql.Open("sqlite", source)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writers; a single connection avoids SQLITE_BUSY
	// between pool members and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(connMaxLifetime(source))

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := database.Migrate(ctx, db, migrationsFS, "migrations", "INSERT INTO schema_migrations (version) VALUES (?)"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{SQLRepository: database.NewSQLRepository(db, dialect), db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database connection: %w", err)
	}
	return nil
}
