//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kozaktomas/photo-faces/internal/config"
	"github.com/kozaktomas/photo-faces/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.DatabaseConfig{
		URL:          fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

func TestStore(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	store := NewStore(pool)

	t.Run("UpsertReplaces", func(t *testing.T) {
		uri := "file:///photos/a.jpg"
		if err := store.Upsert(ctx, database.ImageRecord{ImageURI: uri, Timestamp: 1}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		name := "Alice"
		if err := store.Upsert(ctx, database.ImageRecord{
			ImageURI:  uri,
			Timestamp: 2,
			Faces:     []database.FaceEntry{{ImageURI: uri, Name: &name}},
		}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}

		count, err := store.Count(ctx)
		if err != nil {
			t.Fatalf("Count failed: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 row, got %d", count)
		}

		got, err := store.Get(ctx, uri)
		if err != nil || got == nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Timestamp != 2 || got.Faces[0].DisplayName() != "Alice" {
			t.Errorf("record not replaced: %+v", got)
		}
	})

	t.Run("DeleteByURIs", func(t *testing.T) {
		for _, uri := range []string{"x", "y"} {
			if err := store.Upsert(ctx, database.ImageRecord{ImageURI: uri, Timestamp: 3}); err != nil {
				t.Fatalf("Upsert failed: %v", err)
			}
		}
		n, err := store.DeleteByURIs(ctx, []string{"x", "missing"})
		if err != nil {
			t.Fatalf("DeleteByURIs failed: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 deleted, got %d", n)
		}
		if ok, _ := store.Exists(ctx, "y"); !ok {
			t.Error("expected y to remain")
		}
	})

	t.Run("MigrateIsIdempotent", func(t *testing.T) {
		if err := pool.Migrate(ctx); err != nil {
			t.Fatalf("second Migrate failed: %v", err)
		}
	})
}
