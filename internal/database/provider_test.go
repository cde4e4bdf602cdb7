package database_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kozaktomas/photo-faces/internal/config"
	"github.com/kozaktomas/photo-faces/internal/database"
	"github.com/kozaktomas/photo-faces/internal/database/mock"
)

func TestOpen_UsesRegisteredBackend(t *testing.T) {
	want := mock.NewMockStore()
	database.RegisterBackend("test-mock", func(ctx context.Context, cfg *config.DatabaseConfig) (database.Store, error) {
		return want, nil
	})

	got, err := database.Open(context.Background(), &config.DatabaseConfig{Driver: "test-mock"})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if got != want {
		t.Error("expected the registered store to be returned")
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := database.Open(context.Background(), &config.DatabaseConfig{Driver: "nope"})
	if err == nil {
		t.Fatal("expected error for unregistered driver")
	}
	if !strings.Contains(err.Error(), "not registered") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOpen_WrapsOpenerError(t *testing.T) {
	boom := errors.New("boom")
	database.RegisterBackend("test-failing", func(ctx context.Context, cfg *config.DatabaseConfig) (database.Store, error) {
		return nil, boom
	})

	_, err := database.Open(context.Background(), &config.DatabaseConfig{Driver: "test-failing"})
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped opener error, got %v", err)
	}
}
