package cmd

import (
	"context"
	"fmt"

	"github.com/kozaktomas/photo-faces/internal/cache"
	"github.com/kozaktomas/photo-faces/internal/config"
	"github.com/kozaktomas/photo-faces/internal/database"
	"github.com/kozaktomas/photo-faces/internal/database/mariadb"
	"github.com/kozaktomas/photo-faces/internal/database/postgres"
	"github.com/kozaktomas/photo-faces/internal/database/sqlite"
	"github.com/kozaktomas/photo-faces/internal/detector"
	"github.com/kozaktomas/photo-faces/internal/detector/dlib"
	"github.com/kozaktomas/photo-faces/internal/faces"
	"github.com/kozaktomas/photo-faces/internal/gallery"
	"github.com/kozaktomas/photo-faces/internal/logger"
)

// registerBackends registers every database backend with the provider registry.
func registerBackends() {
	database.RegisterBackend(config.DriverSQLite, sqlite.Open)
	database.RegisterBackend(config.DriverPostgres, postgres.Open)
	database.RegisterBackend(config.DriverMariaDB, mariadb.Open)
}

// app holds everything a command needs.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	store   database.Store
	gallery *gallery.Enumerator
	dlib    *dlib.Detector
	repo    *faces.Repository
}

// newApp loads the configuration, opens the store and wires the repository.
// The dlib models are only loaded when withDetector is set.
func newApp(ctx context.Context, withDetector bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Gallery.Root == "" {
		return nil, fmt.Errorf("GALLERY_ROOT is required")
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	registerBackends()
	store, err := database.Open(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		store:   store,
		gallery: gallery.NewEnumerator(cfg.Gallery.Root, log.With("component", "gallery")),
	}
	if err := a.gallery.CheckAccess(); err != nil {
		log.Warn("gallery root is not readable", "root", cfg.Gallery.Root, "error", err)
	}

	var det detector.Detector
	if withDetector {
		a.dlib, err = dlib.New(cfg.Detector.ModelsDir, cfg.Detector.ScalingFactor, log.With("component", "detector"))
		if err != nil {
			store.Close()
			return nil, err
		}
		det = a.dlib
	}

	a.repo = faces.NewRepository(faces.Dependencies{
		Store:          store,
		Gallery:        a.gallery,
		Detector:       det,
		Cache:          cache.New(cfg.Cache.Size),
		Renderer:       faces.BitmapRenderer{ScalingFactor: cfg.Detector.ScalingFactor},
		Logger:         log.With("component", "faces"),
		MatchThreshold: cfg.Match.DistanceThreshold,
	})
	return a, nil
}

func (a *app) Close() {
	if a.dlib != nil {
		a.dlib.Close()
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("failed to close store", "error", err)
	}
	a.log.Sync()
}
