package handlers

import (
	"context"
	"image"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/photo-faces/internal/cache"
	"github.com/kozaktomas/photo-faces/internal/database"
	"github.com/kozaktomas/photo-faces/internal/database/mock"
	"github.com/kozaktomas/photo-faces/internal/detector"
	"github.com/kozaktomas/photo-faces/internal/faces"
	"github.com/kozaktomas/photo-faces/internal/gallery"
	"github.com/kozaktomas/photo-faces/internal/logger"
)

type stubGallery struct {
	mu     sync.Mutex
	photos []gallery.GalleryImage
}

func (g *stubGallery) Photos(ctx context.Context) []gallery.GalleryImage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]gallery.GalleryImage(nil), g.photos...)
}

func (g *stubGallery) set(photos ...gallery.GalleryImage) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.photos = photos
}

type stubRenderer struct{}

func (stubRenderer) Render(ctx context.Context, record database.ImageRecord) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 8, 8)), nil
}

type testEnv struct {
	store   *mock.MockStore
	gallery *stubGallery
	repo    *faces.Repository
	listing *faces.Listing
}

// newTestEnv wires a repository over an in-memory store. The records are
// present in both the store and the gallery so that the initial cleanup
// keeps them.
func newTestEnv(t *testing.T, det detector.Detector, records ...database.ImageRecord) *testEnv {
	t.Helper()

	env := &testEnv{store: mock.NewMockStore(), gallery: &stubGallery{}}
	for _, rec := range records {
		env.store.AddRecord(rec)
		env.gallery.photos = append(env.gallery.photos, gallery.GalleryImage{URI: rec.ImageURI, Timestamp: rec.Timestamp})
	}
	if det == nil {
		det = detector.Func(func(context.Context, string) []detector.Face { return nil })
	}

	env.repo = faces.NewRepository(faces.Dependencies{
		Store:    env.store,
		Gallery:  env.gallery,
		Detector: det,
		Cache:    cache.New(10),
		Renderer: stubRenderer{},
		Logger:   logger.Nop(),
	})
	env.listing = faces.NewListing(env.repo)

	ctx, cancel := context.WithCancel(context.Background())
	env.listing.Start(ctx)
	t.Cleanup(func() {
		cancel()
		<-env.listing.Done()
	})
	return env
}

// waitForListing blocks until the listing holds n images.
func (e *testEnv) waitForListing(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(e.listing.Snapshot()) == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("listing did not reach %d images, has %d", n, len(e.listing.Snapshot()))
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func strPtr(s string) *string { return &s }
