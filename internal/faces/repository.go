// Package faces runs the scan pipeline and serves processed images:
// gallery photos are detected once, stored, announced as events and folded
// into a de-duplicated listing.
package faces

import (
	"context"
	"errors"

	"github.com/kozaktomas/photo-faces/internal/cache"
	"github.com/kozaktomas/photo-faces/internal/constants"
	"github.com/kozaktomas/photo-faces/internal/database"
	"github.com/kozaktomas/photo-faces/internal/detector"
	"github.com/kozaktomas/photo-faces/internal/facematch"
	"github.com/kozaktomas/photo-faces/internal/gallery"
	"github.com/kozaktomas/photo-faces/internal/logger"
)

// ProcessedImage is a stored record with its rendered bitmap.
type ProcessedImage = cache.ProcessedImage

// ErrImageNotFound is returned when no record exists for a URI.
var ErrImageNotFound = errors.New("image not found")

// AccessChecker is implemented by sources that can tell whether the gallery
// is reachable at all.
type AccessChecker interface {
	CheckAccess() error
}

// Lister is implemented by sources that report whether an enumeration was
// complete.
type Lister interface {
	List(ctx context.Context) ([]gallery.GalleryImage, error)
}

// Dependencies wires a Repository.
type Dependencies struct {
	Store          database.ImageWriter
	Gallery        gallery.Source
	Detector       detector.Detector
	Cache          *cache.ImageCache
	Renderer       Renderer
	Logger         *logger.Logger
	MatchThreshold float64
}

// Repository coordinates the gallery, detector, store and cache.
type Repository struct {
	store          database.ImageWriter
	gallery        gallery.Source
	detector       detector.Detector
	cache          *cache.ImageCache
	renderer       Renderer
	log            *logger.Logger
	matchThreshold float64

	events broadcaster[Event]
}

// NewRepository creates a repository. Cache, Logger and MatchThreshold fall
// back to defaults when unset. A nil Detector gives a read-only repository
// that refuses to scan.
func NewRepository(deps Dependencies) *Repository {
	r := &Repository{
		store:          deps.Store,
		gallery:        deps.Gallery,
		detector:       deps.Detector,
		cache:          deps.Cache,
		renderer:       deps.Renderer,
		log:            deps.Logger,
		matchThreshold: deps.MatchThreshold,
	}
	if r.cache == nil {
		r.cache = cache.New(constants.ImageCacheSize)
	}
	if r.log == nil {
		r.log = logger.Nop()
	}
	if r.matchThreshold <= 0 {
		r.matchThreshold = constants.DefaultMatchDistance
	}
	return r
}

// CanDetect reports whether a detector is wired.
func (r *Repository) CanDetect() bool {
	return r.detector != nil
}

// Events subscribes to raw change events. The channel is closed by Unsubscribe.
func (r *Repository) Events() chan Event {
	return r.events.subscribe()
}

// Unsubscribe stops delivery to a channel returned by Events.
func (r *Repository) Unsubscribe(ch chan Event) {
	r.events.unsubscribe(ch)
}

// IsImageProcessed reports whether a record exists for uri. Store errors
// count as "not processed".
func (r *Repository) IsImageProcessed(ctx context.Context, uri string) bool {
	exists, err := r.store.Exists(ctx, uri)
	if err != nil {
		r.log.Error("failed to check image state", "uri", uri, "error", err)
		return false
	}
	return exists
}

// InsertImageAndFaces stores the detection result for uri, replacing any
// previous record, and publishes EventNewFace.
func (r *Repository) InsertImageAndFaces(ctx context.Context, uri string, timestamp int64, found []detector.Face) bool {
	entries := make([]database.FaceEntry, 0, len(found))
	for _, f := range found {
		entries = append(entries, database.FaceEntry{
			ImageURI:    uri,
			BoundingBox: f.BoundingBox,
			Descriptor:  f.Descriptor,
		})
	}

	record := database.ImageRecord{ImageURI: uri, Timestamp: timestamp, Faces: entries}
	if err := r.store.Upsert(ctx, record); err != nil {
		r.log.Error("failed to store image", "uri", uri, "error", err)
		return false
	}
	r.cache.Remove(uri)
	r.events.publish(Event{Type: EventNewFace, ImageURI: uri})
	return true
}

// UpdateFaceNames stores the faces of img and publishes EventFaceUpdated.
func (r *Repository) UpdateFaceNames(ctx context.Context, img ProcessedImage) bool {
	if err := r.store.Upsert(ctx, img.Record()); err != nil {
		r.log.Error("failed to update face names", "uri", img.URI, "error", err)
		return false
	}
	r.cache.Remove(img.URI)
	r.events.publish(Event{Type: EventFaceUpdated, ImageURI: img.URI})
	return true
}

// GetProcessedImage returns the rendered image for uri from the cache, or
// renders and caches it from the stored record. Returns nil when there is
// no record or rendering fails.
func (r *Repository) GetProcessedImage(ctx context.Context, uri string) *ProcessedImage {
	if cached, ok := r.cache.Get(uri); ok {
		return clone(cached)
	}

	record, err := r.store.Get(ctx, uri)
	if err != nil {
		r.log.Error("failed to load image record", "uri", uri, "error", err)
		return nil
	}
	if record == nil {
		return nil
	}

	img, err := r.renderer.Render(ctx, *record)
	if err != nil {
		r.log.Warn("failed to render image", "uri", uri, "error", err)
		return nil
	}

	processed := &ProcessedImage{
		URI:       record.ImageURI,
		Timestamp: record.Timestamp,
		Faces:     database.CloneFaces(record.Faces),
		Image:     img,
	}
	r.cache.Add(processed)
	return clone(processed)
}

func clone(p *ProcessedImage) *ProcessedImage {
	cp := *p
	cp.Faces = database.CloneFaces(p.Faces)
	return &cp
}

// Records returns every stored record, newest first.
func (r *Repository) Records(ctx context.Context) ([]database.ImageRecord, error) {
	return r.store.GetAll(ctx)
}

// Record returns the stored record for uri or ErrImageNotFound.
func (r *Repository) Record(ctx context.Context, uri string) (*database.ImageRecord, error) {
	record, err := r.store.Get(ctx, uri)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrImageNotFound
	}
	return record, nil
}

// Count returns the number of stored records.
func (r *Repository) Count(ctx context.Context) (int, error) {
	return r.store.Count(ctx)
}

// CleanupOrphanedImages deletes records whose URI is no longer in the
// gallery and returns how many were removed. Nothing is deleted when the
// gallery cannot be read completely or ctx is done.
func (r *Repository) CleanupOrphanedImages(ctx context.Context) int {
	if checker, ok := r.gallery.(AccessChecker); ok {
		if err := checker.CheckAccess(); err != nil {
			r.log.Warn("gallery not readable, skipping cleanup", "error", err)
			return 0
		}
	}

	var photos []gallery.GalleryImage
	if lister, ok := r.gallery.(Lister); ok {
		var err error
		if photos, err = lister.List(ctx); err != nil {
			r.log.Warn("gallery enumeration incomplete, skipping cleanup", "error", err)
			return 0
		}
	} else {
		photos = r.gallery.Photos(ctx)
	}
	if ctx.Err() != nil {
		return 0
	}

	present := make(map[string]struct{}, len(photos))
	for _, photo := range photos {
		present[photo.URI] = struct{}{}
	}

	records, err := r.store.GetAll(ctx)
	if err != nil {
		r.log.Error("failed to load records for cleanup", "error", err)
		return 0
	}

	var orphans []string
	for _, rec := range records {
		if _, ok := present[rec.ImageURI]; !ok {
			orphans = append(orphans, rec.ImageURI)
		}
	}
	if len(orphans) == 0 {
		return 0
	}

	deleted, err := r.store.DeleteByURIs(ctx, orphans)
	if err != nil {
		r.log.Error("failed to delete orphaned images", "count", len(orphans), "error", err)
		return 0
	}
	for _, uri := range orphans {
		r.cache.Remove(uri)
	}
	r.log.Info("removed orphaned images", "count", deleted)
	return int(deleted)
}

// SuggestNames proposes names for the unnamed faces of uri based on the
// nearest labeled faces across all stored records.
func (r *Repository) SuggestNames(ctx context.Context, uri string) ([]facematch.Suggestion, error) {
	record, err := r.Record(ctx, uri)
	if err != nil {
		return nil, err
	}
	records, err := r.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	index := facematch.NewIndex()
	index.Build(records)
	return facematch.Suggest(index, uri, record.Faces, r.matchThreshold), nil
}
