package faces

import (
	"context"
	"sync"

	"github.com/kozaktomas/photo-faces/internal/constants"
	"github.com/kozaktomas/photo-faces/internal/gallery"
	"golang.org/x/sync/errgroup"
)

// ProcessOptions tunes ProcessAllImages.
type ProcessOptions struct {
	Concurrency int                    // detector workers, defaults to 1
	Limit       int                    // max photos to detect, 0 for all
	Progress    func(ProcessProgress) // called after every photo
}

// ProcessProgress reports one finished photo.
type ProcessProgress struct {
	URI   string `json:"uri"`
	Faces int    `json:"faces"`
	Saved bool   `json:"saved"`
	Done  int    `json:"done"`
	Total int    `json:"total"`
}

// ProcessStats summarizes a scan.
type ProcessStats struct {
	Found     int  `json:"found"`     // photos in the gallery
	Skipped   int  `json:"skipped"`   // already processed
	Processed int  `json:"processed"` // stored in this run
	Failed    int  `json:"failed"`    // detection ran but storing failed
	Faces     int  `json:"faces"`     // faces stored in this run
	Cancelled bool `json:"cancelled"`
}

// ProcessAllImages detects faces in every gallery photo that has no record
// yet and stores the results. Already processed photos never reach the
// detector. A photo without faces is still stored with an empty face list.
func (r *Repository) ProcessAllImages(ctx context.Context, opts ProcessOptions) ProcessStats {
	if !r.CanDetect() {
		r.log.Warn("no face detector configured, skipping scan")
		return ProcessStats{}
	}

	photos := r.gallery.Photos(ctx)
	stats := ProcessStats{Found: len(photos)}

	var pending []gallery.GalleryImage
	for _, photo := range photos {
		if r.IsImageProcessed(ctx, photo.URI) {
			stats.Skipped++
			continue
		}
		pending = append(pending, photo)
	}
	if opts.Limit > 0 && len(pending) > opts.Limit {
		pending = pending[:opts.Limit]
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = constants.DefaultConcurrency
	}

	r.log.Info("processing gallery", "found", stats.Found, "skipped", stats.Skipped, "pending", len(pending), "concurrency", concurrency)

	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, photo := range pending {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			found := r.detector.Detect(gctx, photo.URI)
			saved := r.InsertImageAndFaces(gctx, photo.URI, photo.Timestamp, found)

			mu.Lock()
			defer mu.Unlock()
			done++
			if saved {
				stats.Processed++
				stats.Faces += len(found)
			} else {
				stats.Failed++
			}
			if opts.Progress != nil {
				opts.Progress(ProcessProgress{URI: photo.URI, Faces: len(found), Saved: saved, Done: done, Total: len(pending)})
			}
			return nil
		})
	}
	_ = g.Wait()

	stats.Cancelled = ctx.Err() != nil
	r.log.Info("processing finished", "processed", stats.Processed, "faces", stats.Faces, "failed", stats.Failed, "cancelled", stats.Cancelled)
	return stats
}
