package faces

import (
	"context"
)

// Observe streams processed images. On subscribe it runs orphan cleanup and
// emits every stored record, then emits the image behind each NewFace or
// FaceUpdated event. When events were dropped because the consumer fell
// behind, all stored records are emitted again. The channel closes when
// ctx is done.
func (r *Repository) Observe(ctx context.Context) <-chan ProcessedImage {
	out := make(chan ProcessedImage)
	sub := r.events.subscribe()

	go func() {
		defer close(out)
		defer r.events.unsubscribe(sub)

		r.CleanupOrphanedImages(ctx)

		// Every stored record is emitted after the subscription exists, so an
		// image written meanwhile arrives at least once.
		if !r.emitStored(ctx, out) {
			return
		}

		for {
			if r.events.missed(sub) {
				r.log.Warn("change events were dropped, reloading stored images")
				if !r.emitStored(ctx, out) {
					return
				}
			}
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if ev.Type == EventFaceUpdated {
					r.cache.Remove(ev.ImageURI)
				}
				img := r.GetProcessedImage(ctx, ev.ImageURI)
				if img == nil {
					continue
				}
				if !send(ctx, out, *img) {
					return
				}
			}
		}
	}()

	return out
}

// emitStored sends every stored record. It returns false once ctx is done.
func (r *Repository) emitStored(ctx context.Context, out chan<- ProcessedImage) bool {
	records, err := r.store.GetAll(ctx)
	if err != nil {
		r.log.Error("failed to load stored images", "error", err)
		return ctx.Err() == nil
	}
	for _, rec := range records {
		img := r.GetProcessedImage(ctx, rec.ImageURI)
		if img == nil {
			continue
		}
		if !send(ctx, out, *img) {
			return false
		}
	}
	return true
}

func send(ctx context.Context, out chan<- ProcessedImage, img ProcessedImage) bool {
	select {
	case out <- img:
		return true
	case <-ctx.Done():
		return false
	}
}

// Fold adds img to acc: an image with a URI already present replaces that
// entry in place, a new URI is appended. acc is not modified.
func Fold(acc []ProcessedImage, img ProcessedImage) []ProcessedImage {
	next := make([]ProcessedImage, len(acc), len(acc)+1)
	copy(next, acc)
	for i := range next {
		if next[i].URI == img.URI {
			next[i] = img
			return next
		}
	}
	return append(next, img)
}
