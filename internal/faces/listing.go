package faces

import (
	"context"
	"sync"
)

// Listing keeps the folded list of processed images for the grid view and
// forwards every update to its own listeners.
type Listing struct {
	repo *Repository

	mu    sync.RWMutex
	items []ProcessedImage

	updates broadcaster[ProcessedImage]
	start   sync.Once
	done    chan struct{}
}

// NewListing creates a listing over repo. Call Start to begin observing.
func NewListing(repo *Repository) *Listing {
	return &Listing{repo: repo, done: make(chan struct{})}
}

// Start observes the repository until ctx is cancelled. Only the first call
// has an effect.
func (l *Listing) Start(ctx context.Context) {
	l.start.Do(func() {
		images := l.repo.Observe(ctx)
		go func() {
			defer close(l.done)
			defer l.updates.closeAll()
			for img := range images {
				l.mu.Lock()
				l.items = Fold(l.items, img)
				l.mu.Unlock()
				l.updates.publish(img)
			}
		}()
	})
}

// Done is closed once the listing has stopped.
func (l *Listing) Done() <-chan struct{} {
	return l.done
}

// Snapshot returns the current folded list.
func (l *Listing) Snapshot() []ProcessedImage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]ProcessedImage, len(l.items))
	copy(out, l.items)
	return out
}

// Subscribe returns a channel receiving every image folded after the call.
func (l *Listing) Subscribe() chan ProcessedImage {
	return l.updates.subscribe()
}

// Missed reports whether updates were dropped for ch because its buffer was
// full, and clears the mark. A listener that missed updates should re-read
// Snapshot.
func (l *Listing) Missed(ch chan ProcessedImage) bool {
	return l.updates.missed(ch)
}

// Unsubscribe stops delivery to ch and closes it.
func (l *Listing) Unsubscribe(ch chan ProcessedImage) {
	l.updates.unsubscribe(ch)
}
