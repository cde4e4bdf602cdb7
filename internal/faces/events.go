package faces

import (
	"sync"
	"sync/atomic"

	"github.com/kozaktomas/photo-faces/internal/constants"
)

// EventType identifies a change to the stored records.
type EventType string

const (
	// EventNewFace is published after a freshly scanned image is stored.
	EventNewFace EventType = "new_face"
	// EventFaceUpdated is published after face names of an image change.
	EventFaceUpdated EventType = "face_updated"
)

// Event is a change notification for one image.
type Event struct {
	Type     EventType `json:"type"`
	ImageURI string    `json:"uri"`
}

// broadcaster fans values out to buffered listener channels. A value that
// does not fit into a listener's buffer is not delivered; instead the
// listener is marked as out of sync until it calls missed.
type broadcaster[T any] struct {
	mu        sync.RWMutex
	listeners []*listener[T]
}

type listener[T any] struct {
	ch   chan T
	lost atomic.Bool
}

func (b *broadcaster[T]) subscribe() chan T {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan T, constants.EventChannelBuffer)
	b.listeners = append(b.listeners, &listener[T]{ch: ch})
	return ch
}

func (b *broadcaster[T]) unsubscribe(ch chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, l := range b.listeners {
		if l.ch == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

func (b *broadcaster[T]) publish(v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, l := range b.listeners {
		select {
		case l.ch <- v:
		default:
			l.lost.Store(true)
		}
	}
}

// missed reports whether values were dropped for ch since the previous
// call and clears the mark.
func (b *broadcaster[T]) missed(ch chan T) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, l := range b.listeners {
		if l.ch == ch {
			return l.lost.Swap(false)
		}
	}
	return false
}

func (b *broadcaster[T]) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range b.listeners {
		close(l.ch)
	}
	b.listeners = nil
}

func (b *broadcaster[T]) len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
