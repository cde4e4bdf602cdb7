// Package cache keeps recently rendered images in a bounded LRU.
package cache

import (
	"image"
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/kozaktomas/photo-faces/internal/database"
)

// ProcessedImage is a stored record together with its rendered bitmap
// (the downscaled photo with face rectangles drawn on it).
type ProcessedImage struct {
	URI       string               `json:"uri"`
	Timestamp int64                `json:"timestamp"`
	Faces     []database.FaceEntry `json:"faces"`
	Image     image.Image          `json:"-"`
}

// Record converts the processed image back into its durable form.
func (p ProcessedImage) Record() database.ImageRecord {
	return database.ImageRecord{
		ImageURI:  p.URI,
		Timestamp: p.Timestamp,
		Faces:     database.CloneFaces(p.Faces),
	}
}

// ImageCache is a fixed-capacity LRU from URI to ProcessedImage.
// Reads refresh recency; inserting past capacity evicts the least recently used entry.
type ImageCache struct {
	mu    sync.Mutex
	cache *lru.Cache
}

// New creates a cache holding at most size entries.
func New(size int) *ImageCache {
	return &ImageCache{cache: lru.New(size)}
}

// Get returns the cached image for uri.
func (c *ImageCache) Get(uri string) (*ProcessedImage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.cache.Get(uri)
	if !ok {
		return nil, false
	}
	return v.(*ProcessedImage), true
}

// Add inserts or replaces the entry for img.URI.
func (c *ImageCache) Add(img *ProcessedImage) {
	if img == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(img.URI, img)
}

// Remove drops the entry for uri if present.
func (c *ImageCache) Remove(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Remove(uri)
}

// Len returns the number of cached entries.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}

// Capacity returns the maximum number of entries.
func (c *ImageCache) Capacity() int {
	return c.cache.MaxEntries
}
