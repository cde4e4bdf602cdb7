// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Cache constants
const (
	// ImageCacheSize is the number of rendered images kept in memory
	ImageCacheSize = 50
)

// Image processing constants
const (
	// DefaultScalingFactor is the fraction of the original dimensions a photo is
	// decoded at before detection and rendering
	DefaultScalingFactor = 0.1

	// MinImageDimension is the minimum decoded width and height for detection
	MinImageDimension = 32

	// FaceStrokeWidth is the rectangle stroke width used when rendering faces
	FaceStrokeWidth = 5.0

	// JPEGQuality is the quality used when encoding rendered images
	JPEGQuality = 85
)

// Processing constants
const (
	// DefaultConcurrency is the default number of detector workers
	DefaultConcurrency = 1

	// DefaultCleanupInterval is how often the orphan cleanup runs in serve mode
	DefaultCleanupInterval = 15 * time.Minute
)

// Face matching constants
const (
	// DefaultMatchDistance is the default maximum cosine distance for name suggestions
	DefaultMatchDistance = 0.4

	// HNSWMaxNeighbors (M) is the maximum number of neighbors per node
	HNSWMaxNeighbors = 16

	// SuggestionCandidates is how many neighbors are inspected per unnamed face
	SuggestionCandidates = 5
)
