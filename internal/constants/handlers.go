package constants

// Handler constants
const (
	// EventChannelBuffer is the buffer size for event listener channels
	EventChannelBuffer = 64

	// MaxRequestBodySize bounds JSON request bodies accepted by the web API
	MaxRequestBodySize = 1 << 20
)
