package scan

import "time"

// Buffer sizes
const (
	// MaxDocumentSize is the largest HTML document read from a single source
	MaxDocumentSize = 16 * 1024 * 1024 // 16MB
)

// Timeouts and delays
var (
	// RenderTimeout is the timeout for page rendering operations
	RenderTimeout = 15 * time.Second

	// RenderSleepDuration is the wait time for dynamic content to load
	RenderSleepDuration = 8 * time.Second

	// HTTPClientTimeout is the timeout for HTTP requests
	HTTPClientTimeout = 10 * time.Second
)

// SetRenderSleepDuration allows customizing the sleep duration for page rendering
func SetRenderSleepDuration(d time.Duration) {
	RenderSleepDuration = d
}

// SetRenderTimeout allows customizing the overall rendering timeout
func SetRenderTimeout(d time.Duration) {
	RenderTimeout = d
}

// Other limits
const (
	// MaxRedirects is the maximum number of HTTP redirects to follow
	MaxRedirects = 5

	// MaxValueDisplayLength is the maximum length of element text kept in a match
	MaxValueDisplayLength = 200
)
