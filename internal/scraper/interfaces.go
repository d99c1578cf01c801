package scraper

import (
	"context"
	"time"
)

// Fetcher retrieves a single URL. Implementations must send a browser-like
// User-Agent header and treat non-2xx responses as errors.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Response, error)
}

// ImageArchiver downloads the images referenced by a product page into the
// crawl's archive. Image URLs are resolved against pageURL. The returned
// slice contains the archive paths of images confirmed present in the
// archive; a failed download is omitted, never replaced with a placeholder.
type ImageArchiver interface {
	Archive(ctx context.Context, imageURLs []string, pageURL string) []string
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces job IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
