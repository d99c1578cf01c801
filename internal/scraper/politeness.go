package scraper

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Hamzashehzad1/nabih-scraper/internal/metrics"
)

const (
	// DefaultRequestsPerSecond is the per-host request rate.
	DefaultRequestsPerSecond = 2
	// DefaultBurst allows a short run of requests before the rate applies.
	DefaultBurst = 4
)

// PoliteFetcher decorates a Fetcher with a per-host token bucket, so a crawl
// never hammers the target store. Each host gets its own limiter; a
// non-positive rate disables limiting entirely.
type PoliteFetcher struct {
	inner    Fetcher
	rate     rate.Limit
	burst    int
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewPoliteFetcher wraps inner. rps <= 0 means unlimited; a non-positive
// burst falls back to 1.
func NewPoliteFetcher(inner Fetcher, rps float64, burst int) *PoliteFetcher {
	r := rate.Limit(rps)
	if rps <= 0 {
		r = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &PoliteFetcher{
		inner:    inner,
		rate:     r,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Fetch waits for the host's token bucket before delegating. A canceled
// context aborts the wait and the fetch never starts.
func (f *PoliteFetcher) Fetch(ctx context.Context, rawURL string) (Response, error) {
	start := time.Now()
	if err := f.limiterFor(rawURL).Wait(ctx); err != nil {
		return Response{}, fmt.Errorf("rate limit wait: %w", err)
	}
	if waited := time.Since(start); waited > time.Millisecond {
		metrics.RateLimitObserved(waited.Seconds())
	}
	return f.inner.Fetch(ctx, rawURL)
}

func (f *PoliteFetcher) limiterFor(rawURL string) *rate.Limiter {
	host := "unknown"
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	limiter, ok := f.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(f.rate, f.burst)
		f.limiters[host] = limiter
	}
	return limiter
}
