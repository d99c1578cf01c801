package scraper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Hamzashehzad1/nabih-scraper/internal/metrics"
)

const (
	// DefaultRetries is the number of attempts per URL.
	DefaultRetries = 3
	// DefaultRetryDelay is the fixed pause between attempts. Crawl targets
	// are small shops, so a flat delay is enough; exponential backoff would
	// only slow the happy path.
	DefaultRetryDelay = time.Second
)

// RetryFetcher decorates a Fetcher with fixed-delay retries. A non-2xx
// status counts as a failed attempt. Once every attempt is spent the fetch
// fails with a FetchExhaustedError.
type RetryFetcher struct {
	inner    Fetcher
	attempts int
	delay    time.Duration
	logger   *zap.Logger
}

// NewRetryFetcher wraps inner. Non-positive attempts or delay fall back to
// the defaults.
func NewRetryFetcher(inner Fetcher, attempts int, delay time.Duration, logger *zap.Logger) *RetryFetcher {
	if attempts <= 0 {
		attempts = DefaultRetries
	}
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryFetcher{inner: inner, attempts: attempts, delay: delay, logger: logger}
}

// Fetch retries the underlying fetch up to the configured attempt count,
// sleeping the fixed delay between attempts.
func (f *RetryFetcher) Fetch(ctx context.Context, url string) (Response, error) {
	var lastErr error
	for attempt := 1; attempt <= f.attempts; attempt++ {
		if attempt > 1 {
			metrics.FetchRetried()
			if err := sleep(ctx, f.delay); err != nil {
				return Response{}, err
			}
		}
		resp, err := f.inner.Fetch(ctx, url)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}
		if err == nil {
			err = fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		lastErr = err
		f.logger.Warn("fetch attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", f.attempts),
			zap.Error(err),
		)
	}
	return Response{}, &FetchExhaustedError{URL: url, Attempts: f.attempts, Err: lastErr}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("retry wait: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
