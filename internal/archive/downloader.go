package archive

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Hamzashehzad1/nabih-scraper/internal/metrics"
	"github.com/Hamzashehzad1/nabih-scraper/internal/scraper"
)

// DefaultConcurrency caps in-flight image fetches per product. Large product
// galleries otherwise fan out one request per image at once.
const DefaultConcurrency = 5

// Downloader implements scraper.ImageArchiver: it resolves image URLs
// against the product page, dedupes by destination filename, fetches the
// missing ones through a bounded worker set, and stores the bytes in the
// shared Archive. One failed image is logged and omitted; it never fails
// the batch.
type Downloader struct {
	fetcher     scraper.Fetcher
	archive     *Archive
	concurrency int
	clock       scraper.Clock
	logger      *zap.Logger
}

// NewDownloader builds a Downloader writing into archive.
func NewDownloader(fetcher scraper.Fetcher, archive *Archive, concurrency int, clock scraper.Clock, logger *zap.Logger) *Downloader {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Downloader{
		fetcher:     fetcher,
		archive:     archive,
		concurrency: concurrency,
		clock:       clock,
		logger:      logger,
	}
}

type imageTask struct {
	url  string
	path string
	// present marks entries that already existed in the archive before this
	// batch; they are referenced without a second fetch.
	present bool
	stored  bool
}

// Archive downloads the images for one product page and returns the archive
// paths of every image confirmed present, in the order their filenames were
// decided. All destination filenames are fixed synchronously before any
// fetch starts, so each archive entry is written at most once and the
// concurrent completions never contend for a key.
func (d *Downloader) Archive(ctx context.Context, imageURLs []string, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		d.logger.Warn("bad product page url, skipping images", zap.String("url", pageURL), zap.Error(err))
		return nil
	}

	tasks := d.planTasks(imageURLs, base)
	d.fetchAll(ctx, tasks)

	var paths []string
	for _, t := range tasks {
		if t.present || t.stored {
			paths = append(paths, t.path)
		}
	}
	return paths
}

// planTasks resolves each URL and decides its destination filename. Repeats
// of a filename within the batch collapse into the first occurrence, and
// filenames already present in the archive are marked for reference only.
func (d *Downloader) planTasks(imageURLs []string, base *url.URL) []*imageTask {
	seen := make(map[string]struct{})
	var tasks []*imageTask
	for _, raw := range imageURLs {
		resolved, err := scraper.Resolve(base, raw)
		if err != nil {
			d.logger.Debug("unresolvable image url", zap.String("href", raw), zap.Error(err))
			continue
		}
		dest := "images/" + destFilename(resolved, d.now())
		if _, dup := seen[dest]; dup {
			continue
		}
		seen[dest] = struct{}{}
		t := &imageTask{url: resolved.String(), path: dest}
		if d.archive.Contains(dest) {
			t.present = true
			metrics.ImageArchived("dedup")
		}
		tasks = append(tasks, t)
	}
	return tasks
}

// fetchAll fans the pending tasks out across at most d.concurrency workers
// and waits for every one: a failed sibling never cancels the rest.
func (d *Downloader) fetchAll(ctx context.Context, tasks []*imageTask) {
	sem := make(chan struct{}, d.concurrency)
	var wg sync.WaitGroup
	for _, t := range tasks {
		if t.present {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(t *imageTask) {
			defer wg.Done()
			defer func() { <-sem }()
			d.fetchOne(ctx, t)
		}(t)
	}
	wg.Wait()
}

func (d *Downloader) fetchOne(ctx context.Context, t *imageTask) {
	resp, err := d.fetcher.Fetch(ctx, t.url)
	if err != nil {
		metrics.ImageArchived("failed")
		d.logger.Warn("image fetch failed", zap.String("url", t.url), zap.Error(err))
		return
	}
	if !d.archive.Add(t.path, resp.Body) {
		// Filenames are unique within the batch and pre-checked against the
		// archive, so a refused add only happens if an earlier crawl entry
		// appeared between planning and storing; reference it instead.
		metrics.ImageArchived("dedup")
		t.present = true
		return
	}
	metrics.ImageArchived("stored")
	t.stored = true
}

func (d *Downloader) now() time.Time {
	if d.clock != nil {
		return d.clock.Now()
	}
	return time.Now().UTC()
}

// destFilename is the final path segment of the image URL with the query
// string gone, or a timestamp-synthetic name when the URL has no usable
// segment. Colliding names across source paths deliberately dedupe to one
// entry.
func destFilename(u *url.URL, now time.Time) string {
	base := path.Base(u.Path)
	if base == "" || base == "." || base == "/" || strings.TrimSpace(base) == "" {
		return fmt.Sprintf("image-%d.jpg", now.UnixNano())
	}
	return base
}
