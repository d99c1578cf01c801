package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/Hamzashehzad1/nabih-scraper/internal/metrics"
	"github.com/Hamzashehzad1/nabih-scraper/internal/profile"
)

// DefaultPageCap bounds how many pages one crawl may dequeue.
const DefaultPageCap = 50

// Frontier drives the breadth-first traversal that discovers product URLs.
// Pages are fetched strictly one at a time; the page cap guarantees
// termination on sites with cycles or unbounded link fan-out.
type Frontier struct {
	fetcher Fetcher
	profile *profile.Profile
	pageCap int
	logger  *zap.Logger
}

// NewFrontier builds a Frontier. A non-positive pageCap falls back to
// DefaultPageCap.
func NewFrontier(fetcher Fetcher, prof *profile.Profile, pageCap int, logger *zap.Logger) *Frontier {
	if pageCap <= 0 {
		pageCap = DefaultPageCap
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Frontier{fetcher: fetcher, profile: prof, pageCap: pageCap, logger: logger}
}

// Discover crawls outward from seed and returns the product-candidate URLs
// in discovery order. Progress lines are delivered to notify in emission
// order; a nil notify is allowed. An unreachable page is reported as a
// warning and skipped, never aborting the crawl. When the whole crawl finds
// no product links the seed itself is checked against the title selector;
// if that also fails, Discover returns ErrNoProductsFound.
func (f *Frontier) Discover(ctx context.Context, seed string, notify func(string)) ([]string, error) {
	if notify == nil {
		notify = func(string) {}
	}
	seedURL, err := url.Parse(seed)
	if err != nil {
		return nil, fmt.Errorf("parse seed url: %w", err)
	}
	normalizeInPlace(seedURL)

	state := NewCrawlState(seedURL.String())
	for state.Processed() < f.pageCap {
		pageURL, ok := state.Dequeue()
		if !ok {
			break
		}
		notify(fmt.Sprintf("Crawling page %d of at most %d: %s", state.Processed(), f.pageCap, pageURL))

		resp, err := f.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			metrics.PageCrawled("fetch_error")
			f.logger.Warn("page fetch failed", zap.String("url", pageURL), zap.Error(err))
			notify(fmt.Sprintf("Warning: could not fetch %s, skipping", pageURL))
			continue
		}
		metrics.PageFetchObserved(resp.Duration.Seconds())

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
		if err != nil {
			metrics.PageCrawled("parse_error")
			f.logger.Warn("page parse failed", zap.String("url", pageURL), zap.Error(err))
			notify(fmt.Sprintf("Warning: could not parse %s, skipping", pageURL))
			continue
		}
		metrics.PageCrawled("ok")

		f.collectLinks(doc, seedURL, state)
		f.collectProductLinks(doc, seedURL, state)
	}

	products := state.ProductURLs()
	if len(products) == 0 {
		return f.seedFallback(ctx, seedURL.String(), notify)
	}
	return products, nil
}

// collectLinks feeds the frontier queue. Hrefs are resolved against the seed
// URL, fragment-stripped, and kept only when in scope. Static-asset URLs are
// recorded as visited so they are never re-checked, but not queued.
func (f *Frontier) collectLinks(doc *goquery.Document, seedURL *url.URL, state *CrawlState) {
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved, err := Resolve(seedURL, href)
		if err != nil || !InScope(seedURL, resolved) {
			return
		}
		if IsAssetPath(resolved.Path) {
			state.MarkVisited(resolved.String())
			return
		}
		state.Enqueue(resolved.String())
	})
}

// collectProductLinks scans elements matching the profile's product-link
// selectors. This runs independently of general crawling: a URL can be both
// queued for traversal and recorded as a product candidate.
func (f *Frontier) collectProductLinks(doc *goquery.Document, seedURL *url.URL, state *CrawlState) {
	for _, sel := range f.profile.ProductLink {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			href, ok := s.Attr("href")
			if !ok {
				href, ok = s.Find("a[href]").First().Attr("href")
			}
			if !ok || href == "" {
				return
			}
			resolved, err := Resolve(seedURL, href)
			if err != nil || !InScope(seedURL, resolved) {
				return
			}
			state.AddProduct(resolved.String())
		})
	}
}

// seedFallback runs after a productless crawl: when the seed page itself has
// a non-empty title match it is treated as the sole product page. Unlike
// crawl-phase fetches, a fetch failure here propagates.
func (f *Frontier) seedFallback(ctx context.Context, seed string, notify func(string)) ([]string, error) {
	resp, err := f.fetcher.Fetch(ctx, seed)
	if err != nil {
		return nil, fmt.Errorf("seed fallback fetch: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("seed fallback parse: %w", err)
	}
	if firstText(doc, f.profile.Title) == "" {
		return nil, ErrNoProductsFound
	}
	notify("Base URL detected as a product page")
	return []string{seed}, nil
}
