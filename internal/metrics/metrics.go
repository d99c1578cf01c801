// Package metrics exposes Prometheus collectors for the scraper service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesCrawledTotal      *prometheus.CounterVec
	productsExtractedTotal *prometheus.CounterVec
	imagesArchivedTotal    *prometheus.CounterVec
	fetchRetriesTotal      prometheus.Counter
	scrapeJobsTotal        *prometheus.CounterVec
	pageFetchSeconds       prometheus.Histogram
	rateLimitWaitSeconds   prometheus.Histogram

	once sync.Once
)

// Init registers the collectors with the default registry. It is safe to
// call multiple times; the helper functions below no-op until it runs, so
// unit tests can exercise instrumented code without touching the registry.
func Init() {
	once.Do(func() {
		pagesCrawledTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_pages_crawled_total",
				Help: "Total pages dequeued by the frontier, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		productsExtractedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_products_extracted_total",
				Help: "Total product extraction attempts, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		imagesArchivedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_images_archived_total",
				Help: "Total image archive operations, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		fetchRetriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_fetch_retries_total",
				Help: "Total fetch attempts beyond the first for any URL.",
			},
		)

		scrapeJobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_jobs_total",
				Help: "Total scrape jobs, labeled by terminal status.",
			},
			[]string{"status"},
		)

		pageFetchSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scraper_page_fetch_duration_seconds",
				Help:    "Latency of page fetches during the crawl phase.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		)

		rateLimitWaitSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scraper_rate_limit_wait_seconds",
				Help:    "Delay introduced by the per-host politeness limiter.",
				Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5},
			},
		)
	})
}

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// PageCrawled counts one frontier dequeue with the given outcome ("ok",
// "fetch_error" or "parse_error").
func PageCrawled(outcome string) {
	if pagesCrawledTotal == nil {
		return
	}
	pagesCrawledTotal.WithLabelValues(outcome).Inc()
}

// PageFetchObserved records the latency of one crawl-phase page fetch.
func PageFetchObserved(seconds float64) {
	if pageFetchSeconds == nil {
		return
	}
	pageFetchSeconds.Observe(seconds)
}

// ProductExtracted counts one extraction attempt ("ok" or "skipped").
func ProductExtracted(outcome string) {
	if productsExtractedTotal == nil {
		return
	}
	productsExtractedTotal.WithLabelValues(outcome).Inc()
}

// ImageArchived counts one image operation ("stored", "failed" or "dedup").
func ImageArchived(outcome string) {
	if imagesArchivedTotal == nil {
		return
	}
	imagesArchivedTotal.WithLabelValues(outcome).Inc()
}

// RateLimitObserved records how long a fetch waited on the politeness
// limiter.
func RateLimitObserved(seconds float64) {
	if rateLimitWaitSeconds == nil {
		return
	}
	rateLimitWaitSeconds.Observe(seconds)
}

// FetchRetried counts one fetch attempt beyond the first.
func FetchRetried() {
	if fetchRetriesTotal == nil {
		return
	}
	fetchRetriesTotal.Inc()
}

// JobFinished counts one scrape job terminal event ("complete" or "error").
func JobFinished(status string) {
	if scrapeJobsTotal == nil {
		return
	}
	scrapeJobsTotal.WithLabelValues(status).Inc()
}
