// Package pipeline sequences the scrape end to end: frontier crawl, product
// extraction, image archiving, and artifact serialization, with lifecycle
// events relayed to a progress emitter in emission order.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Hamzashehzad1/nabih-scraper/internal/archive"
	systemclock "github.com/Hamzashehzad1/nabih-scraper/internal/clock/system"
	"github.com/Hamzashehzad1/nabih-scraper/internal/metrics"
	"github.com/Hamzashehzad1/nabih-scraper/internal/profile"
	"github.com/Hamzashehzad1/nabih-scraper/internal/progress"
	"github.com/Hamzashehzad1/nabih-scraper/internal/scraper"
)

// Config carries the per-run knobs.
type Config struct {
	PageCap          int
	ImageConcurrency int
}

// Pipeline is a reusable orchestrator; every Run builds its own crawl state
// and archive, so concurrent scrapes never share mutable state.
type Pipeline struct {
	fetcher scraper.Fetcher
	clock   scraper.Clock
	ids     scraper.IDGenerator
	cfg     Config
	logger  *zap.Logger
}

// New wires a Pipeline. fetcher should already carry retry behavior.
func New(fetcher scraper.Fetcher, clock scraper.Clock, ids scraper.IDGenerator, cfg Config, logger *zap.Logger) *Pipeline {
	if clock == nil {
		clock = systemclock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{fetcher: fetcher, clock: clock, ids: ids, cfg: cfg, logger: logger}
}

// Run executes one scrape. Events arrive at emitter strictly in the order
// they are produced, ending with exactly one terminal event: complete with
// the CSV and base64 zip artifacts, or error with a human-readable message.
// The caller owns closing the stream after Run returns.
func (p *Pipeline) Run(ctx context.Context, seed string, prof *profile.Profile, emitter progress.Emitter) {
	jobID := p.newJobID()
	emit := func(evt progress.Event) {
		evt.JobID = jobID
		evt.TS = p.clock.Now()
		emitter.Emit(evt)
	}
	fail := func(msg string) {
		p.logger.Warn("scrape failed", zap.String("job_id", jobID), zap.String("reason", msg))
		metrics.JobFinished("error")
		emit(progress.Event{Type: progress.TypeError, Message: msg})
	}

	emit(progress.Event{Type: progress.TypeProgress, Message: fmt.Sprintf("Starting crawl of %s (%s profile)", seed, prof.Key)})

	frontier := scraper.NewFrontier(p.fetcher, prof, p.cfg.PageCap, p.logger)
	productURLs, err := frontier.Discover(ctx, seed, func(msg string) {
		emit(progress.Event{Type: progress.TypeProgress, Message: msg})
	})
	if err != nil {
		if errors.Is(err, scraper.ErrNoProductsFound) {
			fail("No products found on this site. Check that the platform matches the store, or try a category page as the start URL.")
		} else {
			fail(fmt.Sprintf("Crawl failed: %v", err))
		}
		return
	}

	emit(progress.Event{Type: progress.TypeProgress, Message: fmt.Sprintf("Found %d product pages", len(productURLs))})

	bundle := archive.New()
	downloader := archive.NewDownloader(p.fetcher, bundle, p.cfg.ImageConcurrency, p.clock, p.logger)
	extractor := scraper.NewExtractor(p.fetcher, prof, downloader, p.logger)

	// Products are processed one at a time on purpose: emission order stays
	// deterministic and the target site sees at most one product page fetch
	// in flight. Only image downloads within a product fan out.
	var records []scraper.ProductRecord
	for _, u := range productURLs {
		rec := extractor.Extract(ctx, u)
		if rec == nil {
			metrics.ProductExtracted("skipped")
			emit(progress.Event{Type: progress.TypeProgress, Message: fmt.Sprintf("Warning: could not extract a product from %s, skipping", u)})
			continue
		}
		metrics.ProductExtracted("ok")
		records = append(records, *rec)
		emit(progress.Event{Type: progress.TypeProduct, Product: rec})
	}

	if len(records) == 0 {
		fail("No products could be extracted from the discovered pages.")
		return
	}

	emit(progress.Event{Type: progress.TypeProgress, Message: "Building CSV and image archive"})

	csvText, err := scraper.RecordsToCSV(records)
	if err != nil {
		fail(fmt.Sprintf("Could not build the CSV export: %v", err))
		return
	}
	zipB64, err := bundle.Base64Zip()
	if err != nil {
		fail(fmt.Sprintf("Could not build the image archive: %v", err))
		return
	}

	metrics.JobFinished("complete")
	emit(progress.Event{Type: progress.TypeComplete, CSV: csvText, Archive: zipB64})
}

func (p *Pipeline) newJobID() string {
	if p.ids == nil {
		return ""
	}
	id, err := p.ids.NewID()
	if err != nil {
		p.logger.Warn("job id generation failed", zap.Error(err))
		return ""
	}
	return id
}
