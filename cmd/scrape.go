package cmd

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Hamzashehzad1/nabih-scraper/internal/clock/system"
	collyfetcher "github.com/Hamzashehzad1/nabih-scraper/internal/fetcher/colly"
	idgen "github.com/Hamzashehzad1/nabih-scraper/internal/id/uuid"
	"github.com/Hamzashehzad1/nabih-scraper/internal/pipeline"
	"github.com/Hamzashehzad1/nabih-scraper/internal/profile"
	"github.com/Hamzashehzad1/nabih-scraper/internal/progress"
	"github.com/Hamzashehzad1/nabih-scraper/internal/progress/sinks"
	"github.com/Hamzashehzad1/nabih-scraper/internal/scraper"
)

func newScrapeCmd() *cobra.Command {
	var (
		seedURL  string
		platform string
		outDir   string
	)
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run one scrape and write products.csv plus images.zip to a directory.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // best-effort flush

			prof, err := profile.Lookup(platform)
			if err != nil {
				return fmt.Errorf("platform %q: %w (available: %v)", platform, err, profile.Keys())
			}

			fetcher := scraper.NewRetryFetcher(
				scraper.NewPoliteFetcher(
					collyfetcher.New(collyfetcher.Config{
						UserAgent: cfg.Crawler.UserAgent,
						Timeout:   cfg.FetchTimeout(),
					}),
					cfg.Crawler.RequestsPerSecond,
					cfg.Crawler.Burst,
				),
				cfg.Crawler.Retries,
				cfg.RetryDelay(),
				logger,
			)
			// The batch path gets the larger page budget.
			pipe := pipeline.New(fetcher, system.New(), idgen.NewGenerator(), pipeline.Config{
				PageCap:          cfg.Crawler.BatchPageCap,
				ImageConcurrency: cfg.Images.Concurrency,
			}, logger)

			stream := progress.NewStream(0)
			go func() {
				pipe.Run(cmd.Context(), seedURL, prof, stream)
				stream.Close()
			}()

			sink := sinks.NewLogSink(logger)
			var terminal progress.Event
			for evt := range stream.Events() {
				if err := sink.Consume(cmd.Context(), evt); err != nil {
					logger.Warn("log sink failed", zap.Error(err))
				}
				if evt.Terminal() {
					terminal = evt
				}
			}

			if terminal.Type == progress.TypeError {
				return errors.New(terminal.Message)
			}
			return writeArtifacts(outDir, terminal)
		},
	}
	cmd.Flags().StringVar(&seedURL, "url", "", "start URL of the storefront (required)")
	cmd.Flags().StringVar(&platform, "platform", profile.DefaultKey, "selector profile key")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func writeArtifacts(outDir string, terminal progress.Event) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	csvPath := filepath.Join(outDir, "products.csv")
	if err := os.WriteFile(csvPath, []byte(terminal.CSV), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", csvPath, err)
	}
	zipBytes, err := base64.StdEncoding.DecodeString(terminal.Archive)
	if err != nil {
		return fmt.Errorf("decode archive: %w", err)
	}
	zipPath := filepath.Join(outDir, "images.zip")
	if err := os.WriteFile(zipPath, zipBytes, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", zipPath, err)
	}
	return nil
}
