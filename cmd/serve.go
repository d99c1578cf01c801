package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Hamzashehzad1/nabih-scraper/internal/api"
	"github.com/Hamzashehzad1/nabih-scraper/internal/clock/system"
	collyfetcher "github.com/Hamzashehzad1/nabih-scraper/internal/fetcher/colly"
	idgen "github.com/Hamzashehzad1/nabih-scraper/internal/id/uuid"
	"github.com/Hamzashehzad1/nabih-scraper/internal/metrics"
	"github.com/Hamzashehzad1/nabih-scraper/internal/pipeline"
	"github.com/Hamzashehzad1/nabih-scraper/internal/scraper"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service with the streaming /scrape endpoint.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // best-effort flush

			metrics.Init()

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
			pipe := pipeline.New(fetcher, system.New(), idgen.NewGenerator(), pipeline.Config{
				PageCap:          cfg.Crawler.PageCap,
				ImageConcurrency: cfg.Images.Concurrency,
			}, logger)
			server := api.NewServer(pipe, logger)

			httpServer := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
				Handler:           server.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server listening", zap.Int("port", cfg.Server.Port))
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serve: %w", err)
				}
				return nil
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown: %w", err)
				}
				return nil
			}
		},
	}
}
