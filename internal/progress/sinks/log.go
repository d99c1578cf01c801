// Package sinks provides progress.Sink implementations.
package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/Hamzashehzad1/nabih-scraper/internal/progress"
)

// LogSink writes structured logs for each progress event. The batch command
// uses it so a one-shot scrape is observable without an HTTP consumer.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs one event with structured fields. Bulky payloads (CSV,
// archive) are logged by size, not content.
func (s *LogSink) Consume(_ context.Context, evt progress.Event) error {
	fields := []zap.Field{
		zap.String("type", string(evt.Type)),
		zap.String("job_id", evt.JobID),
	}
	if evt.Message != "" {
		fields = append(fields, zap.String("message", evt.Message))
	}
	if evt.Product != nil {
		fields = append(fields,
			zap.String("product_name", evt.Product.Name),
			zap.String("product_url", evt.Product.SourceURL),
		)
	}
	if evt.Type == progress.TypeComplete {
		fields = append(fields,
			zap.Int("csv_bytes", len(evt.CSV)),
			zap.Int("archive_bytes", len(evt.Archive)),
		)
	}
	s.logger.Info("progress event", fields...)
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
