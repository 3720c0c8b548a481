package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/wikibridge/internal/model"
)

// DefaultConcurrency is the number of concurrent checks when not configured.
const DefaultConcurrency = 4

// Classifier decides whether a page location names an article.
type Classifier interface {
	Classify(location string) (model.CheckRequest, bool)
}

// Checker runs one existence check.
type Checker interface {
	Check(ctx context.Context, req model.CheckRequest) model.CheckResult
}

// BatchProcessor checks many page locations concurrently. Ineligible
// locations are recorded as skipped and never reach the checker.
type BatchProcessor struct {
	classifier  Classifier
	checker     Checker
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent checks.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(classifier Classifier, checker Checker, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		classifier:  classifier,
		checker:     checker,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch checks every location and returns the entries in input order.
// Entries for locations not reached before ctx was cancelled are left as the
// zero BatchEntry with only Location set, and the context error is returned.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, locations []string) ([]model.BatchEntry, error) {
	entries := make([]model.BatchEntry, len(locations))
	for i, loc := range locations {
		entries[i].Location = loc
	}

	start := time.Now()
	err := bp.ProcessBatchWithCallback(ctx, locations, func(entry model.BatchEntry, index int) {
		entries[index] = entry
	})

	bp.logger.Info("batch complete",
		"total", len(locations),
		"elapsed", time.Since(start),
	)
	return entries, err
}

// ProcessBatchWithCallback checks every location and calls callback as each
// entry completes. callback runs on worker goroutines, one call per index.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	locations []string,
	callback func(entry model.BatchEntry, index int),
) error {
	bp.logger.Info("starting batch",
		"total", len(locations),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, location := range locations {
		req, ok := bp.classifier.Classify(location)
		if !ok {
			bp.logger.Debug("skipping ineligible location", "location", location)
			callback(model.NewSkippedEntry(location), i)
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			started := time.Now()
			result := bp.checker.Check(ctx, req)
			bp.logger.Debug("checked location",
				"location", location,
				"status", result.Status.String(),
			)
			callback(model.NewCheckedEntry(location, req, result, time.Since(started)), i)
			return nil
		})
	}

	return g.Wait()
}
