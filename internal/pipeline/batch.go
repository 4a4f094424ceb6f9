package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/wikid/internal/model"
)

// Pair is one start/destination query of a batch.
type Pair struct {
	Start       model.DocumentID
	Destination model.DocumentID
}

// BatchProcessor handles concurrent processing of multiple searches.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on a single search
// 2. Every search gets a fresh pipeline, so no graph state is shared
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each search.
	pipelineFactory func(Pair) *Pipeline

	// concurrency is the maximum number of concurrent searches.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed search results.
	// Access is synchronized via mutex.
	results []*model.SearchResult
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent searches.
// Default is 2, which keeps the request rate against a single wiki modest.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each pair to create a fresh
// pipeline instance.
func NewBatchProcessor(pipelineFactory func(Pair) *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     2,
		results:         make([]*model.SearchResult, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch runs a search for every pair concurrently.
// Results keep the order of pairs; a pair whose search never started
// because the batch was cancelled has a nil entry.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
//
// A failing search does not stop the others; its error is recorded in
// its result. The error return is only set when ctx was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, pairs []Pair) ([]*model.SearchResult, error) {
	bp.logger.Info("starting batch processing",
		"total_searches", len(pairs),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()
	bp.results = make([]*model.SearchResult, len(pairs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, pair := range pairs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("searching",
				"start", pair.Start,
				"destination", pair.Destination,
				"index", i+1,
				"total", len(pairs),
			)

			result := model.NewSearchResult(pair.Start, pair.Destination)
			err := bp.pipelineFactory(pair).Execute(ctx, result)

			bp.mu.Lock()
			bp.results[i] = result
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("search failed",
					"start", pair.Start,
					"destination", pair.Destination,
					"error", err,
				)
				return nil
			}

			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		"total_searches", len(pairs),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}
