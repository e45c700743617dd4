package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/freightlens/shipdedup/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchProcessor handles concurrent resolution of multiple input files.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-run execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each input file.
	// We use a factory because each file needs its own source and may
	// carry a different dataset profile.
	pipelineFactory func(path string) (*Pipeline, error)

	// concurrency is the maximum number of concurrent runs.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed run reports.
	// Access is synchronized via mutex.
	results []*model.RunReport
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

// WithConcurrency sets the maximum number of concurrent runs.
// Default is 2 if not specified: each run already parallelizes its own
// pairwise evaluation, so running many datasets at once mostly fights
// over the same cores.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each input file to create a
// fresh pipeline instance. This ensures that pipeline state doesn't leak
// between runs and allows per-dataset customization.
func NewBatchProcessor(pipelineFactory func(path string) (*Pipeline, error), opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     2,
		results:         make([]*model.RunReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch resolves multiple input files concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each file gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns all reports collected, even for files whose run failed.
// The error return indicates if the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, paths []string) ([]*model.RunReport, error) {
	bp.logger.Info("starting batch processing",
		"total_files", len(paths),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.RunReport, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("resolving dataset",
				"file", path,
				"index", i+1,
				"total", len(paths),
			)

			report := model.NewRunReport(path)

			p, err := bp.pipelineFactory(path)
			if err != nil {
				report.SetError(err)
			} else {
				err = p.Execute(ctx, report)
			}

			// Store result regardless of error
			// The report contains error information if the run failed
			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("run failed",
					"file", path,
					"error", err,
				)
				// Don't return error to errgroup - we want to continue
				// other runs. The error is recorded in the report.
				return nil
			}

			bp.logger.Info("run completed",
				"file", path,
			)

			return nil
		})
	}

	// Wait for all runs to complete
	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch processing complete",
		"total_files", len(paths),
		"elapsed", elapsed,
	)

	return bp.results, err
}

// ProcessBatchWithCallback resolves multiple files and calls a callback
// for each completed run. This is useful for streaming results.
//
// The callback receives the report and the index of the file in the
// original slice. The callback is called from the goroutine that completed
// the run, so it should be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	paths []string,
	callback func(report *model.RunReport, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_files", len(paths),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			report := model.NewRunReport(path)
			p, err := bp.pipelineFactory(path)
			if err != nil {
				report.SetError(err)
			} else {
				_ = p.Execute(ctx, report) //nolint:errcheck // Error is stored in report
			}

			// Call the callback with the result
			callback(report, i)

			return nil
		})
	}

	return g.Wait()
}
