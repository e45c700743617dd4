package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/freightlens/shipdedup/internal/config"
	"github.com/freightlens/shipdedup/internal/geocode"
	"github.com/freightlens/shipdedup/internal/match"
	"github.com/freightlens/shipdedup/internal/model"
	"github.com/freightlens/shipdedup/internal/refine"
	"github.com/freightlens/shipdedup/internal/similarity"
	"github.com/freightlens/shipdedup/internal/standardize"
)

// Concurrency limits for the enrichment steps. Refinement is bounded by
// the API provider's rate limits; geocoding by Nominatim's usage policy.
const (
	refineConcurrency  = 4
	geocodeConcurrency = 2
)

// RecordSource yields the raw record set for a run.
// The source package provides the CSV implementation; the interface exists
// so the load step can be tested without touching the filesystem.
type RecordSource interface {
	Load() ([]model.Record, error)
}

// LoadStep reads the raw record set into the report.
//
// Design decision: Loading is a pipeline step rather than an argument to
// Execute because a failed load should be recorded in the report like any
// other step failure, and because the step order then documents the whole
// run in PerformedSteps.
type LoadStep struct {
	source RecordSource
	logger *slog.Logger
}

// NewLoadStep creates a load step reading from the given source.
func NewLoadStep(source RecordSource, logger *slog.Logger) *LoadStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadStep{source: source, logger: logger}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do executes the load step. An unreadable or empty input is fatal.
func (s *LoadStep) Do(_ context.Context, report *model.RunReport) error {
	records, err := s.source.Load()
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	report.Records = records
	s.logger.Info("records loaded",
		"dataset", report.Dataset,
		"records", len(records),
	)
	return nil
}

// RefineStep rewrites each record's text through an LLM-backed refiner
// before standardization. Refinement is best effort: a failed call falls
// back to the original text and is counted, never fatal.
type RefineStep struct {
	refiner *refine.Fallback
	logger  *slog.Logger
}

// NewRefineStep creates a refinement step. The inner refiner is wrapped so
// that per-record failures degrade to the unrefined text.
func NewRefineStep(refiner refine.Refiner, logger *slog.Logger) *RefineStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefineStep{refiner: refine.NewFallback(refiner), logger: logger}
}

// Name returns the step name.
func (s *RefineStep) Name() string {
	return "refine"
}

// Do refines every record's name and address with bounded concurrency.
// The refined set is stored alongside the raw records; the raw text stays
// untouched for reports. Each goroutine owns its record's slot, so no
// locking is needed on the result slice.
func (s *RefineStep) Do(ctx context.Context, report *model.RunReport) error {
	refined := make([]model.Record, len(report.Records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(refineConcurrency)

	for i, rec := range report.Records {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			// The fallback wrapper absorbs refiner errors; the only error
			// it can surface is context cancellation.
			name, err := s.refiner.Refine(ctx, rec.Name)
			if err != nil {
				return fmt.Errorf("refine record %d name: %w", rec.ID, err)
			}
			address, err := s.refiner.Refine(ctx, rec.Address)
			if err != nil {
				return fmt.Errorf("refine record %d address: %w", rec.ID, err)
			}

			refined[i] = model.Record{ID: rec.ID, Name: name, Address: address}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	report.Refined = refined
	report.Metrics.RefinementFallbacks = s.refiner.Fallbacks()

	s.logger.Info("refinement complete",
		"records", len(refined),
		"fallbacks", report.Metrics.RefinementFallbacks,
	)
	return nil
}

// StandardizeStep computes and caches the canonical comparable form of
// every record. It reads the refined text when a refine step ran, and the
// raw text otherwise; either way the standardizer has the final word on
// what the resolution core compares.
type StandardizeStep struct {
	standardizer *standardize.Standardizer
	logger       *slog.Logger
}

// NewStandardizeStep creates a standardization step.
func NewStandardizeStep(standardizer *standardize.Standardizer, logger *slog.Logger) *StandardizeStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &StandardizeStep{standardizer: standardizer, logger: logger}
}

// Name returns the step name.
func (s *StandardizeStep) Name() string {
	return "standardize"
}

// Do standardizes every record once, in record order.
func (s *StandardizeStep) Do(ctx context.Context, report *model.RunReport) error {
	input := report.Records
	if report.Refined != nil {
		input = report.Refined
	}

	standardized := make([]model.StandardizedRecord, len(input))
	for i, rec := range input {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		name, address := s.standardizer.Record(rec.Name, rec.Address)
		standardized[i] = model.StandardizedRecord{Name: name, Address: address}
	}

	report.Standardized = standardized
	return nil
}

// GeocodeStep resolves each record's raw address to coordinates. Failed
// lookups yield unknown coordinates and are counted; they contribute no
// signal to match decisions but never abort the run.
type GeocodeStep struct {
	geocoder geocode.Geocoder
	logger   *slog.Logger
}

// NewGeocodeStep creates a geocoding step. The geocoder is typically a
// geocode.Cached wrapping the Nominatim client over the run database cache.
func NewGeocodeStep(geocoder geocode.Geocoder, logger *slog.Logger) *GeocodeStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeocodeStep{geocoder: geocoder, logger: logger}
}

// Name returns the step name.
func (s *GeocodeStep) Name() string {
	return "geocode"
}

// Do geocodes every record's raw address with bounded concurrency. Each
// goroutine owns its record's slot, so no locking is needed on the result
// slice.
func (s *GeocodeStep) Do(ctx context.Context, report *model.RunReport) error {
	coordinates := make([]model.Coordinates, len(report.Records))
	var failures atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(geocodeConcurrency)

	for i, rec := range report.Records {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if rec.Address == "" {
				coordinates[i] = geocode.Unknown()
				return nil
			}

			coords, err := s.geocoder.Geocode(ctx, rec.Address)
			if err != nil {
				s.logger.Debug("geocode failed",
					"record", rec.ID,
					"error", err,
				)
				coordinates[i] = geocode.Unknown()
				failures.Add(1)
				return nil
			}
			coordinates[i] = coords
			if !coords.Known {
				failures.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	report.Coordinates = coordinates
	report.Metrics.GeocodeFailures = int(failures.Load())

	s.logger.Info("geocoding complete",
		"records", len(coordinates),
		"failures", failures.Load(),
	)
	return nil
}

// EvaluateStep scores every unordered record pair and records the matched
// set plus the pairs flagged for manual review.
type EvaluateStep struct {
	engine *match.Engine
	logger *slog.Logger
}

// NewEvaluateStep creates a pairwise evaluation step.
func NewEvaluateStep(engine *match.Engine, logger *slog.Logger) *EvaluateStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &EvaluateStep{engine: engine, logger: logger}
}

// Name returns the step name.
func (s *EvaluateStep) Name() string {
	return "evaluate"
}

// Do runs the pairwise evaluation. Comparison counters land in the metrics
// immediately so the metrics step can fold them into the final summary.
func (s *EvaluateStep) Do(ctx context.Context, report *model.RunReport) error {
	result, err := s.engine.Evaluate(ctx, report.Standardized, report.Coordinates)
	if err != nil {
		return fmt.Errorf("evaluate pairs: %w", err)
	}

	report.Matches = result.Matches
	report.ReviewPairs = result.ReviewPairs
	report.Metrics.Comparisons = result.Comparisons
	report.Metrics.SkippedComparisons = result.Skipped

	s.logger.Info("evaluation complete",
		"comparisons", result.Comparisons,
		"matches", len(result.Matches),
		"review_pairs", len(result.ReviewPairs),
	)
	return nil
}

// ClusterStep folds the matched pairs into clusters via union-find.
type ClusterStep struct {
	logger *slog.Logger
}

// NewClusterStep creates a clustering step.
func NewClusterStep(logger *slog.Logger) *ClusterStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClusterStep{logger: logger}
}

// Name returns the step name.
func (s *ClusterStep) Name() string {
	return "cluster"
}

// Do assigns every record to a cluster, or Unassigned for singletons.
func (s *ClusterStep) Do(_ context.Context, report *model.RunReport) error {
	report.Assignment = match.BuildClusters(len(report.Records), report.Matches)

	s.logger.Info("clustering complete",
		"clusters", report.Assignment.ClusterCount(),
		"singletons", report.Assignment.Singletons(),
	)
	return nil
}

// MetricsStep computes the final run metrics. It must run last: it folds
// the evaluation result and cluster assignment into the summary while
// preserving the counters earlier steps already recorded.
type MetricsStep struct {
	logger *slog.Logger
}

// NewMetricsStep creates a metrics step.
func NewMetricsStep(logger *slog.Logger) *MetricsStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetricsStep{logger: logger}
}

// Name returns the step name.
func (s *MetricsStep) Name() string {
	return "metrics"
}

// Do aggregates the run metrics.
func (s *MetricsStep) Do(_ context.Context, report *model.RunReport) error {
	result := &match.Result{
		Matches:     report.Matches,
		ReviewPairs: report.ReviewPairs,
		Comparisons: report.Metrics.Comparisons,
		Skipped:     report.Metrics.SkippedComparisons,
	}

	metrics := match.Aggregate(result, report.Assignment)
	metrics.RefinementFallbacks = report.Metrics.RefinementFallbacks
	metrics.GeocodeFailures = report.Metrics.GeocodeFailures
	metrics.Elapsed = time.Since(report.StartedAt)

	report.Metrics = metrics
	return nil
}

// Deps carries the externally constructed collaborators of a default
// pipeline. Source is required; Refiner and Geocoder are optional and
// their steps are omitted when nil.
type Deps struct {
	// Source yields the raw record set.
	Source RecordSource

	// Refiner rewrites record text before standardization, or nil.
	Refiner refine.Refiner

	// Geocoder resolves addresses to coordinates, or nil.
	Geocoder geocode.Geocoder

	// Ruleset is the standardization ruleset for this dataset.
	Ruleset standardize.Ruleset
}

// DefaultPipeline builds the standard resolution pipeline from a validated
// configuration.
//
// Design decision: We provide a default pipeline because:
// 1. Most runs want the same step ordering
// 2. Reduces boilerplate in the CLI
// 3. Keeps the scorer, decider, and engine wiring in one place
func DefaultPipeline(cfg *config.Config, deps Deps, opts ...Option) (*Pipeline, error) {
	standardizer, err := standardize.New(deps.Ruleset)
	if err != nil {
		return nil, fmt.Errorf("build standardizer: %w", err)
	}

	scorer := similarity.NewScorer(cfg.NameWeight)
	decider := match.NewDecider(scorer, cfg.NameThreshold, cfg.AddressThreshold, cfg.FalsePositiveMargin)
	if deps.Geocoder != nil {
		decider.DistanceThresholdMiles = cfg.DistanceThresholdMiles
	}

	p := New(opts...)

	engine := match.NewEngine(scorer, decider,
		match.WithWorkers(cfg.Workers),
		match.WithReviewCutoff(cfg.ReviewCutoff),
		match.WithLogger(p.logger),
	)

	p.AddStep(NewLoadStep(deps.Source, p.logger))
	if deps.Refiner != nil {
		p.AddStep(NewRefineStep(deps.Refiner, p.logger))
	}
	p.AddStep(NewStandardizeStep(standardizer, p.logger))
	if deps.Geocoder != nil {
		p.AddStep(NewGeocodeStep(deps.Geocoder, p.logger))
	}
	p.AddSteps(
		NewEvaluateStep(engine, p.logger),
		NewClusterStep(p.logger),
		NewMetricsStep(p.logger),
	)

	return p, nil
}
