package match

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/freightlens/shipdedup/internal/geocode"
	"github.com/freightlens/shipdedup/internal/model"
	"github.com/freightlens/shipdedup/internal/similarity"
)

// Result is the output of one pairwise evaluation pass.
type Result struct {
	// Matches holds every matched pair with its scores, each with I < J.
	Matches []model.PairScore

	// ReviewPairs holds suspect false positives plus matches whose overall
	// similarity fell below the review cutoff.
	ReviewPairs []model.ReviewPair

	// Comparisons is the number of pairs scored.
	Comparisons int

	// Skipped is the number of pairs whose scoring failed and was skipped.
	Skipped int
}

// Engine evaluates all unordered record pairs against the match decider.
type Engine struct {
	scorer  *similarity.Scorer
	decider *Decider

	// workers is the number of contiguous chunks the record set is split
	// into, one goroutine per chunk.
	workers int

	// reviewCutoff routes matched pairs with a lower overall similarity to
	// the review report. The value is empirically chosen, not derived; it
	// is configuration, not algorithmic truth.
	reviewCutoff float64

	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithWorkers sets the evaluation worker count. Non-positive values are
// ignored and the default (available parallelism) is kept.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithReviewCutoff sets the overall-similarity cutoff below which matched
// pairs are also routed to the review report.
func WithReviewCutoff(cutoff float64) EngineOption {
	return func(e *Engine) {
		e.reviewCutoff = cutoff
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an evaluation engine.
func NewEngine(scorer *similarity.Scorer, decider *Decider, opts ...EngineOption) *Engine {
	e := &Engine{
		scorer:       scorer,
		decider:      decider,
		workers:      runtime.NumCPU(),
		reviewCutoff: 68,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// chunkResult is one worker's private output. Workers never share mutable
// state; results are concatenated in chunk order after all workers finish,
// so the merged output is independent of scheduling.
type chunkResult struct {
	matches     []model.PairScore
	reviewPairs []model.ReviewPair
	comparisons int
	skipped     int
}

// Evaluate scores every unordered pair (i, j) with i < j and returns the
// matched set. coordinates may be nil when geocoding is disabled; when
// present it must be parallel to records.
//
// The record set is split into contiguous chunks. Each worker compares its
// chunk's rows against the entire later portion of the dataset, so every
// unordered pair is owned by exactly one worker: the one whose chunk holds
// the smaller index. A single failed comparison is skipped and counted,
// never propagated.
func (e *Engine) Evaluate(ctx context.Context, records []model.StandardizedRecord, coordinates []model.Coordinates) (*Result, error) {
	n := len(records)

	workers := e.workers
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	e.logger.Debug("starting pairwise evaluation",
		"records", n,
		"workers", workers,
	)

	bounds := chunkBounds(n, workers)
	results := make([]chunkResult, len(bounds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for w, b := range bounds {
		g.Go(func() error {
			res, err := e.evaluateChunk(ctx, records, coordinates, b[0], b[1])
			if err != nil {
				return err
			}
			results[w] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Concatenate in chunk index order: the output is then invariant to
	// worker scheduling.
	out := &Result{}
	for _, r := range results {
		out.Matches = append(out.Matches, r.matches...)
		out.ReviewPairs = append(out.ReviewPairs, r.reviewPairs...)
		out.Comparisons += r.comparisons
		out.Skipped += r.skipped
	}

	e.logger.Debug("pairwise evaluation complete",
		"comparisons", out.Comparisons,
		"matches", len(out.Matches),
		"review_pairs", len(out.ReviewPairs),
		"skipped", out.Skipped,
	)

	return out, nil
}

// evaluateChunk scores all pairs (i, j) with lo <= i < hi and i < j < n.
func (e *Engine) evaluateChunk(ctx context.Context, records []model.StandardizedRecord, coordinates []model.Coordinates, lo, hi int) (chunkResult, error) {
	var res chunkResult

	for i := lo; i < hi; i++ {
		// Cancellation is checked per row, not per pair: a row is cheap
		// enough that finer granularity only adds overhead.
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		for j := i + 1; j < len(records); j++ {
			p, err := e.scorer.Score(model.RecordID(i), model.RecordID(j), records[i], records[j])
			if err != nil {
				res.skipped++
				e.logger.Warn("comparison skipped",
					"i", i,
					"j", j,
					"error", err,
				)
				continue
			}
			res.comparisons++

			verdict := e.decider.Decide(p, records[i], records[j], e.evidence(coordinates, i, j))

			switch verdict {
			case model.VerdictMatch:
				res.matches = append(res.matches, p)
				if p.OverallSimilarity < e.reviewCutoff {
					res.reviewPairs = append(res.reviewPairs, e.reviewPair(p, verdict, records[i], records[j]))
				}
			case model.VerdictSuspectFalsePositive:
				res.reviewPairs = append(res.reviewPairs, e.reviewPair(p, verdict, records[i], records[j]))
			case model.VerdictNoMatch:
				// Nothing to record.
			}
		}
	}

	return res, nil
}

// evidence assembles the non-textual signals for a pair.
func (e *Engine) evidence(coordinates []model.Coordinates, i, j int) Evidence {
	if coordinates == nil {
		return Evidence{}
	}
	ci, cj := coordinates[i], coordinates[j]
	if !ci.Known || !cj.Known {
		return Evidence{}
	}
	return Evidence{
		DistanceMiles: geocode.DistanceMiles(ci, cj),
		DistanceKnown: true,
	}
}

// reviewPair builds a review entry with the auxiliary Jaro-Winkler context.
func (e *Engine) reviewPair(p model.PairScore, v model.Verdict, a, b model.StandardizedRecord) model.ReviewPair {
	return model.ReviewPair{
		PairScore:       p,
		Verdict:         v,
		NameJaroWinkler: similarity.JaroWinkler(a.Name, b.Name),
	}
}

// chunkBounds splits [0, n) into at most workers contiguous half-open
// ranges covering every index exactly once.
func chunkBounds(n, workers int) [][2]int {
	if n == 0 {
		return nil
	}

	size := n / workers
	if n%workers != 0 {
		size++
	}

	var bounds [][2]int
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		bounds = append(bounds, [2]int{lo, hi})
	}
	return bounds
}
