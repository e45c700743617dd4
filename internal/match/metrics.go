package match

import (
	"math"

	"github.com/freightlens/shipdedup/internal/model"
)

// Aggregate computes the run metrics over an evaluation result and the
// final cluster assignment. It is pure and read-only; a zero match count
// yields all-zero confidence stats rather than a division by zero.
func Aggregate(res *Result, assignment model.ClusterAssignment) model.RunMetrics {
	m := model.RunMetrics{
		Records:            len(assignment),
		Comparisons:        res.Comparisons,
		SkippedComparisons: res.Skipped,
		Matches:            len(res.Matches),
		Clusters:           assignment.ClusterCount(),
		Singletons:         assignment.Singletons(),
	}

	for _, rp := range res.ReviewPairs {
		if rp.Verdict == model.VerdictSuspectFalsePositive {
			m.SuspectPairs++
		}
	}

	if len(res.Matches) == 0 {
		return m
	}

	m.NameConfidence = stats(res.Matches, func(p model.PairScore) float64 { return p.NameConfidence })
	m.AddressConfidence = stats(res.Matches, func(p model.PairScore) float64 { return p.AddressConfidence })
	m.OverallSimilarity = stats(res.Matches, func(p model.PairScore) float64 { return p.OverallSimilarity })

	return m
}

// stats folds one score dimension over the matched pairs.
func stats(matches []model.PairScore, dim func(model.PairScore) float64) model.ConfidenceStats {
	s := model.ConfidenceStats{
		Min: math.Inf(1),
		Max: math.Inf(-1),
	}

	var total float64
	for _, p := range matches {
		v := dim(p)
		total += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Avg = total / float64(len(matches))

	return s
}
