package match

import (
	"github.com/freightlens/shipdedup/internal/model"
	"github.com/freightlens/shipdedup/internal/similarity"
)

// Evidence carries the non-textual signals available for a pair. The zero
// value means "no extra evidence", which never vetoes a match.
type Evidence struct {
	// DistanceMiles is the geodesic distance between the two records'
	// geocoded locations.
	DistanceMiles float64

	// DistanceKnown is true only when both records were geocoded
	// successfully. An unknown distance contributes no signal.
	DistanceKnown bool
}

// Decider applies thresholds to pair scores and classifies each pair.
// A Decider is immutable after construction and safe for concurrent use.
type Decider struct {
	scorer *similarity.Scorer

	// NameThreshold is compared against the weighted name score.
	NameThreshold float64

	// AddressThreshold is compared against the raw address score.
	AddressThreshold float64

	// FalsePositiveMargin defines the suspect band: a pair with a passing
	// name score but an address score below AddressThreshold-Margin is
	// flagged for review instead of being silently rejected.
	FalsePositiveMargin float64

	// DistanceThresholdMiles vetoes matches whose records are geocoded
	// further apart than this. Zero disables the distance check.
	DistanceThresholdMiles float64
}

// NewDecider creates a Decider bound to the scorer whose weight produced
// the pair scores it will judge.
func NewDecider(scorer *similarity.Scorer, nameThreshold, addressThreshold, falsePositiveMargin float64) *Decider {
	return &Decider{
		scorer:              scorer,
		NameThreshold:       nameThreshold,
		AddressThreshold:    addressThreshold,
		FalsePositiveMargin: falsePositiveMargin,
	}
}

// Decide classifies one scored pair.
//
// A pair matches when both the weighted name score and the address score
// clear their thresholds. A pair whose names agree strongly while the
// address score sits markedly below its threshold is a suspect false
// positive, flagged for manual review. Everything else is a non-match.
//
// Explicit policy: a pair in which either standardized field of either
// record is empty is never a match, regardless of numeric scores. This
// guards against configurations with a zero address threshold, under which
// blank records would otherwise all cluster together.
func (d *Decider) Decide(p model.PairScore, a, b model.StandardizedRecord, ev Evidence) model.Verdict {
	weightedName := d.scorer.WeightedName(p)

	if weightedName >= d.NameThreshold && p.AddressConfidence >= d.AddressThreshold {
		if eligible(a, b) && d.distanceOK(ev) {
			return model.VerdictMatch
		}
		return model.VerdictNoMatch
	}

	if weightedName >= d.NameThreshold && p.AddressConfidence < d.AddressThreshold-d.FalsePositiveMargin {
		return model.VerdictSuspectFalsePositive
	}

	return model.VerdictNoMatch
}

// eligible reports whether a pair may be classified as a match at all.
func eligible(a, b model.StandardizedRecord) bool {
	return a.Name != "" && a.Address != "" && b.Name != "" && b.Address != ""
}

// distanceOK applies the optional geographic veto.
func (d *Decider) distanceOK(ev Evidence) bool {
	if d.DistanceThresholdMiles <= 0 || !ev.DistanceKnown {
		return true
	}
	return ev.DistanceMiles <= d.DistanceThresholdMiles
}
