package model

// Verdict classifies the outcome of comparing one record pair.
type Verdict int

// Verdict values, in increasing order of interest to a reviewer.
const (
	// VerdictNoMatch means the pair is not the same entity.
	VerdictNoMatch Verdict = iota

	// VerdictMatch means both the name and address scores cleared their
	// thresholds and the records are treated as the same entity.
	VerdictMatch

	// VerdictSuspectFalsePositive means the names agree strongly but the
	// addresses disagree markedly. Such pairs are flagged for manual review
	// rather than silently accepted or rejected.
	VerdictSuspectFalsePositive
)

// String returns a human-readable verdict label.
func (v Verdict) String() string {
	switch v {
	case VerdictMatch:
		return "match"
	case VerdictSuspectFalsePositive:
		return "suspect_false_positive"
	case VerdictNoMatch:
		return "no_match"
	default:
		return "unknown"
	}
}

// PairScore holds the similarity scores for one unordered record pair.
// The invariant I < J holds for every PairScore the engine emits: each
// unordered pair is evaluated exactly once, by the worker that owns the
// smaller index. PairScores are never mutated after creation.
type PairScore struct {
	// I is the smaller record ID of the pair.
	I RecordID `json:"i"`

	// J is the larger record ID of the pair.
	J RecordID `json:"j"`

	// NameConfidence is the raw (unweighted) name similarity on the 0-100
	// scale. The weighted value used for threshold checks is derived as
	// NameConfidence * NameWeight by the decider.
	NameConfidence float64 `json:"name_confidence"`

	// AddressConfidence is the address similarity on the 0-100 scale.
	AddressConfidence float64 `json:"address_confidence"`

	// OverallSimilarity is the weighted average of the name and address
	// scores: (name*weight + address) / (1 + weight), still on 0-100.
	OverallSimilarity float64 `json:"overall_similarity"`
}

// ReviewPair is a pair routed to the low-confidence review report, either
// because it was flagged as a suspect false positive or because it matched
// with an overall similarity below the review cutoff.
type ReviewPair struct {
	PairScore

	// Verdict is the decider's classification of the pair.
	Verdict Verdict `json:"verdict"`

	// NameJaroWinkler is an auxiliary Jaro-Winkler similarity (0-100)
	// between the standardized names, computed only for review pairs as
	// extra context for the human reviewer.
	NameJaroWinkler float64 `json:"name_jaro_winkler"`
}
