package similarity

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"

	"github.com/freightlens/shipdedup/internal/model"
)

// ErrInvalidText is returned when an input is not valid UTF-8. The engine
// recovers from it locally: the pair is skipped and counted, never fatal.
var ErrInvalidText = errors.New("similarity: text is not valid UTF-8")

// TokenSortRatio returns the token-sort similarity of two strings on the
// 0-100 scale: both inputs are tokenized on whitespace, sorted, rejoined,
// and compared by Levenshtein distance normalized over the longer input.
//
// Two empty strings score 0, not 100. Empty-vs-empty similarity is maximal
// under the naive formula, and treating it as agreement would cluster every
// blank record together.
func TokenSortRatio(a, b string) float64 {
	a = sortTokens(a)
	b = sortTokens(b)

	if a == "" && b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	dist := levenshtein.ComputeDistance(a, b)
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}

	return 100 * (1 - float64(dist)/float64(maxLen))
}

// JaroWinkler returns the Jaro-Winkler similarity of two strings on the
// 0-100 scale. It is used as auxiliary context on review pairs, not for
// match decisions.
func JaroWinkler(a, b string) float64 {
	if a == "" && b == "" {
		return 0
	}
	return 100 * smetrics.JaroWinkler(a, b, 0.7, 4)
}

// sortTokens rebuilds a string from its lexicographically sorted tokens.
func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// Scorer computes the weighted pair score between two standardized records.
// NameWeight > 1.0 privileges name agreement over address agreement.
// A Scorer is stateless and safe for concurrent use.
type Scorer struct {
	// NameWeight multiplies the raw name score before threshold checks and
	// in the combined average.
	NameWeight float64
}

// NewScorer creates a Scorer with the given name weight.
func NewScorer(nameWeight float64) *Scorer {
	return &Scorer{NameWeight: nameWeight}
}

// Score computes the pair score for records i < j. The stored name
// confidence is the raw (unweighted) value; WeightedName derives the value
// compared against the name threshold.
func (s *Scorer) Score(i, j model.RecordID, a, b model.StandardizedRecord) (model.PairScore, error) {
	for _, text := range []string{a.Name, a.Address, b.Name, b.Address} {
		if !utf8.ValidString(text) {
			return model.PairScore{}, fmt.Errorf("%w (records %d, %d)", ErrInvalidText, i, j)
		}
	}

	nameRaw := TokenSortRatio(a.Name, b.Name)
	address := TokenSortRatio(a.Address, b.Address)
	overall := (nameRaw*s.NameWeight + address) / (1 + s.NameWeight)

	return model.PairScore{
		I:                 i,
		J:                 j,
		NameConfidence:    nameRaw,
		AddressConfidence: address,
		OverallSimilarity: overall,
	}, nil
}

// WeightedName returns the weighted name score for a pair, the value the
// decider compares against the name threshold.
func (s *Scorer) WeightedName(p model.PairScore) float64 {
	return p.NameConfidence * s.NameWeight
}
