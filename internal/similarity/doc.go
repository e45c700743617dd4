// Package similarity computes pairwise text similarity scores between
// standardized records.
//
// The primary metric is token-sort similarity: both inputs are tokenized on
// whitespace, the tokens sorted and rejoined, and the result compared by
// normalized Levenshtein distance on a 0-100 scale. Sorting neutralizes the
// word-order differences that survive standardization when tie-breaking
// differs between the two inputs.
//
// A Scorer combines a name score and an address score into a weighted
// overall similarity. The name weight exceeds 1.0 because addresses are the
// noisier field after truncation and geocoding.
package similarity
