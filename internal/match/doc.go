// Package match contains the resolution core: the threshold-based match
// decider, the parallel pairwise evaluation engine, the union-find cluster
// builder, and the run metrics aggregator.
//
// The engine enumerates every unordered record pair exactly once. The record
// set is split into contiguous chunks; each worker owns the pairs whose
// smaller index falls inside its chunk, so worker outputs are disjoint and
// merge by concatenation. Chunking is purely a performance concern: the
// emitted match set is identical for any worker count.
//
// Clustering runs single-threaded after evaluation completes, over a true
// union-find structure. Transitive closure therefore holds for any pair
// arrival order, which the original sequential copy-the-ID propagation did
// not guarantee.
package match
