// Package refine optionally pre-cleans raw shipper text with an LLM before
// deterministic standardization. Refinement is best-effort: a failed call
// falls back to the unrefined input so that a flaky API can degrade result
// quality but never fail a run.
package refine
