// Package pipeline provides a framework for executing resolution steps in
// sequence.
//
// The pipeline pattern is used to process a dataset through multiple stages:
// record loading, optional LLM text refinement, standardization, optional
// geocoding, pairwise evaluation, clustering, and metrics aggregation. Each
// stage is implemented as a Step that receives the accumulating run report
// and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running runs
// 4. The performed-step list documents each run for the stored history
//
// The pipeline supports both single runs and batch processing of multiple
// input files with concurrency control using errgroup.
package pipeline
