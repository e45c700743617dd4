package refine

import (
	"context"
	"sync/atomic"
)

// Refiner cleans one raw text field. Implementations may call external
// services; the context bounds the call.
type Refiner interface {
	Refine(ctx context.Context, text string) (string, error)
}

// Identity returns the input unchanged. It is the default refiner, keeping
// the pipeline shape uniform whether or not LLM refinement is enabled.
type Identity struct{}

// Refine returns text as-is.
func (Identity) Refine(_ context.Context, text string) (string, error) {
	return text, nil
}

// Fallback wraps a Refiner so that errors degrade to the unrefined input
// instead of failing the run. It counts the fallbacks for the run metrics.
type Fallback struct {
	inner     Refiner
	fallbacks atomic.Int64
}

// NewFallback wraps inner with error fallback.
func NewFallback(inner Refiner) *Fallback {
	return &Fallback{inner: inner}
}

// Refine returns the inner refiner's output, or the input text when the
// inner refiner fails. It is safe for concurrent use.
func (f *Fallback) Refine(ctx context.Context, text string) (string, error) {
	refined, err := f.inner.Refine(ctx, text)
	if err != nil {
		f.fallbacks.Add(1)
		return text, nil
	}
	return refined, nil
}

// Fallbacks returns how many calls fell back to their input.
func (f *Fallback) Fallbacks() int {
	return int(f.fallbacks.Load())
}
