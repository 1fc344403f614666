package generator

import (
	"fmt"
	"iter"

	"github.com/roach88/sepset/internal/graph"
)

// RandomSample wraps another generator and passes through every Nth
// candidate only. Used to cheaply pre-screen a huge candidate space before
// a later step runs the full generator.
type RandomSample struct {
	inner    Generator
	everyNth int
}

// NewRandomSample constructs the sampler. everyNth below 1 is a
// configuration error.
func NewRandomSample(inner Generator, everyNth int) (*RandomSample, error) {
	if inner == nil {
		return nil, fmt.Errorf("random sample: inner generator is required")
	}
	if everyNth < 1 {
		return nil, fmt.Errorf("random sample: every_nth must be at least 1, got %d", everyNth)
	}
	return &RandomSample{inner: inner, everyNth: everyNth}, nil
}

// Generate implements Generator. The first candidate always passes, then
// every everyNth-th after it.
func (r *RandomSample) Generate(g *graph.Graph) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		i := 0
		for c := range r.inner.Generate(g) {
			if i%r.everyNth == 0 {
				if !yield(c) {
					return
				}
			}
			i++
		}
	}
}
