package generator

import (
	"fmt"
	"iter"

	"github.com/roach88/sepset/internal/graph"
)

// AsManyAsFields is the sentinel for a Max bound meaning "up to the total
// node count", resolved against the graph at generation time.
const AsManyAsFields = -1

// Candidate is one node-name tuple to test.
type Candidate []string

// Generator lazily enumerates candidate tuples for the current graph state.
// The sequence is always finite; an unsatisfiable configuration (e.g. Min
// larger than the node count) yields an empty sequence, not an error.
type Generator interface {
	Generate(g *graph.Graph) iter.Seq[Candidate]
}

// ChunkedGenerator is implemented by generators that can emit related
// candidates as one batch. The engine dispatches one batch per worker task.
type ChunkedGenerator interface {
	Generator
	GenerateChunks(g *graph.Graph) iter.Seq[[]Candidate]
}

// Bounds are the arity bounds of a candidate tuple: for each r in
// [Min, Max] the generator enumerates r-tuples. Max may be AsManyAsFields.
type Bounds struct {
	Min int
	Max int
}

// NewBounds validates and constructs arity bounds. Invalid bounds are a
// configuration error and fail at pipeline construction.
func NewBounds(min, max int) (Bounds, error) {
	if min < 1 {
		return Bounds{}, fmt.Errorf("bounds: min must be at least 1, got %d", min)
	}
	if max != AsManyAsFields && max < min {
		return Bounds{}, fmt.Errorf("bounds: max %d is smaller than min %d", max, min)
	}
	return Bounds{Min: min, Max: max}, nil
}

// MustBounds is NewBounds for statically known-good values, e.g. algorithm
// presets.
func MustBounds(min, max int) Bounds {
	b, err := NewBounds(min, max)
	if err != nil {
		panic(err)
	}
	return b
}

// Fixed returns bounds for tuples of exactly n nodes.
func Fixed(n int) Bounds { return Bounds{Min: n, Max: n} }

// resolve clamps the bounds against the node count and returns the
// half-open size range [start, stop). An empty range means no candidates
// can be formed.
func (b Bounds) resolve(nodeCount int) (start, stop int) {
	start = b.Min
	if start > nodeCount {
		return 0, 0
	}
	if b.Max == AsManyAsFields {
		stop = nodeCount + 1
	} else {
		stop = b.Max + 1
	}
	if stop > nodeCount+1 {
		stop = nodeCount + 1
	}
	if stop < start {
		return 0, 0
	}
	return start, stop
}

// combinations yields every r-combination of names, in lexicographic index
// order, reusing no memory between yields (each candidate is a fresh slice).
func combinations(names []string, r int) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		n := len(names)
		if r < 0 || r > n {
			return
		}
		idx := make([]int, r)
		for i := range idx {
			idx[i] = i
		}
		for {
			c := make(Candidate, r)
			for i, j := range idx {
				c[i] = names[j]
			}
			if !yield(c) {
				return
			}
			// Advance the index vector.
			i := r - 1
			for i >= 0 && idx[i] == i+n-r {
				i--
			}
			if i < 0 {
				return
			}
			idx[i]++
			for j := i + 1; j < r; j++ {
				idx[j] = idx[j-1] + 1
			}
		}
	}
}
