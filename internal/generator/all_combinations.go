package generator

import (
	"iter"

	"github.com/roach88/sepset/internal/graph"
)

// AllCombinations enumerates every r-combination of node names for each r
// in the bounds, smallest size first. Order within a size follows node
// insertion order, so runs over the same dataset enumerate identically.
type AllCombinations struct {
	bounds Bounds
}

// NewAllCombinations constructs the generator.
func NewAllCombinations(bounds Bounds) *AllCombinations {
	return &AllCombinations{bounds: bounds}
}

// Generate implements Generator.
func (a *AllCombinations) Generate(g *graph.Graph) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		names := g.NodeNames()
		start, stop := a.bounds.resolve(len(names))
		for r := start; r < stop; r++ {
			for c := range combinations(names, r) {
				if !yield(c) {
					return
				}
			}
		}
	}
}
