package generator

import (
	"fmt"
	"iter"
	"math/rand/v2"

	"github.com/roach88/sepset/internal/graph"
)

// PairsWithNeighbours restricts enumeration to locally relevant tuples: it
// seeds from existing adjacency pairs (node, neighbour) and extends each
// pair with i-2 further neighbours of node to form an i-tuple. Compared to
// AllCombinations this skips every tuple whose focal pair is already
// disconnected.
//
// Shuffle randomizes the extension order per seed pair. That only changes
// search order, never the candidate set, so it is off in deterministic runs
// and on when a sampled pre-screen benefits from variety.
type PairsWithNeighbours struct {
	bounds  Bounds
	shuffle bool
	chunked bool
	rng     *rand.Rand // nil means global source
}

// PairsOption configures a PairsWithNeighbours generator.
type PairsOption func(*PairsWithNeighbours)

// WithShuffle toggles per-pair shuffling of candidate extensions.
func WithShuffle(on bool) PairsOption {
	return func(p *PairsWithNeighbours) { p.shuffle = on }
}

// WithChunked toggles batched emission: all tuples sharing one seed pair
// are grouped into a single chunk.
func WithChunked(on bool) PairsOption {
	return func(p *PairsWithNeighbours) { p.chunked = on }
}

// WithRand fixes the random source used for shuffling. Tests use this to
// make shuffled output reproducible.
func WithRand(r *rand.Rand) PairsOption {
	return func(p *PairsWithNeighbours) { p.rng = r }
}

// NewPairsWithNeighbours constructs the generator. Min below 2 is a
// configuration error: there is no seed pair to extend.
func NewPairsWithNeighbours(bounds Bounds, opts ...PairsOption) (*PairsWithNeighbours, error) {
	if bounds.Min < 2 {
		return nil, fmt.Errorf("pairs with neighbours: min must be at least 2, got %d", bounds.Min)
	}
	p := &PairsWithNeighbours{bounds: bounds, shuffle: true, chunked: true}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Generate implements Generator, yielding candidates one at a time.
func (p *PairsWithNeighbours) Generate(g *graph.Graph) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for chunk := range p.GenerateChunks(g) {
			for _, c := range chunk {
				if !yield(c) {
					return
				}
			}
		}
	}
}

// GenerateChunks implements ChunkedGenerator. When the generator is not
// configured as chunked, every chunk holds exactly one candidate.
func (p *PairsWithNeighbours) GenerateChunks(g *graph.Graph) iter.Seq[[]Candidate] {
	return func(yield func([]Candidate) bool) {
		names := g.NodeNames()
		start, stop := p.bounds.resolve(len(names))
		for i := max(start, 2); i < stop; i++ {
			// One pass per tuple size. Seed pairs are deduplicated within
			// the pass via a working set.
			checked := make(map[graph.Pair]bool)
			for _, node := range names {
				for _, neighbour := range g.Neighbours(node) {
					seed := graph.Pair{U: node, V: neighbour}
					if checked[seed] {
						continue
					}
					checked[seed] = true

					if i == 2 {
						if !yield([]Candidate{{node, neighbour}}) {
							return
						}
						continue
					}

					others := remove(g.Neighbours(node), neighbour)
					if len(others)+2 < i {
						// Not enough remaining neighbours to form an i-tuple.
						continue
					}
					extensions := collect(combinations(others, i-2))
					if p.shuffle {
						p.shuffleExtensions(extensions)
					}
					if p.chunked {
						chunk := make([]Candidate, 0, len(extensions))
						for _, ext := range extensions {
							chunk = append(chunk, tuple(node, neighbour, ext))
						}
						if len(chunk) > 0 && !yield(chunk) {
							return
						}
					} else {
						for _, ext := range extensions {
							if !yield([]Candidate{tuple(node, neighbour, ext)}) {
								return
							}
						}
					}
				}
			}
		}
	}
}

func (p *PairsWithNeighbours) shuffleExtensions(ext []Candidate) {
	swap := func(a, b int) { ext[a], ext[b] = ext[b], ext[a] }
	if p.rng != nil {
		p.rng.Shuffle(len(ext), swap)
		return
	}
	rand.Shuffle(len(ext), swap)
}

func tuple(node, neighbour string, ext Candidate) Candidate {
	c := make(Candidate, 0, len(ext)+2)
	c = append(c, node, neighbour)
	return append(c, ext...)
}

func remove(names []string, drop string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != drop {
			out = append(out, n)
		}
	}
	return out
}

func collect(seq iter.Seq[Candidate]) []Candidate {
	var out []Candidate
	for c := range seq {
		out = append(out, c)
	}
	return out
}
