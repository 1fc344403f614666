package generator

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/roach88/sepset/internal/graph"
)

func graphWithNodes(t *testing.T, names ...string) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, n := range names {
		g.AddNode(n, []float64{0})
	}
	return g
}

func fullyConnect(t *testing.T, g *graph.Graph) {
	t.Helper()
	names := g.NodeNames()
	for i, u := range names {
		for _, v := range names[i+1:] {
			if err := g.AddEdge(u, v, nil); err != nil {
				t.Fatalf("AddEdge(%s, %s) failed: %v", u, v, err)
			}
		}
	}
}

func collectAll(g *graph.Graph, gen Generator) []Candidate {
	var out []Candidate
	for c := range gen.Generate(g) {
		out = append(out, c)
	}
	return out
}

func key(c Candidate) string { return strings.Join(c, ",") }

func binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	r := 1
	for i := 0; i < k; i++ {
		r = r * (n - i) / (i + 1)
	}
	return r
}

func TestAllCombinations_Completeness(t *testing.T) {
	g := graphWithNodes(t, "a", "b", "c", "d", "e")
	gen := NewAllCombinations(Fixed(3))

	got := collectAll(g, gen)
	want := binomial(5, 3)
	if len(got) != want {
		t.Fatalf("yielded %d tuples, want C(5,3)=%d", len(got), want)
	}

	seen := make(map[string]bool)
	for _, c := range got {
		if len(c) != 3 {
			t.Errorf("tuple %v has size %d, want 3", c, len(c))
		}
		k := key(c)
		if seen[k] {
			t.Errorf("duplicate tuple %v", c)
		}
		seen[k] = true
	}
}

func TestAllCombinations_SizeRange(t *testing.T) {
	g := graphWithNodes(t, "a", "b", "c")
	gen := NewAllCombinations(MustBounds(2, AsManyAsFields))

	got := collectAll(g, gen)
	// C(3,2) + C(3,3) = 3 + 1
	if len(got) != 4 {
		t.Fatalf("yielded %d tuples, want 4: %v", len(got), got)
	}
	if len(got[0]) != 2 || len(got[len(got)-1]) != 3 {
		t.Errorf("sizes should ascend: %v", got)
	}
}

func TestAllCombinations_EmptyWhenMinExceedsNodes(t *testing.T) {
	g := graphWithNodes(t, "a", "b")
	gen := NewAllCombinations(Fixed(3))

	if got := collectAll(g, gen); got != nil {
		t.Errorf("expected empty sequence, got %v", got)
	}
}

func TestNewBounds_Validation(t *testing.T) {
	if _, err := NewBounds(0, 2); err == nil {
		t.Error("min 0 should be rejected")
	}
	if _, err := NewBounds(3, 2); err == nil {
		t.Error("max < min should be rejected")
	}
	if _, err := NewBounds(2, AsManyAsFields); err != nil {
		t.Errorf("AsManyAsFields max should be accepted: %v", err)
	}
}

func TestPairsWithNeighbours_MinBelowTwoFailsFast(t *testing.T) {
	if _, err := NewPairsWithNeighbours(Bounds{Min: 1, Max: 3}); err == nil {
		t.Error("min 1 should be a configuration error")
	}
}

func TestPairsWithNeighbours_PairsOnly(t *testing.T) {
	g := graphWithNodes(t, "a", "b", "c")
	fullyConnect(t, g)

	gen, err := NewPairsWithNeighbours(Fixed(2), WithShuffle(false), WithChunked(false))
	if err != nil {
		t.Fatalf("NewPairsWithNeighbours() failed: %v", err)
	}

	got := collectAll(g, gen)
	// Both directions of every adjacency entry seed once: 3 edges * 2.
	if len(got) != 6 {
		t.Fatalf("yielded %d pairs, want 6: %v", len(got), got)
	}
	seen := make(map[string]bool)
	for _, c := range got {
		if seen[key(c)] {
			t.Errorf("duplicate seed pair %v", c)
		}
		seen[key(c)] = true
	}
}

func TestPairsWithNeighbours_ExtendsWithNeighbours(t *testing.T) {
	// Star around a: only a has enough neighbours to extend a pair to a
	// triple; b, c, d have a single neighbour each.
	g := graphWithNodes(t, "a", "b", "c", "d")
	for _, v := range []string{"b", "c", "d"} {
		if err := g.AddEdge("a", v, nil); err != nil {
			t.Fatalf("AddEdge() failed: %v", err)
		}
	}

	gen, err := NewPairsWithNeighbours(Fixed(3), WithShuffle(false), WithChunked(false))
	if err != nil {
		t.Fatalf("NewPairsWithNeighbours() failed: %v", err)
	}

	got := collectAll(g, gen)
	// Seeds (a,b), (a,c), (a,d) each extend with 2 remaining neighbours.
	if len(got) != 6 {
		t.Fatalf("yielded %d tuples, want 6: %v", len(got), got)
	}
	for _, c := range got {
		if len(c) != 3 {
			t.Errorf("tuple %v has size %d, want 3", c, len(c))
		}
		if c[0] != "a" {
			t.Errorf("only node a can seed triples, got %v", c)
		}
	}
}

func TestPairsWithNeighbours_Chunked(t *testing.T) {
	g := graphWithNodes(t, "a", "b", "c", "d")
	fullyConnect(t, g)

	gen, err := NewPairsWithNeighbours(Fixed(3), WithShuffle(false), WithChunked(true))
	if err != nil {
		t.Fatalf("NewPairsWithNeighbours() failed: %v", err)
	}

	var chunks [][]Candidate
	for chunk := range gen.GenerateChunks(g) {
		chunks = append(chunks, chunk)
	}
	// 4 nodes fully connected: 12 directed seed pairs, each with C(2,1)=2
	// extensions grouped into one chunk.
	if len(chunks) != 12 {
		t.Fatalf("got %d chunks, want 12", len(chunks))
	}
	for _, chunk := range chunks {
		if len(chunk) != 2 {
			t.Errorf("chunk size %d, want 2: %v", len(chunk), chunk)
		}
		for _, c := range chunk {
			if c[0] != chunk[0][0] || c[1] != chunk[0][1] {
				t.Errorf("chunk mixes seed pairs: %v", chunk)
			}
		}
	}
}

func TestPairsWithNeighbours_ShuffleKeepsCandidateSet(t *testing.T) {
	g := graphWithNodes(t, "a", "b", "c", "d", "e")
	fullyConnect(t, g)

	plain, err := NewPairsWithNeighbours(Fixed(4), WithShuffle(false), WithChunked(false))
	if err != nil {
		t.Fatalf("NewPairsWithNeighbours() failed: %v", err)
	}
	shuffled, err := NewPairsWithNeighbours(Fixed(4), WithShuffle(true), WithChunked(false),
		WithRand(rand.New(rand.NewPCG(7, 13))))
	if err != nil {
		t.Fatalf("NewPairsWithNeighbours() failed: %v", err)
	}

	a := collectAll(g, plain)
	b := collectAll(g, shuffled)
	if len(a) != len(b) {
		t.Fatalf("shuffle changed candidate count: %d vs %d", len(a), len(b))
	}
	setA := make(map[string]int)
	setB := make(map[string]int)
	for i := range a {
		setA[key(a[i])]++
		setB[key(b[i])]++
	}
	for k, n := range setA {
		if setB[k] != n {
			t.Fatalf("shuffle changed candidate set at %q", k)
		}
	}
}

func TestPairsWithNeighbours_SkipsUnderfilledSeeds(t *testing.T) {
	// Chain a-b-c: no node has 2 spare neighbours, so size-4 tuples are
	// impossible and the sequence is empty.
	g := graphWithNodes(t, "a", "b", "c")
	if err := g.AddEdge("a", "b", nil); err != nil {
		t.Fatalf("AddEdge() failed: %v", err)
	}
	if err := g.AddEdge("b", "c", nil); err != nil {
		t.Fatalf("AddEdge() failed: %v", err)
	}

	gen, err := NewPairsWithNeighbours(Fixed(4), WithShuffle(false), WithChunked(false))
	if err != nil {
		t.Fatalf("NewPairsWithNeighbours() failed: %v", err)
	}
	if got := collectAll(g, gen); got != nil {
		t.Errorf("expected empty sequence, got %v", got)
	}
}

func TestRandomSample_EveryNth(t *testing.T) {
	g := graphWithNodes(t, "a", "b", "c", "d", "e")
	inner := NewAllCombinations(Fixed(2)) // C(5,2) = 10 candidates

	sampled, err := NewRandomSample(inner, 3)
	if err != nil {
		t.Fatalf("NewRandomSample() failed: %v", err)
	}

	got := collectAll(g, sampled)
	// Indices 0, 3, 6, 9 pass.
	if len(got) != 4 {
		t.Fatalf("yielded %d candidates, want 4: %v", len(got), got)
	}
}

func TestRandomSample_Validation(t *testing.T) {
	if _, err := NewRandomSample(nil, 2); err == nil {
		t.Error("nil inner generator should be rejected")
	}
	if _, err := NewRandomSample(NewAllCombinations(Fixed(2)), 0); err == nil {
		t.Error("every_nth 0 should be rejected")
	}
}
