package independence

import (
	"slices"

	"github.com/roach88/sepset/internal/generator"
	"github.com/roach88/sepset/internal/graph"
	"github.com/roach88/sepset/internal/pipeline"
)

// ColliderTest orients unshielded triples x – z – y (x and y disconnected)
// as colliders x → z ← y whenever z was not part of any separating set that
// disconnected x and y. The separating sets are read back from the edge
// history written by the pruning steps.
type ColliderTest struct {
	pipeline.Base
}

// NewColliderTest constructs the step.
func NewColliderTest() *ColliderTest {
	return &ColliderTest{Base: pipeline.Base{
		DisplayName: "Collider Test",
		ArityBounds: generator.Fixed(2),
		RunParallel: true,
		Chunk:       1000,
	}}
}

// Test implements pipeline.TestStep.
func (s *ColliderTest) Test(c generator.Candidate, g *graph.Graph) []*graph.TestResult {
	x, y := c[0], c[1]
	if g.EdgeExists(x, y) {
		return nil
	}
	separators := separatingNodes(g, x, y)

	var results []*graph.TestResult
	for _, z := range g.Neighbours(x) {
		if !g.UndirectedEdgeExists(z, x) || !g.UndirectedEdgeExists(z, y) {
			continue
		}
		if slices.Contains(separators, z) {
			continue
		}
		// Remove z's outgoing entries: both legs point into z.
		results = append(results,
			&graph.TestResult{X: z, Y: x, Action: graph.ActionRemoveEdgeDirected},
			&graph.TestResult{X: z, Y: y, Action: graph.ActionRemoveEdgeDirected},
		)
	}
	return results
}

// NonColliderTest orients the remaining leg of a partially oriented
// unshielded triple away from the collider: given x → z, z – y undirected
// and x, y disconnected, the only admissible orientation is z → y
// (otherwise z would be a collider the collider test did not find).
type NonColliderTest struct {
	pipeline.Base
}

// NewNonColliderTest constructs the step.
func NewNonColliderTest() *NonColliderTest {
	return &NonColliderTest{Base: pipeline.Base{
		DisplayName: "Non-Collider Test",
		ArityBounds: generator.Fixed(3),
		RunParallel: true,
		Chunk:       1000,
	}}
}

// Test implements pipeline.TestStep.
func (s *NonColliderTest) Test(c generator.Candidate, g *graph.Graph) []*graph.TestResult {
	var results []*graph.TestResult
	forEachOrderedTriple(c, func(x, z, y string) {
		if !g.OnlyDirectedEdgeExists(x, z) {
			return
		}
		if !g.UndirectedEdgeExists(z, y) {
			return
		}
		if g.EdgeExists(x, y) {
			return
		}
		results = append(results, &graph.TestResult{X: y, Y: z, Action: graph.ActionRemoveEdgeDirected})
	})
	return results
}

// FurtherOrientTripleTest applies the acyclicity rule: x → z → y with x – y
// still undirected forces x → y, since y → x would close a directed cycle.
type FurtherOrientTripleTest struct {
	pipeline.Base
}

// NewFurtherOrientTripleTest constructs the step.
func NewFurtherOrientTripleTest() *FurtherOrientTripleTest {
	return &FurtherOrientTripleTest{Base: pipeline.Base{
		DisplayName: "Further Orient Triple Test",
		ArityBounds: generator.Fixed(3),
		RunParallel: true,
		Chunk:       1000,
	}}
}

// Test implements pipeline.TestStep.
func (s *FurtherOrientTripleTest) Test(c generator.Candidate, g *graph.Graph) []*graph.TestResult {
	var results []*graph.TestResult
	forEachOrderedTriple(c, func(x, z, y string) {
		if !g.OnlyDirectedEdgeExists(x, z) || !g.OnlyDirectedEdgeExists(z, y) {
			return
		}
		if !g.UndirectedEdgeExists(x, y) {
			return
		}
		results = append(results, &graph.TestResult{X: y, Y: x, Action: graph.ActionRemoveEdgeDirected})
	})
	return results
}

// OrientQuadrupleTest orients x – z as x → z when two disconnected
// neighbours a and b of x both point into z: whichever direction a – x and
// b – x resolve to, z → x would create a collider at x that the separating
// sets rule out.
type OrientQuadrupleTest struct {
	pipeline.Base
}

// NewOrientQuadrupleTest constructs the step.
func NewOrientQuadrupleTest() *OrientQuadrupleTest {
	return &OrientQuadrupleTest{Base: pipeline.Base{
		DisplayName: "Orient Quadruple Test",
		ArityBounds: generator.Fixed(4),
		RunParallel: true,
		Chunk:       1000,
	}}
}

// Test implements pipeline.TestStep.
func (s *OrientQuadrupleTest) Test(c generator.Candidate, g *graph.Graph) []*graph.TestResult {
	var results []*graph.TestResult
	forEachOrderedQuadruple(c, func(x, z, a, b string) {
		if a > b {
			// a and b play symmetric roles; visit each set once.
			return
		}
		if !g.UndirectedEdgeExists(x, z) ||
			!g.UndirectedEdgeExists(x, a) ||
			!g.UndirectedEdgeExists(x, b) {
			return
		}
		if !g.OnlyDirectedEdgeExists(a, z) || !g.OnlyDirectedEdgeExists(b, z) {
			return
		}
		if g.EdgeExists(a, b) {
			return
		}
		results = append(results, &graph.TestResult{X: z, Y: x, Action: graph.ActionRemoveEdgeDirected})
	})
	return results
}

// FurtherOrientQuadrupleTest applies the chain rule over quadruples: with
// a – b undirected, a adjacent to both c and d, c → d → b oriented and c, b
// disconnected, b → a would force a cycle or an unfound collider, so the
// edge orients a → b.
type FurtherOrientQuadrupleTest struct {
	pipeline.Base
}

// NewFurtherOrientQuadrupleTest constructs the step.
func NewFurtherOrientQuadrupleTest() *FurtherOrientQuadrupleTest {
	return &FurtherOrientQuadrupleTest{Base: pipeline.Base{
		DisplayName: "Further Orient Quadruple Test",
		ArityBounds: generator.Fixed(4),
		RunParallel: true,
		Chunk:       1000,
	}}
}

// Test implements pipeline.TestStep.
func (s *FurtherOrientQuadrupleTest) Test(c generator.Candidate, g *graph.Graph) []*graph.TestResult {
	var results []*graph.TestResult
	forEachOrderedQuadruple(c, func(a, b, cc, d string) {
		if !g.UndirectedEdgeExists(a, b) {
			return
		}
		if !g.EdgeExists(a, cc) || !g.EdgeExists(a, d) {
			return
		}
		if !g.OnlyDirectedEdgeExists(cc, d) || !g.OnlyDirectedEdgeExists(d, b) {
			return
		}
		if g.EdgeExists(cc, b) {
			return
		}
		results = append(results, &graph.TestResult{X: b, Y: a, Action: graph.ActionRemoveEdgeDirected})
	})
	return results
}

// separatingNodes collects every node recorded in a separating set that
// disconnected x and y, from both directions of the pair's history.
func separatingNodes(g *graph.Graph, x, y string) []string {
	var nodes []string
	for _, pair := range [][2]string{{x, y}, {y, x}} {
		for _, r := range g.EdgeHistoryByAction(pair[0], pair[1], graph.ActionRemoveEdgeUndirected) {
			if r.Data == nil {
				continue
			}
			switch sep := r.Data[PayloadKeySeparatedBy].(type) {
			case []string:
				nodes = append(nodes, sep...)
			case []any:
				for _, s := range sep {
					if name, ok := s.(string); ok {
						nodes = append(nodes, name)
					}
				}
			}
		}
	}
	return nodes
}

// forEachOrderedTriple visits every ordered (x, z, y) role assignment of an
// unordered triple, z being the middle role.
func forEachOrderedTriple(c generator.Candidate, visit func(x, z, y string)) {
	for zi := 0; zi < 3; zi++ {
		rest := make([]string, 0, 2)
		for i, name := range c {
			if i != zi {
				rest = append(rest, name)
			}
		}
		visit(rest[0], c[zi], rest[1])
		visit(rest[1], c[zi], rest[0])
	}
}

// forEachOrderedQuadruple visits every ordered role assignment (p, q, r, s)
// of an unordered quadruple.
func forEachOrderedQuadruple(c generator.Candidate, visit func(p, q, r, s string)) {
	for pi := 0; pi < 4; pi++ {
		for qi := 0; qi < 4; qi++ {
			if qi == pi {
				continue
			}
			rest := make([]string, 0, 2)
			for i, name := range c {
				if i != pi && i != qi {
					rest = append(rest, name)
				}
			}
			visit(c[pi], c[qi], rest[0], rest[1])
			visit(c[pi], c[qi], rest[1], rest[0])
		}
	}
}
