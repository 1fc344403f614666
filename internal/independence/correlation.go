package independence

import (
	"maps"
	"math"

	"github.com/roach88/sepset/internal/generator"
	"github.com/roach88/sepset/internal/graph"
	"github.com/roach88/sepset/internal/pipeline"
)

// PayloadKeyCorrelation is the edge-payload key the correlation steps
// publish and the pruning steps require.
const PayloadKeyCorrelation = "correlation"

// PayloadKeySeparatedBy records the separating set alongside an
// edge-removal result. Orientation rules read it back from edge history.
const PayloadKeySeparatedBy = "separatedBy"

// CalculatePearsonCorrelations annotates every edge with the Pearson
// correlation of its endpoints' observations. Runs sequentially: the work
// per pair is trivial next to dispatch overhead.
type CalculatePearsonCorrelations struct {
	pipeline.Base
}

// NewCalculatePearsonCorrelations constructs the step.
func NewCalculatePearsonCorrelations() *CalculatePearsonCorrelations {
	return &CalculatePearsonCorrelations{Base: pipeline.Base{
		DisplayName: "Calculate Pearson Correlations",
		ArityBounds: generator.Fixed(2),
		Chunk:       10000,
	}}
}

// Test implements pipeline.TestStep.
func (s *CalculatePearsonCorrelations) Test(c generator.Candidate, g *graph.Graph) []*graph.TestResult {
	x, okX := g.Node(c[0])
	y, okY := g.Node(c[1])
	if !okX || !okY {
		return []*graph.TestResult{graph.NoOp(c[0], c[1])}
	}
	payload, err := g.EdgeValue(x.Name, y.Name)
	if err != nil {
		// Pair no longer connected; nothing to annotate.
		return []*graph.TestResult{graph.NoOp(x.Name, y.Name)}
	}
	data := maps.Clone(payload)
	if data == nil {
		data = graph.Payload{}
	}
	data[PayloadKeyCorrelation] = pearson(x.Values, y.Values)
	return []*graph.TestResult{{X: x.Name, Y: y.Name, Action: graph.ActionUpdateEdge, Data: data}}
}

// CorrelationCoefficientTest prunes an edge when the plain correlation
// t-test cannot reject independence of its endpoints.
type CorrelationCoefficientTest struct {
	pipeline.Base
	Threshold float64
}

// NewCorrelationCoefficientTest constructs the step.
func NewCorrelationCoefficientTest(threshold float64) *CorrelationCoefficientTest {
	return &CorrelationCoefficientTest{
		Base: pipeline.Base{
			DisplayName: "Correlation Coefficient Test",
			ArityBounds: generator.Fixed(2),
			RunParallel: true,
			Chunk:       10000,
		},
		Threshold: threshold,
	}
}

// Test implements pipeline.TestStep.
func (s *CorrelationCoefficientTest) Test(c generator.Candidate, g *graph.Graph) []*graph.TestResult {
	x, okX := g.Node(c[0])
	y, okY := g.Node(c[1])
	if !okX || !okY {
		return []*graph.TestResult{graph.NoOp(c[0], c[1])}
	}
	corr, ok := edgeCorrelation(g, x.Name, y.Name)
	if !ok {
		return []*graph.TestResult{graph.NoOp(x.Name, y.Name)}
	}
	t, critical := tValues(len(x.Values), 0, corr, s.Threshold)
	if independent(t, critical) {
		return []*graph.TestResult{{X: x.Name, Y: y.Name, Action: graph.ActionRemoveEdgeUndirected, Data: graph.Payload{}}}
	}
	return []*graph.TestResult{graph.NoOp(x.Name, y.Name)}
}

// PartialCorrelationTest prunes an edge when its endpoints test independent
// conditioned on a single third variable, via the recursive partial
// correlation formula. Cheaper than the matrix test, so it runs first and
// shrinks the candidate space.
type PartialCorrelationTest struct {
	pipeline.Base
	Threshold float64
}

// NewPartialCorrelationTest constructs the step.
func NewPartialCorrelationTest(threshold float64) *PartialCorrelationTest {
	return &PartialCorrelationTest{
		Base: pipeline.Base{
			DisplayName: "Partial Correlation Test",
			ArityBounds: generator.Fixed(3),
			RunParallel: true,
			Chunk:       10000,
		},
		Threshold: threshold,
	}
}

// Test implements pipeline.TestStep.
func (s *PartialCorrelationTest) Test(c generator.Candidate, g *graph.Graph) []*graph.TestResult {
	x, okX := g.Node(c[0])
	y, okY := g.Node(c[1])
	z, okZ := g.Node(c[2])
	if !okX || !okY || !okZ {
		return []*graph.TestResult{graph.NoOp(c[0], c[1])}
	}
	corXY, ok1 := edgeCorrelation(g, x.Name, y.Name)
	corXZ, ok2 := edgeCorrelation(g, x.Name, z.Name)
	corYZ, ok3 := edgeCorrelation(g, y.Name, z.Name)
	if !ok1 || !ok2 || !ok3 {
		// A prerequisite correlation is absent: an earlier step already
		// pruned part of this triple.
		return []*graph.TestResult{graph.NoOp(x.Name, y.Name)}
	}

	numerator := corXY - corXZ*corYZ
	denominator := math.Sqrt((1 - corXZ*corXZ) * (1 - corYZ*corYZ))
	if denominator == 0 {
		return []*graph.TestResult{graph.NoOp(x.Name, y.Name)}
	}
	parCorr := numerator / denominator

	t, critical := tValues(len(x.Values), 1, parCorr, s.Threshold)
	if independent(t, critical) {
		return []*graph.TestResult{{
			X: x.Name, Y: y.Name,
			Action: graph.ActionRemoveEdgeUndirected,
			Data:   graph.Payload{PayloadKeySeparatedBy: []string{z.Name}},
		}}
	}
	return []*graph.TestResult{graph.NoOp(x.Name, y.Name)}
}

// ExtendedPartialCorrelationTestMatrix prunes the seed pair of a tuple when
// it tests independent conditioned on all remaining tuple members, using
// the inverse covariance matrix. Meant to run over PairsWithNeighbours
// tuples after the cheaper tests have thinned the graph.
type ExtendedPartialCorrelationTestMatrix struct {
	pipeline.Base
	Threshold float64
}

// NewExtendedPartialCorrelationTestMatrix constructs the step. The
// generator defaults to chunked PairsWithNeighbours over [4, node count].
func NewExtendedPartialCorrelationTestMatrix(threshold float64) (*ExtendedPartialCorrelationTestMatrix, error) {
	gen, err := generator.NewPairsWithNeighbours(
		generator.MustBounds(4, generator.AsManyAsFields))
	if err != nil {
		return nil, err
	}
	return &ExtendedPartialCorrelationTestMatrix{
		Base: pipeline.Base{
			DisplayName: "Extended Partial Correlation Test Matrix",
			ArityBounds: generator.MustBounds(4, generator.AsManyAsFields),
			Gen:         gen,
			RunParallel: true,
			Chunk:       1000,
		},
		Threshold: threshold,
	}, nil
}

// Test implements pipeline.TestStep.
func (s *ExtendedPartialCorrelationTestMatrix) Test(c generator.Candidate, g *graph.Graph) []*graph.TestResult {
	nodes := make([]*graph.Node, len(c))
	for i, name := range c {
		n, ok := g.Node(name)
		if !ok {
			return []*graph.TestResult{graph.NoOp(c[0], c[1])}
		}
		nodes[i] = n
	}
	if !g.EdgeExists(nodes[0].Name, nodes[1].Name) {
		return []*graph.TestResult{graph.NoOp(nodes[0].Name, nodes[1].Name)}
	}

	cov := make([][]float64, len(nodes))
	for i := range nodes {
		cov[i] = make([]float64, len(nodes))
	}
	for i := range nodes {
		for k := i; k < len(nodes); k++ {
			cov[i][k] = covariance(nodes[i].Values, nodes[k].Values)
			cov[k][i] = cov[i][k]
		}
	}
	precision, err := invertMatrix(cov)
	if err != nil {
		// Collinear tuple; no conclusion.
		return []*graph.TestResult{graph.NoOp(nodes[0].Name, nodes[1].Name)}
	}
	parCorr := -precision[0][1] / math.Sqrt(precision[0][0]*precision[1][1])

	t, critical := tValues(len(nodes[0].Values), len(nodes)-2, parCorr, s.Threshold)
	if independent(t, critical) {
		separators := make([]string, 0, len(nodes)-2)
		for _, n := range nodes[2:] {
			separators = append(separators, n.Name)
		}
		return []*graph.TestResult{{
			X: nodes[0].Name, Y: nodes[1].Name,
			Action: graph.ActionRemoveEdgeUndirected,
			Data:   graph.Payload{PayloadKeySeparatedBy: separators},
		}}
	}
	return []*graph.TestResult{graph.NoOp(nodes[0].Name, nodes[1].Name)}
}

// edgeCorrelation reads the correlation payload a calculation step left on
// the edge. Second return is false when the edge or the payload is absent.
func edgeCorrelation(g *graph.Graph, u, v string) (float64, bool) {
	payload, err := g.EdgeValue(u, v)
	if err != nil {
		return 0, false
	}
	corr, ok := payload[PayloadKeyCorrelation].(float64)
	return corr, ok
}
