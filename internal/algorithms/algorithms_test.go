package algorithms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sepset/internal/engine"
	"github.com/roach88/sepset/internal/graph"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"PC", "PCStable", "ParallelPC"}, Names())
}

func TestBuild_UnknownAlgorithm(t *testing.T) {
	_, err := Build("NotAnAlgorithm")
	assert.Error(t, err)
}

func TestBuild_PresetsAssemble(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			steps, err := Build(name)
			require.NoError(t, err)
			assert.NotEmpty(t, steps)
			for _, s := range steps {
				assert.NotEmpty(t, s.Name())
			}
		})
	}
}

// colliderGraph builds a fully connected graph over three variables where
// z is the exact sum of two orthogonal inputs x and y. The ground truth is
// the collider x → z ← y with no x – y edge.
func colliderGraph(t *testing.T) *graph.Graph {
	t.Helper()

	base := [][3]float64{}
	xs := []float64{1, -1, 1, -1, 1, -1, 1, -1}
	ys := []float64{1, 1, -1, -1, 1, 1, -1, -1}
	for rep := 0; rep < 10; rep++ {
		for i := range xs {
			base = append(base, [3]float64{xs[i], ys[i], xs[i] + ys[i]})
		}
	}

	g := graph.New()
	for col, name := range []string{"x", "y", "z"} {
		values := make([]float64, len(base))
		for i, row := range base {
			values[i] = row[col]
		}
		g.AddNode(name, values)
	}
	for _, pair := range [][2]string{{"x", "y"}, {"x", "z"}, {"y", "z"}} {
		require.NoError(t, g.AddEdge(pair[0], pair[1], graph.Payload{}))
	}
	return g
}

func runPreset(t *testing.T, name string, g *graph.Graph) *engine.Runner {
	t.Helper()
	steps, err := Build(name)
	require.NoError(t, err)

	r := engine.New(g, engine.WithWorkers(2), engine.WithOrderedApply(true))
	t.Cleanup(r.Close)
	require.NoError(t, r.ExecuteAll(context.Background(), steps))
	return r
}

func TestPC_RecoversCollider(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			g := colliderGraph(t)
			runPreset(t, name, g)

			assert.False(t, g.EdgeExists("x", "y"), "independent inputs should be disconnected")
			assert.True(t, g.OnlyDirectedEdgeExists("x", "z"), "x should point into the collider")
			assert.True(t, g.OnlyDirectedEdgeExists("y", "z"), "y should point into the collider")
		})
	}
}

func TestPC_RecordsProvenance(t *testing.T) {
	g := colliderGraph(t)
	runPreset(t, "PC", g)

	history := g.ActionHistory()
	require.NotEmpty(t, history)
	assert.Equal(t, "Calculate Pearson Correlations", history[0].Step)

	removals := g.EdgeHistoryByAction("x", "y", graph.ActionRemoveEdgeUndirected)
	require.NotEmpty(t, removals, "the pruned pair should keep its removal evidence")
}

func TestPC_ChainOrientsAwayFromCollider(t *testing.T) {
	// Ground truth x → z ← y → ... plus a child w of z. Starting from the
	// complete graph, the matrix test must prune x – w and y – w with z in
	// the separating set, which both spares z from a spurious collider with
	// w and lets the non-collider rule orient z → w.
	xs := []float64{1, -1, 1, -1, 1, -1, 1, -1}
	ys := []float64{1, 1, -1, -1, 1, 1, -1, -1}
	ds := []float64{1, 1, 1, 1, -1, -1, -1, -1}
	es := []float64{1, -1, -1, 1, 1, -1, -1, 1}

	g := graph.New()
	for _, col := range []struct {
		name   string
		sample func(i int) float64
	}{
		{"x", func(i int) float64 { return xs[i] }},
		{"y", func(i int) float64 { return ys[i] }},
		{"z", func(i int) float64 { return xs[i] + ys[i] + ds[i] }},
		{"w", func(i int) float64 { return (xs[i]+ys[i]+ds[i])/2 + es[i] }},
	} {
		values := make([]float64, 80)
		for i := range values {
			values[i] = col.sample(i % 8)
		}
		g.AddNode(col.name, values)
	}
	names := []string{"x", "y", "z", "w"}
	for i, u := range names {
		for _, v := range names[i+1:] {
			require.NoError(t, g.AddEdge(u, v, graph.Payload{}))
		}
	}

	runPreset(t, "PC", g)

	assert.False(t, g.EdgeExists("x", "y"))
	assert.False(t, g.EdgeExists("x", "w"))
	assert.False(t, g.EdgeExists("y", "w"))
	assert.True(t, g.OnlyDirectedEdgeExists("x", "z"))
	assert.True(t, g.OnlyDirectedEdgeExists("y", "z"))
	assert.True(t, g.OnlyDirectedEdgeExists("z", "w"), "the trailing edge should orient away from the collider")
}
