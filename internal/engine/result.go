package engine

import (
	"github.com/roach88/sepset/internal/graph"
)

// EdgeExport is one directed adjacency entry of the final graph.
type EdgeExport struct {
	U       string        `json:"u"`
	V       string        `json:"v"`
	Payload graph.Payload `json:"payload,omitempty"`
}

// EdgeHistoryExport is the provenance trail of one directed pair.
type EdgeHistoryExport struct {
	U       string              `json:"u"`
	V       string              `json:"v"`
	Results []*graph.TestResult `json:"results"`
}

// RunResult is everything an external reporting layer needs to reconstruct
// or diff a completed run without re-executing the pipeline: the node set,
// the final directed adjacency, the ordered action history and the
// per-pair edge histories.
type RunResult struct {
	Nodes         []string                  `json:"nodes"`
	Edges         []EdgeExport              `json:"edges"`
	ActionHistory []graph.ActionHistoryEntry `json:"action_history"`
	EdgeHistories []EdgeHistoryExport       `json:"edge_histories,omitempty"`
}

// Result exports the current run state from the graph store. Edge pairs and
// histories are emitted in sorted pair order for stable serialization.
func (r *Runner) Result() *RunResult {
	g := r.graph
	res := &RunResult{
		Nodes:         g.NodeNames(),
		ActionHistory: g.ActionHistory(),
	}
	for _, p := range g.EdgePairs() {
		payload, err := g.EdgeValue(p.U, p.V)
		if err != nil {
			// Pair came from the live adjacency; absence would mean a
			// concurrent mutation, which the engine forbids.
			continue
		}
		res.Edges = append(res.Edges, EdgeExport{U: p.U, V: p.V, Payload: payload})
	}
	for _, p := range g.HistoryPairs() {
		res.EdgeHistories = append(res.EdgeHistories, EdgeHistoryExport{U: p.U, V: p.V, Results: g.EdgeHistory(p.U, p.V)})
	}
	return res
}
