package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/sepset/internal/graph"
)

// ApplyResults runs one serialized apply pass over results, then records a
// single action-history entry under stepName and returns the list of
// actions actually applied.
//
// Each result's precondition is validated against the *current* graph
// state. A miss means an earlier action in this batch already changed the
// edge — the conclusion is stale, which is expected: the result is skipped
// and logged. Structural errors from the store are returned, since a
// validated precondition rules them out unless a step fabricated node
// names.
func (r *Runner) ApplyResults(stepName string, results []*graph.TestResult) ([]*graph.TestResult, error) {
	applied := make([]*graph.TestResult, 0, len(results))

	for _, result := range results {
		ok, err := r.applyOne(result)
		if err != nil {
			return nil, fmt.Errorf("apply %s on (%s, %s): %w", result.Action, result.X, result.Y, err)
		}
		if ok {
			applied = append(applied, result)
			r.record(stepName, result)
		}
	}

	r.graph.AppendActionHistory(graph.ActionHistoryEntry{Step: stepName, Actions: applied})
	slog.Info("pipeline step applied", "step", stepName, "actions", len(applied))
	return applied, nil
}

// applyOne validates and applies a single result. Returns false when the
// result is non-actionable or its precondition no longer holds.
func (r *Runner) applyOne(result *graph.TestResult) (bool, error) {
	if result.Action == graph.ActionDoNothing {
		return false, nil
	}
	if result.X == "" || result.Y == "" {
		// No focal pair: the step emitted an empty conclusion.
		return false, nil
	}
	g := r.graph
	x, y := result.X, result.Y

	switch result.Action {
	case graph.ActionRemoveEdgeUndirected:
		if !g.UndirectedEdgeExists(x, y) {
			slog.Debug("skipping stale action: edge not undirected",
				"action", result.Action, "x", x, "y", y)
			return false, nil
		}
		if err := g.RemoveEdge(x, y); err != nil {
			return false, err
		}

	case graph.ActionUpdateEdge:
		if !g.EdgeExists(x, y) {
			slog.Debug("skipping stale action: edge absent",
				"action", result.Action, "x", x, "y", y)
			return false, nil
		}
		if err := g.UpdateEdge(x, y, result.Data); err != nil {
			return false, err
		}

	case graph.ActionUpdateEdgeDirected:
		if !g.DirectedEdgeExists(x, y) {
			slog.Debug("skipping stale action: directed edge absent",
				"action", result.Action, "x", x, "y", y)
			return false, nil
		}
		if err := g.UpdateDirectedEdge(x, y, result.Data); err != nil {
			return false, err
		}

	case graph.ActionRemoveEdgeDirected:
		if !g.DirectedEdgeExists(x, y) {
			slog.Debug("skipping stale action: directed edge absent",
				"action", result.Action, "x", x, "y", y)
			return false, nil
		}
		if err := g.RemoveDirectedEdge(x, y); err != nil {
			return false, err
		}

	default:
		return false, fmt.Errorf("unknown action %q", result.Action)
	}

	// Symmetric actions leave a trail on both directions, directed actions
	// only on X→Y.
	g.AppendEdgeHistory(x, y, result)
	if !result.Action.Directed() {
		g.AppendEdgeHistory(y, x, result)
	}
	return true, nil
}

// record persists one applied action. Recorder failures are logged and the
// run continues: persistence is provenance, not correctness.
func (r *Runner) record(stepName string, result *graph.TestResult) {
	if r.recorder == nil {
		return
	}
	seq := r.clock.Next()
	if err := r.recorder.RecordAction(stepName, seq, result); err != nil {
		slog.Error("recording action failed",
			"error", err, "step", stepName, "seq", seq,
			"action", result.Action, "x", result.X, "y", result.Y)
	}
}
