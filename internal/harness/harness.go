package harness

import (
	"context"
	"fmt"

	"github.com/roach88/sepset/internal/algorithms"
	"github.com/roach88/sepset/internal/dataset"
	"github.com/roach88/sepset/internal/engine"
	"github.com/roach88/sepset/internal/graph"
)

// TraceEvent is one applied action of a scenario run, in apply order.
type TraceEvent struct {
	Step   string `json:"step"`
	Action string `json:"action"`
	X      string `json:"x"`
	Y      string `json:"y"`
}

// Result is the outcome of running one scenario.
type Result struct {
	Pass   bool
	Errors []error
	Trace  []TraceEvent
	Graph  *graph.Graph
	Run    *engine.RunResult
}

// Run executes a scenario and evaluates its assertions.
//
// Runs are deterministic: a single worker and ordered apply, so the trace
// depends only on the dataset and the algorithm. Assertion failures are
// collected into Result.Errors rather than aborting, so a failing scenario
// reports every broken expectation at once.
func Run(scenario *Scenario) (*Result, error) {
	ds, err := dataset.Load(scenario.DatasetPath())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: loading dataset: %w", scenario.Name, err)
	}
	steps, err := algorithms.Build(scenario.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	g, err := ds.Graph()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: building graph: %w", scenario.Name, err)
	}

	runner := engine.New(g, engine.WithWorkers(1), engine.WithOrderedApply(true))
	defer runner.Close()

	if err := runner.ExecuteAll(context.Background(), steps); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := &Result{
		Trace: flattenTrace(g.ActionHistory()),
		Graph: g,
		Run:   runner.Result(),
	}
	for _, assertion := range scenario.Assertions {
		if err := assertion.check(g, result.Trace); err != nil {
			result.Errors = append(result.Errors, err)
		}
	}
	result.Pass = len(result.Errors) == 0
	return result, nil
}

// flattenTrace turns the per-step action history into a flat event list.
// Steps that applied nothing contribute no events.
func flattenTrace(history []graph.ActionHistoryEntry) []TraceEvent {
	var trace []TraceEvent
	for _, entry := range history {
		for _, action := range entry.Actions {
			trace = append(trace, TraceEvent{
				Step:   entry.Step,
				Action: string(action.Action),
				X:      action.X,
				Y:      action.Y,
			})
		}
	}
	return trace
}
