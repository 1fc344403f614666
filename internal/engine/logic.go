package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/sepset/internal/graph"
	"github.com/roach88/sepset/internal/pipeline"
)

// Loop executes its child steps in rounds until the exit condition returns
// true. The condition is evaluated before every round; on the first
// evaluation it sees actionsTaken == nil and iteration == 0, so a
// zero-actions condition always permits at least one round.
type Loop struct {
	name     string
	children []pipeline.Step
	exit     pipeline.ExitCondition
}

// NewLoop constructs a loop. An empty child list or a missing exit
// condition is a configuration error.
func NewLoop(name string, exit pipeline.ExitCondition, children ...pipeline.Step) (*Loop, error) {
	if name == "" {
		name = "Loop"
	}
	if len(children) == 0 {
		return nil, fmt.Errorf("loop %s: at least one child step is required", name)
	}
	if exit == nil {
		return nil, fmt.Errorf("loop %s: an exit condition is required", name)
	}
	return &Loop{name: name, children: children, exit: exit}, nil
}

// Name implements pipeline.Step.
func (l *Loop) Name() string { return l.name }

// Execute implements pipeline.LogicStep.
func (l *Loop) Execute(ctx context.Context, g *graph.Graph, r pipeline.Runner) error {
	var actions []*graph.TestResult
	for iteration := 0; !l.exit(g, r, actions, iteration); iteration++ {
		actions = []*graph.TestResult{}
		for _, child := range l.children {
			applied, err := r.ExecuteStep(ctx, child)
			if err != nil {
				return fmt.Errorf("loop %s child %s: %w", l.name, child.Name(), err)
			}
			actions = append(actions, applied...)
		}
		slog.Debug("loop round finished", "loop", l.name, "round", iteration, "actions", len(actions))
	}
	return nil
}

// ApplyActionsTogether executes its child test steps in collect-only mode
// and commits the union of their results in exactly one apply pass at the
// end. Later children still observe the pre-batch graph when testing, which
// trades immediate pruning for order-independence within the batch; the
// PC-Stable variant is built on this.
type ApplyActionsTogether struct {
	name     string
	children []pipeline.TestStep
}

// NewApplyActionsTogether constructs the construct. Children must be test
// steps: nesting another logic step would commit behind the batch's back.
func NewApplyActionsTogether(name string, children ...pipeline.TestStep) (*ApplyActionsTogether, error) {
	if name == "" {
		name = "ApplyActionsTogether"
	}
	if len(children) == 0 {
		return nil, fmt.Errorf("apply actions together %s: at least one child step is required", name)
	}
	return &ApplyActionsTogether{name: name, children: children}, nil
}

// Name implements pipeline.Step.
func (a *ApplyActionsTogether) Name() string { return a.name }

// Execute implements pipeline.LogicStep.
func (a *ApplyActionsTogether) Execute(ctx context.Context, g *graph.Graph, r pipeline.Runner) error {
	var collected []*graph.TestResult
	for _, child := range a.children {
		results, err := r.CollectStep(ctx, child)
		if err != nil {
			return fmt.Errorf("apply actions together %s child %s: %w", a.name, child.Name(), err)
		}
		collected = append(collected, results...)
	}
	if _, err := r.ApplyResults(a.name, collected); err != nil {
		return fmt.Errorf("apply actions together %s: %w", a.name, err)
	}
	return nil
}
