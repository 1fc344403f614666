// Package pipeline defines the step protocol every causal-discovery
// algorithm is assembled from.
//
// A pipeline is a sequence of steps of exactly two kinds: TestStep (a pure
// statistical test over candidate tuples) and LogicStep (a control
// construct orchestrating nested steps). The execution engine branches once
// per step on this distinction; there is no other runtime polymorphism.
package pipeline

import (
	"context"
	"fmt"

	"github.com/roach88/sepset/internal/generator"
	"github.com/roach88/sepset/internal/graph"
)

// Step is the common surface of both step kinds. Concrete steps implement
// exactly one of TestStep or LogicStep.
type Step interface {
	// Name is the display name recorded in the action history.
	Name() string
}

// TestStep is a statistical test over candidate tuples.
//
// Test must be a pure function of the candidate and the given graph (an
// immutable snapshot under parallel execution): no shared-state mutation,
// no retained references. It may return zero, one or many results. When a
// prerequisite payload computed by an earlier step is absent it must return
// a do-nothing result rather than fail — under broad enumeration many
// candidates legitimately reference incomplete intermediate state.
type TestStep interface {
	Step

	// Bounds are the arity bounds the step's generator is configured with.
	Bounds() generator.Bounds

	// Generator enumerates the candidate tuples to test.
	Generator() generator.Generator

	// Parallel reports whether the step may run in the worker pool.
	Parallel() bool

	// ChunkSize is how many candidates one worker dispatch handles when the
	// generator does not batch on its own.
	ChunkSize() int

	Test(candidate generator.Candidate, g *graph.Graph) []*graph.TestResult
}

// LogicStep is a control construct over nested steps, e.g. loop-to-fixpoint
// or defer-and-batch. Logic steps add no concurrency of their own.
type LogicStep interface {
	Step

	Execute(ctx context.Context, g *graph.Graph, r Runner) error
}

// Runner is the engine surface logic steps drive. Implemented by
// engine.Runner.
type Runner interface {
	// ExecuteStep runs one step through the full dispatch → normalize →
	// apply → record cycle and returns the applied actions.
	ExecuteStep(ctx context.Context, step Step) ([]*graph.TestResult, error)

	// CollectStep runs a test step's generation and test phases but commits
	// nothing: results are returned for a deferred apply pass.
	CollectStep(ctx context.Context, step TestStep) ([]*graph.TestResult, error)

	// ApplyResults runs one apply pass over results and records a single
	// action-history entry under stepName. Returns the applied actions.
	// Precondition misses are skipped and logged; structural errors are
	// returned, since they indicate a step logic bug.
	ApplyResults(stepName string, results []*graph.TestResult) ([]*graph.TestResult, error)

	// Graph is the live graph store.
	Graph() *graph.Graph
}

// ExitCondition decides when a Loop terminates; true means stop. On the
// first evaluation actionsTaken is nil and iteration is 0, letting a
// condition distinguish "not yet run" from "ran and changed nothing".
type ExitCondition func(g *graph.Graph, r Runner, actionsTaken []*graph.TestResult, iteration int) bool

// ExitOnNoActions terminates once a completed round produced zero actions:
// the fixpoint condition used by the PC orientation-rule loop.
func ExitOnNoActions(_ *graph.Graph, _ Runner, actionsTaken []*graph.TestResult, _ int) bool {
	return actionsTaken != nil && len(actionsTaken) == 0
}

// Base carries the declarative configuration shared by all test steps.
// Concrete steps embed it and implement Test.
type Base struct {
	DisplayName string
	ArityBounds generator.Bounds
	Gen         generator.Generator
	RunParallel bool
	Chunk       int
}

// DefaultChunkSize is used when a step does not configure one.
const DefaultChunkSize = 10000

// Name implements Step.
func (b *Base) Name() string { return b.DisplayName }

// Bounds implements TestStep.
func (b *Base) Bounds() generator.Bounds { return b.ArityBounds }

// Generator implements TestStep, defaulting to AllCombinations over the
// step's bounds.
func (b *Base) Generator() generator.Generator {
	if b.Gen == nil {
		b.Gen = generator.NewAllCombinations(b.ArityBounds)
	}
	return b.Gen
}

// SetGenerator overrides the step's candidate generator. Pipeline loaders
// use it to wire a configured generator into a registry-built step.
func (b *Base) SetGenerator(g generator.Generator) { b.Gen = g }

// Parallel implements TestStep.
func (b *Base) Parallel() bool { return b.RunParallel }

// ChunkSize implements TestStep.
func (b *Base) ChunkSize() int {
	if b.Chunk <= 0 {
		return DefaultChunkSize
	}
	return b.Chunk
}

// Validate checks the configuration. Called at pipeline construction so
// invalid steps fail before any data is processed.
func (b *Base) Validate() error {
	if b.DisplayName == "" {
		return fmt.Errorf("step: display name is required")
	}
	if _, err := generator.NewBounds(b.ArityBounds.Min, b.ArityBounds.Max); err != nil {
		return fmt.Errorf("step %s: %w", b.DisplayName, err)
	}
	return nil
}
