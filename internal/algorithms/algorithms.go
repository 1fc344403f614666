// Package algorithms assembles the built-in discovery pipelines from the
// statistical and orientation steps. Assembly is separate from execution: a
// preset only builds the step list, the engine runs it.
package algorithms

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/sepset/internal/engine"
	"github.com/roach88/sepset/internal/generator"
	"github.com/roach88/sepset/internal/independence"
	"github.com/roach88/sepset/internal/pipeline"
)

// Builder assembles the steps of one named pipeline.
type Builder func() ([]pipeline.Step, error)

var presets = map[string]Builder{
	"PC":         PC,
	"PCStable":   PCStable,
	"ParallelPC": ParallelPC,
}

// Names returns the preset names in sorted order.
func Names() []string {
	names := slices.Collect(maps.Keys(presets))
	slices.Sort(names)
	return names
}

// Build assembles the named preset.
func Build(name string) ([]pipeline.Step, error) {
	builder, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown algorithm %q (have %v)", name, Names())
	}
	return builder()
}

// orientationRules is the shared tail of all PC variants: one collider pass,
// then the remaining rules looped until a full round applies nothing.
func orientationRules() ([]pipeline.Step, error) {
	loop, err := engine.NewLoop(
		"Orientation Rules Loop",
		pipeline.ExitOnNoActions,
		independence.NewNonColliderTest(),
		independence.NewFurtherOrientTripleTest(),
		independence.NewOrientQuadrupleTest(),
		independence.NewFurtherOrientQuadrupleTest(),
	)
	if err != nil {
		return nil, err
	}
	return []pipeline.Step{independence.NewColliderTest(), loop}, nil
}

// PC is the classic constraint-based pipeline: correlate, prune by
// increasingly conditioned independence tests, then orient.
func PC() ([]pipeline.Step, error) {
	extended, err := independence.NewExtendedPartialCorrelationTestMatrix(0.05)
	if err != nil {
		return nil, err
	}
	orientation, err := orientationRules()
	if err != nil {
		return nil, err
	}
	steps := []pipeline.Step{
		independence.NewCalculatePearsonCorrelations(),
		independence.NewCorrelationCoefficientTest(0.05),
		independence.NewPartialCorrelationTest(0.05),
		extended,
	}
	return append(steps, orientation...), nil
}

// PCStable batches all pruning decisions of one pass and applies them
// together, so the outcome does not depend on the order edges are visited.
func PCStable() ([]pipeline.Step, error) {
	extended, err := independence.NewExtendedPartialCorrelationTestMatrix(0.01)
	if err != nil {
		return nil, err
	}
	batch, err := engine.NewApplyActionsTogether(
		"Prune Edges",
		independence.NewCorrelationCoefficientTest(0.01),
		independence.NewPartialCorrelationTest(0.01),
		extended,
	)
	if err != nil {
		return nil, err
	}
	orientation, err := orientationRules()
	if err != nil {
		return nil, err
	}
	steps := []pipeline.Step{
		independence.NewCalculatePearsonCorrelations(),
		batch,
	}
	return append(steps, orientation...), nil
}

// ParallelPC tunes the PC pipeline for large variable counts: bigger
// parallel chunks, a stricter threshold and a sampled pre-screen of the
// matrix test that thins the neighbourhood tuples before the full pass.
func ParallelPC() ([]pipeline.Step, error) {
	const threshold = 0.001

	partial := independence.NewPartialCorrelationTest(threshold)
	partial.Chunk = 50000

	sampled, err := independence.NewExtendedPartialCorrelationTestMatrix(threshold)
	if err != nil {
		return nil, err
	}
	inner, err := generator.NewPairsWithNeighbours(
		generator.MustBounds(4, generator.AsManyAsFields),
		generator.WithShuffle(true),
	)
	if err != nil {
		return nil, err
	}
	sample, err := generator.NewRandomSample(inner, 500)
	if err != nil {
		return nil, err
	}
	sampled.DisplayName = "Sampled Extended Partial Correlation Test Matrix"
	sampled.Gen = sample
	sampled.Chunk = 5000

	extended, err := independence.NewExtendedPartialCorrelationTestMatrix(threshold)
	if err != nil {
		return nil, err
	}
	full, err := generator.NewPairsWithNeighbours(
		generator.MustBounds(4, generator.AsManyAsFields),
		generator.WithShuffle(true),
	)
	if err != nil {
		return nil, err
	}
	extended.Gen = full
	extended.Chunk = 20000

	orientation, err := orientationRules()
	if err != nil {
		return nil, err
	}
	steps := []pipeline.Step{
		independence.NewCalculatePearsonCorrelations(),
		independence.NewCorrelationCoefficientTest(threshold),
		partial,
		sampled,
		extended,
	}
	return append(steps, orientation...), nil
}
