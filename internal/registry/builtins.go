package registry

import (
	"fmt"

	"github.com/roach88/sepset/internal/generator"
	"github.com/roach88/sepset/internal/independence"
	"github.com/roach88/sepset/internal/pipeline"
)

// DefaultThreshold is used by pruning steps when a definition does not set
// one.
const DefaultThreshold = 0.05

// Default returns a registry populated with the built-in steps, generators
// and exit conditions.
func Default() *Registry {
	r := New()
	mustRegister(r.RegisterStep("calculate_pearson_correlations", func(p Params) (pipeline.Step, error) {
		return independence.NewCalculatePearsonCorrelations(), nil
	}))
	mustRegister(r.RegisterStep("correlation_coefficient_test", func(p Params) (pipeline.Step, error) {
		return independence.NewCorrelationCoefficientTest(floatParam(p, "threshold", DefaultThreshold)), nil
	}))
	mustRegister(r.RegisterStep("partial_correlation_test", func(p Params) (pipeline.Step, error) {
		return independence.NewPartialCorrelationTest(floatParam(p, "threshold", DefaultThreshold)), nil
	}))
	mustRegister(r.RegisterStep("extended_partial_correlation_test_matrix", func(p Params) (pipeline.Step, error) {
		return independence.NewExtendedPartialCorrelationTestMatrix(floatParam(p, "threshold", DefaultThreshold))
	}))
	mustRegister(r.RegisterStep("collider_test", func(p Params) (pipeline.Step, error) {
		return independence.NewColliderTest(), nil
	}))
	mustRegister(r.RegisterStep("non_collider_test", func(p Params) (pipeline.Step, error) {
		return independence.NewNonColliderTest(), nil
	}))
	mustRegister(r.RegisterStep("further_orient_triple_test", func(p Params) (pipeline.Step, error) {
		return independence.NewFurtherOrientTripleTest(), nil
	}))
	mustRegister(r.RegisterStep("orient_quadruple_test", func(p Params) (pipeline.Step, error) {
		return independence.NewOrientQuadrupleTest(), nil
	}))
	mustRegister(r.RegisterStep("further_orient_quadruple_test", func(p Params) (pipeline.Step, error) {
		return independence.NewFurtherOrientQuadrupleTest(), nil
	}))

	mustRegister(r.RegisterGenerator("all_combinations", func(p Params) (generator.Generator, error) {
		bounds, err := boundsParam(p)
		if err != nil {
			return nil, err
		}
		return generator.NewAllCombinations(bounds), nil
	}))
	mustRegister(r.RegisterGenerator("pairs_with_neighbours", func(p Params) (generator.Generator, error) {
		bounds, err := boundsParam(p)
		if err != nil {
			return nil, err
		}
		return generator.NewPairsWithNeighbours(bounds,
			generator.WithShuffle(boolParam(p, "shuffle", false)),
			generator.WithChunked(boolParam(p, "chunked", false)),
		)
	}))
	mustRegister(r.RegisterGenerator("random_sample", func(p Params) (generator.Generator, error) {
		inner, ok := p["inner"].(generator.Generator)
		if !ok {
			return nil, fmt.Errorf("random_sample requires an inner generator")
		}
		return generator.NewRandomSample(inner, intParam(p, "everyNth", 1))
	}))

	mustRegister(r.RegisterExit("exit_on_no_actions", func(p Params) (pipeline.ExitCondition, error) {
		return pipeline.ExitOnNoActions, nil
	}))
	return r
}

// mustRegister collapses registration errors of the built-ins; ids are
// literals, so a failure is a programming error.
func mustRegister(err error) {
	if err != nil {
		panic(err)
	}
}

func boundsParam(p Params) (generator.Bounds, error) {
	return generator.NewBounds(
		intParam(p, "min", 2),
		intParam(p, "max", generator.AsManyAsFields),
	)
}

// floatParam reads a float parameter, accepting integer-typed values since
// configuration decoders do not distinguish numeric kinds consistently.
func floatParam(p Params, key string, fallback float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return fallback
	}
}

func intParam(p Params, key string, fallback int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func boolParam(p Params, key string, fallback bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return fallback
}
