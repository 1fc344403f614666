package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func colliderScenario(t *testing.T, assertions ...Assertion) *Scenario {
	t.Helper()
	return &Scenario{
		Name:       "collider",
		Dataset:    filepath.Join("testdata", "datasets", "collider.json"),
		Algorithm:  "PC",
		Assertions: assertions,
	}
}

func TestRun_PassingScenario(t *testing.T) {
	scenario := colliderScenario(t,
		Assertion{Type: AssertEdgeAbsent, U: "x", V: "y"},
		Assertion{Type: AssertEdgeDirected, From: "x", To: "z"},
		Assertion{Type: AssertEdgeDirected, From: "y", To: "z"},
	)

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)
	assert.NotEmpty(t, result.Trace)
}

func TestRun_CollectsAllFailures(t *testing.T) {
	scenario := colliderScenario(t,
		Assertion{Type: AssertEdgeUndirected, U: "x", V: "y"},
		Assertion{Type: AssertEdgeDirected, From: "z", To: "x"},
	)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)

	var assertErr *AssertionError
	require.ErrorAs(t, result.Errors[0], &assertErr)
	assert.Equal(t, AssertEdgeUndirected, assertErr.Type)
	assert.Contains(t, assertErr.Error(), "full trace")
}

func TestRun_TraceIsFlatAndOrdered(t *testing.T) {
	scenario := colliderScenario(t)

	result, err := Run(scenario)
	require.NoError(t, err)

	require.NotEmpty(t, result.Trace)
	assert.Equal(t, "Calculate Pearson Correlations", result.Trace[0].Step)
	assert.Equal(t, "UPDATE_EDGE", result.Trace[0].Action)

	last := result.Trace[len(result.Trace)-1]
	assert.Equal(t, "Collider Test", last.Step)
	assert.Equal(t, "REMOVE_EDGE_DIRECTED", last.Action)
}

func TestRun_Deterministic(t *testing.T) {
	scenario := colliderScenario(t)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
}

func TestRun_UnknownAlgorithm(t *testing.T) {
	scenario := colliderScenario(t)
	scenario.Algorithm = "NotAnAlgorithm"

	_, err := Run(scenario)
	require.Error(t, err)
}

func TestRun_MissingDataset(t *testing.T) {
	scenario := colliderScenario(t)
	scenario.Dataset = filepath.Join(t.TempDir(), "missing.json")

	_, err := Run(scenario)
	require.Error(t, err)
}
