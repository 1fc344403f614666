package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sepset/internal/registry"
)

func pipelinesDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join("..", "..", "testdata", "pipelines")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Skip("testdata/pipelines directory not found")
	}
	return dir
}

func TestLoadPipelines(t *testing.T) {
	defs, err := LoadPipelines(pipelinesDir(t))
	require.NoError(t, err)
	require.Len(t, defs, 1)

	def := defs[0]
	assert.Equal(t, "basic", def.Name)
	require.Len(t, def.Steps, 4)

	assert.Equal(t, "calculate_pearson_correlations", def.Steps[0].Step)

	batch := def.Steps[1].ApplyTogether
	require.NotNil(t, batch)
	assert.Equal(t, "Prune Edges", batch.Name)
	require.Len(t, batch.Steps, 3)
	require.NotNil(t, batch.Steps[1].Generator)
	assert.Equal(t, "all_combinations", batch.Steps[1].Generator.ID)

	loop := def.Steps[3].Loop
	require.NotNil(t, loop)
	assert.Equal(t, "exit_on_no_actions", loop.Exit)
	assert.Len(t, loop.Steps, 4)
}

func TestLoadPipelinesNonExistentDirectory(t *testing.T) {
	_, err := LoadPipelines("/nonexistent/directory/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}

func TestLoadPipelinesEmptyDirectory(t *testing.T) {
	_, err := LoadPipelines(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNoFiles)
}

func TestAssemble(t *testing.T) {
	defs, err := LoadPipelines(pipelinesDir(t))
	require.NoError(t, err)

	steps, err := Assemble(registry.Default(), defs[0])
	require.NoError(t, err)
	require.Len(t, steps, 4)

	assert.Equal(t, "Calculate Pearson Correlations", steps[0].Name())
	assert.Equal(t, "Prune Edges", steps[1].Name())
	assert.Equal(t, "Collider Test", steps[2].Name())
	assert.Equal(t, "Orientation Rules Loop", steps[3].Name())
}

func TestAssembleUnknownStep(t *testing.T) {
	def := PipelineDef{
		Name:  "broken",
		Steps: []StepDef{{Step: "does_not_exist"}},
	}
	_, err := Assemble(registry.Default(), def)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does_not_exist")
}

func TestAssembleAmbiguousStepEntry(t *testing.T) {
	def := PipelineDef{
		Name: "ambiguous",
		Steps: []StepDef{{
			Step: "collider_test",
			Loop: &LoopDef{Exit: "exit_on_no_actions"},
		}},
	}
	_, err := Assemble(registry.Default(), def)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeInvalidStep)
}

func TestAssembleNestedGenerator(t *testing.T) {
	def := PipelineDef{
		Name: "sampled",
		Steps: []StepDef{{
			Step:   "partial_correlation_test",
			Params: map[string]any{"threshold": 0.01},
			Generator: &GeneratorDef{
				ID:     "random_sample",
				Params: map[string]any{"everyNth": 2},
				Inner:  &GeneratorDef{ID: "all_combinations", Params: map[string]any{"min": 3, "max": 3}},
			},
		}},
	}
	steps, err := Assemble(registry.Default(), def)
	require.NoError(t, err)
	require.Len(t, steps, 1)
}
