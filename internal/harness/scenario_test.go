package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")

	content := `
name: test_scenario
description: "Recovers a collider"
dataset: data/collider.json
algorithm: PC
assertions:
  - type: edge_absent
    u: x
    v: y
  - type: trace_count
    action: REMOVE_EDGE_DIRECTED
    count: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Recovers a collider", scenario.Description)
	assert.Equal(t, "PC", scenario.Algorithm)
	assert.Equal(t, filepath.Join(dir, "data", "collider.json"), scenario.DatasetPath())
	require.Len(t, scenario.Assertions, 2)
	assert.Equal(t, AssertEdgeAbsent, scenario.Assertions[0].Type)
	assert.Equal(t, 2, scenario.Assertions[1].Count)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadScenario_MissingRequiredFields(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"missing name":      "dataset: d.json\nalgorithm: PC\n",
		"missing dataset":   "name: s\nalgorithm: PC\n",
		"missing algorithm": "name: s\ndataset: d.json\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "scenario.yaml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))
			_, err := LoadScenario(path)
			require.Error(t, err)
		})
	}
}

func TestLoadScenario_InvalidAssertion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	content := `
name: s
dataset: d.json
algorithm: PC
assertions:
  - type: edge_absent
    u: x
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires u and v")
}

func TestLoadScenario_AbsoluteDatasetPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	content := "name: s\ndataset: /data/collider.json\nalgorithm: PC\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/collider.json", scenario.DatasetPath())
}

func TestLoadScenarios_SortedByFileName(t *testing.T) {
	dir := t.TempDir()
	write := func(file, name string) {
		content := "name: " + name + "\ndataset: d.json\nalgorithm: PC\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0644))
	}
	write("b.yaml", "second")
	write("a.yaml", "first")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	scenarios, err := LoadScenarios(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "first", scenarios[0].Name)
	assert.Equal(t, "second", scenarios[1].Name)
}
