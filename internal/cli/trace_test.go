package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// populateDatabase runs the PC algorithm over the collider dataset with
// persistence enabled and returns the database path.
func populateDatabase(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--algorithm", "PC", "--db", dbPath, colliderDataset(t)})
	require.NoError(t, cmd.Execute())

	return dbPath
}

func TestTraceLatestRun(t *testing.T) {
	dbPath := populateDatabase(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "x", "y"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Run ")
	assert.Contains(t, output, "Edge x / y:")
	assert.Contains(t, output, "REMOVE_EDGE_UNDIRECTED")
}

func TestTraceArgumentOrderIrrelevantForUndirected(t *testing.T) {
	dbPath := populateDatabase(t)

	forward := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(forward)
	cmd.SetArgs([]string{"--db", dbPath, "x", "y"})
	require.NoError(t, cmd.Execute())

	reverse := &bytes.Buffer{}
	cmd = NewTraceCommand(rootOpts)
	cmd.SetOut(reverse)
	cmd.SetArgs([]string{"--db", dbPath, "y", "x"})
	require.NoError(t, cmd.Execute())

	var fwd, rev CLIResponse
	require.NoError(t, json.Unmarshal(forward.Bytes(), &fwd))
	require.NoError(t, json.Unmarshal(reverse.Bytes(), &rev))

	fwdData := fwd.Data.(map[string]any)
	revData := rev.Data.(map[string]any)
	fwdActions := fwdData["actions"].([]any)
	revActions := revData["actions"].([]any)
	assert.Equal(t, len(fwdActions), len(revActions))
	assert.NotEmpty(t, fwdActions)
}

func TestTraceUnknownRun(t *testing.T) {
	dbPath := populateDatabase(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--run", "no-such-run", "x", "y"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTraceUntrackedPair(t *testing.T) {
	dbPath := populateDatabase(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTraceCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "nope", "nothere"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "no recorded actions")
}
