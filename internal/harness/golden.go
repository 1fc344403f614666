package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot is the canonical serialized form of a scenario trace,
// compared byte-for-byte against golden files.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Algorithm    string       `json:"algorithm"`
	Trace        []TraceEvent `json:"trace"`
}

// RunWithGolden executes a scenario, evaluates its assertions and compares
// the trace against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	for _, assertErr := range result.Errors {
		t.Error(assertErr)
	}

	AssertGolden(t, scenario, result)
	return result, nil
}

// AssertGolden compares an already-computed result's trace against the
// scenario's golden file.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		Algorithm:    scenario.Algorithm,
		Trace:        result.Trace,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		t.Fatalf("marshaling trace snapshot: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
}
