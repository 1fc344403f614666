package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario: a dataset, the algorithm to
// run over it, and the expectations on the outcome.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed by it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Dataset is the observation file (JSON or YAML rows). Relative paths
	// are resolved against the scenario file's directory.
	Dataset string `yaml:"dataset"`

	// Algorithm is the built-in algorithm to run (PC, PCStable, ParallelPC).
	Algorithm string `yaml:"algorithm"`

	// Assertions validate the final graph and the applied-action trace.
	Assertions []Assertion `yaml:"assertions"`

	// dir is the directory the scenario was loaded from, for resolving
	// the dataset path. Empty for scenarios constructed in code.
	dir string
}

// DatasetPath returns the dataset path resolved against the scenario's
// origin directory.
func (s *Scenario) DatasetPath() string {
	if s.dir == "" || filepath.IsAbs(s.Dataset) {
		return s.Dataset
	}
	return filepath.Join(s.dir, s.Dataset)
}

// LoadScenario reads and validates a single scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	scenario.dir = filepath.Dir(path)

	if err := scenario.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// LoadScenarios reads every .yaml scenario under dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenario directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		scenario, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, scenario)
	}
	return scenarios, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Dataset == "" {
		return fmt.Errorf("dataset is required")
	}
	if s.Algorithm == "" {
		return fmt.Errorf("algorithm is required")
	}
	for i, a := range s.Assertions {
		if err := a.validate(); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}
