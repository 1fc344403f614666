// Package dataset is the ingestion boundary: observation rows come in as
// JSON or YAML, get validated and name-normalized once, and leave as a
// fully connected graph the pipeline can prune.
package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sepset/internal/graph"
)

// Dataset holds the observations column-wise, keyed by normalized variable
// name.
type Dataset struct {
	names   []string
	columns map[string][]float64
	samples int
}

// Load reads a dataset file, picking the decoder by extension (.json,
// .yaml, .yml).
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return DecodeJSON(f)
	case ".yaml", ".yml":
		return DecodeYAML(f)
	default:
		return nil, fmt.Errorf("dataset %s: unsupported extension %q (want .json, .yaml or .yml)", path, ext)
	}
}

// DecodeJSON reads rows of {"variable": value, ...} objects.
func DecodeJSON(r io.Reader) (*Dataset, error) {
	var rows []map[string]float64
	dec := json.NewDecoder(r)
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode json dataset: %w", err)
	}
	return FromRows(rows)
}

// DecodeYAML reads the same row shape from YAML.
func DecodeYAML(r io.Reader) (*Dataset, error) {
	var rows []map[string]float64
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode yaml dataset: %w", err)
	}
	return FromRows(rows)
}

// FromRows validates the rows and builds the column store. Variable names
// are NFC-normalized so visually identical spellings key the same node;
// two distinct spellings normalizing to the same name are a conflict. All
// rows must carry exactly the keys of the first row.
func FromRows(rows []map[string]float64) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}

	names := make([]string, 0, len(rows[0]))
	byRaw := make(map[string]string, len(rows[0]))
	for raw := range rows[0] {
		name := norm.NFC.String(raw)
		if slices.Contains(names, name) {
			return nil, fmt.Errorf("dataset: variable names %q collide after normalization", name)
		}
		names = append(names, name)
		byRaw[raw] = name
	}
	slices.Sort(names)

	columns := make(map[string][]float64, len(names))
	for _, name := range names {
		columns[name] = make([]float64, 0, len(rows))
	}
	for i, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("dataset row %d: has %d variables, want %d", i, len(row), len(names))
		}
		for raw, value := range row {
			name, ok := byRaw[raw]
			if !ok {
				name = norm.NFC.String(raw)
				if _, known := columns[name]; !known {
					return nil, fmt.Errorf("dataset row %d: unknown variable %q", i, raw)
				}
				byRaw[raw] = name
			}
			columns[name] = append(columns[name], value)
		}
		for _, name := range names {
			if len(columns[name]) != i+1 {
				return nil, fmt.Errorf("dataset row %d: missing variable %q", i, name)
			}
		}
	}

	return &Dataset{names: names, columns: columns, samples: len(rows)}, nil
}

// Names returns the normalized variable names in sorted order.
func (d *Dataset) Names() []string { return slices.Clone(d.names) }

// SampleSize returns the number of observation rows.
func (d *Dataset) SampleSize() int { return d.samples }

// Values returns the column of one variable.
func (d *Dataset) Values(name string) ([]float64, bool) {
	vs, ok := d.columns[name]
	return vs, ok
}

// Graph builds the initial graph: one node per variable and the complete
// undirected edge set, the state every constraint-based pipeline starts
// from.
func (d *Dataset) Graph() (*graph.Graph, error) {
	g := graph.New()
	for _, name := range d.names {
		g.AddNode(name, d.columns[name])
	}
	for i, u := range d.names {
		for _, v := range d.names[i+1:] {
			if err := g.AddEdge(u, v, graph.Payload{}); err != nil {
				return nil, fmt.Errorf("connect %s and %s: %w", u, v, err)
			}
		}
	}
	return g, nil
}
