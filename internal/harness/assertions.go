package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/sepset/internal/graph"
)

// Assertion type constants.
const (
	AssertEdgeAbsent     = "edge_absent"
	AssertEdgeUndirected = "edge_undirected"
	AssertEdgeDirected   = "edge_directed"
	AssertTraceContains  = "trace_contains"
	AssertTraceCount     = "trace_count"
)

// Assertion validates the final graph or the applied-action trace.
type Assertion struct {
	// Type specifies the assertion type:
	//   - "edge_absent": no edge between U and V in either direction
	//   - "edge_undirected": an undirected edge between U and V
	//   - "edge_directed": exactly the From -> To orientation
	//   - "trace_contains": an event matching the set fields exists
	//   - "trace_count": exactly Count events match the set fields
	Type string `yaml:"type"`

	// U, V name the node pair (edge_absent, edge_undirected).
	U string `yaml:"u,omitempty"`
	V string `yaml:"v,omitempty"`

	// From, To name the orientation (edge_directed).
	From string `yaml:"from,omitempty"`
	To   string `yaml:"to,omitempty"`

	// Step, Action, X, Y filter trace events (trace_contains, trace_count).
	// Empty fields match anything.
	Step   string `yaml:"step,omitempty"`
	Action string `yaml:"action,omitempty"`
	X      string `yaml:"x,omitempty"`
	Y      string `yaml:"y,omitempty"`

	// Count is the expected number of matches (trace_count).
	Count int `yaml:"count,omitempty"`
}

// AssertionError is returned when an assertion fails. It carries the full
// trace so a failing scenario is debuggable from the error text alone.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "\nfull trace:\n")
	for i, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s: %s %s %s\n", i+1, event.Step, event.Action, event.X, event.Y)
	}
	return buf.String()
}

func (a Assertion) validate() error {
	switch a.Type {
	case AssertEdgeAbsent, AssertEdgeUndirected:
		if a.U == "" || a.V == "" {
			return fmt.Errorf("%s requires u and v", a.Type)
		}
	case AssertEdgeDirected:
		if a.From == "" || a.To == "" {
			return fmt.Errorf("%s requires from and to", a.Type)
		}
	case AssertTraceContains:
		if a.Step == "" && a.Action == "" && a.X == "" && a.Y == "" {
			return fmt.Errorf("%s requires at least one of step, action, x, y", a.Type)
		}
	case AssertTraceCount:
		if a.Count < 0 {
			return fmt.Errorf("%s requires a non-negative count", a.Type)
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func (a Assertion) check(g *graph.Graph, trace []TraceEvent) error {
	switch a.Type {
	case AssertEdgeAbsent:
		if g.EdgeExists(a.U, a.V) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("no edge between %s and %s", a.U, a.V),
				Actual:   describeEdge(g, a.U, a.V),
				Trace:    trace,
			}
		}
	case AssertEdgeUndirected:
		if !g.UndirectedEdgeExists(a.U, a.V) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("undirected edge %s -- %s", a.U, a.V),
				Actual:   describeEdge(g, a.U, a.V),
				Trace:    trace,
			}
		}
	case AssertEdgeDirected:
		if !g.OnlyDirectedEdgeExists(a.From, a.To) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("directed edge %s -> %s", a.From, a.To),
				Actual:   describeEdge(g, a.From, a.To),
				Trace:    trace,
			}
		}
	case AssertTraceContains:
		if a.countMatches(trace) == 0 {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("an event matching %s", a.describeFilter()),
				Actual:   "no matching event",
				Trace:    trace,
			}
		}
	case AssertTraceCount:
		if got := a.countMatches(trace); got != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d event(s) matching %s", a.Count, a.describeFilter()),
				Actual:   fmt.Sprintf("%d event(s)", got),
				Trace:    trace,
			}
		}
	}
	return nil
}

func (a Assertion) countMatches(trace []TraceEvent) int {
	count := 0
	for _, event := range trace {
		if a.Step != "" && event.Step != a.Step {
			continue
		}
		if a.Action != "" && event.Action != a.Action {
			continue
		}
		if a.X != "" && event.X != a.X {
			continue
		}
		if a.Y != "" && event.Y != a.Y {
			continue
		}
		count++
	}
	return count
}

func (a Assertion) describeFilter() string {
	var parts []string
	if a.Step != "" {
		parts = append(parts, "step="+a.Step)
	}
	if a.Action != "" {
		parts = append(parts, "action="+a.Action)
	}
	if a.X != "" {
		parts = append(parts, "x="+a.X)
	}
	if a.Y != "" {
		parts = append(parts, "y="+a.Y)
	}
	if len(parts) == 0 {
		return "(any event)"
	}
	return strings.Join(parts, " ")
}

func describeEdge(g *graph.Graph, u, v string) string {
	switch {
	case g.UndirectedEdgeExists(u, v):
		return fmt.Sprintf("undirected edge %s -- %s", u, v)
	case g.OnlyDirectedEdgeExists(u, v):
		return fmt.Sprintf("directed edge %s -> %s", u, v)
	case g.OnlyDirectedEdgeExists(v, u):
		return fmt.Sprintf("directed edge %s -> %s", v, u)
	default:
		return fmt.Sprintf("no edge between %s and %s", u, v)
	}
}
