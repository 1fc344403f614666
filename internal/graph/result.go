package graph

// Action is the fixed vocabulary of graph mutations a test step may request.
type Action string

const (
	// ActionRemoveEdgeUndirected removes both directed entries of an edge.
	// Precondition at apply time: both directions still exist.
	ActionRemoveEdgeUndirected Action = "REMOVE_EDGE_UNDIRECTED"

	// ActionRemoveEdgeDirected removes only the X→Y entry, orienting the
	// edge. Precondition at apply time: the X→Y entry still exists.
	ActionRemoveEdgeDirected Action = "REMOVE_EDGE_DIRECTED"

	// ActionUpdateEdge replaces the payload of both directions.
	// Precondition at apply time: the edge still exists in some direction.
	ActionUpdateEdge Action = "UPDATE_EDGE"

	// ActionUpdateEdgeDirected replaces the payload of the X→Y entry only.
	// Precondition at apply time: the X→Y entry still exists.
	ActionUpdateEdgeDirected Action = "UPDATE_EDGE_DIRECTED"

	// ActionDoNothing records that the test ran and concluded nothing.
	// Never applied, never recorded in history.
	ActionDoNothing Action = "DO_NOTHING"
)

// Directed reports whether the action targets a single directed entry.
// Symmetric actions append history for both directions on apply; directed
// actions only for X→Y.
func (a Action) Directed() bool {
	return a == ActionRemoveEdgeDirected || a == ActionUpdateEdgeDirected
}

// TestResult is the outcome of one test invocation for one candidate tuple.
//
// X and Y name the two focal nodes. Both are empty for results that carry no
// actionable conclusion. Data is an optional payload, e.g. the separating
// set that disconnected X and Y: {"separatedBy": [...]}.
type TestResult struct {
	X      string  `json:"x,omitempty"`
	Y      string  `json:"y,omitempty"`
	Action Action  `json:"action"`
	Data   Payload `json:"data,omitempty"`
}

// NoOp is a convenience constructor for a do-nothing result on a pair.
// Test steps return it when a prerequisite payload is not yet computed.
func NoOp(x, y string) *TestResult {
	return &TestResult{X: x, Y: y, Action: ActionDoNothing}
}

// ActionHistoryEntry records one pipeline step execution: the step's display
// name and the flattened list of actions that were actually applied after
// precondition validation. This is the experiment-reproducibility record.
type ActionHistoryEntry struct {
	Step    string        `json:"step"`
	Actions []*TestResult `json:"actions"`
}
