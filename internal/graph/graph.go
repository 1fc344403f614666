package graph

import (
	"log/slog"
	"maps"
	"slices"
)

// Node is a variable of the dataset: a unique name and its ordered
// observations. Nodes are immutable once created.
type Node struct {
	Name   string
	Values []float64
}

// Payload is the arbitrary data attached to a directed edge entry, e.g. a
// computed correlation or a separating set.
type Payload map[string]any

// Pair is an ordered node-name pair, the key of the edge history.
type Pair struct {
	U string
	V string
}

// Graph is the mutable graph store.
//
// Adjacency is double-entry: an undirected edge between u and v is the
// presence of both edges[u][v] and edges[v][u]. AddEdge and UpdateEdge keep
// both directions pointing at the same payload map, so the payloads of an
// unoriented edge are identical by construction.
type Graph struct {
	nodes map[string]*Node
	order []string // node names in insertion order
	edges map[string]map[string]Payload

	edgeHistory   map[Pair][]*TestResult
	actionHistory []ActionHistoryEntry
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:       make(map[string]*Node),
		edges:       make(map[string]map[string]Payload),
		edgeHistory: make(map[Pair][]*TestResult),
	}
}

// AddNode adds a node to the graph. Adding a name that already exists
// replaces its values but keeps its position in the enumeration order.
func (g *Graph) AddNode(name string, values []float64) *Node {
	n := &Node{Name: name, Values: values}
	if _, ok := g.nodes[name]; !ok {
		g.order = append(g.order, name)
	}
	g.nodes[name] = n
	return n
}

// Node returns the node with the given name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// NodeNames returns all node names in insertion order. The returned slice
// is a copy.
func (g *Graph) NodeNames() []string {
	return slices.Clone(g.order)
}

// AddEdge creates an undirected edge between u and v: both directed entries
// are created and share the given payload map. Edge history for both
// directions is initialized if this pair has never been seen; history from a
// previously removed edge is preserved (the trail is append-only).
func (g *Graph) AddEdge(u, v string, payload Payload) error {
	if _, ok := g.nodes[u]; !ok {
		return nodeNotFound("AddEdge", u)
	}
	if _, ok := g.nodes[v]; !ok {
		return nodeNotFound("AddEdge", v)
	}
	if payload == nil {
		payload = Payload{}
	}
	g.adjacency(u)[v] = payload
	g.adjacency(v)[u] = payload

	if _, ok := g.edgeHistory[Pair{u, v}]; !ok {
		g.edgeHistory[Pair{u, v}] = nil
	}
	if _, ok := g.edgeHistory[Pair{v, u}]; !ok {
		g.edgeHistory[Pair{v, u}] = nil
	}
	return nil
}

// RemoveEdge deletes both directed entries between u and v. Removing an edge
// that does not exist is a logged no-op, not an error: a racing or earlier
// step may already have removed it.
func (g *Graph) RemoveEdge(u, v string) error {
	if _, ok := g.nodes[u]; !ok {
		return nodeNotFound("RemoveEdge", u)
	}
	if _, ok := g.nodes[v]; !ok {
		return nodeNotFound("RemoveEdge", v)
	}
	if !g.DirectedEdgeExists(u, v) && !g.DirectedEdgeExists(v, u) {
		slog.Debug("remove edge: edge absent", "u", u, "v", v)
		return nil
	}
	delete(g.adjacency(u), v)
	delete(g.adjacency(v), u)
	return nil
}

// RemoveDirectedEdge deletes only the u→v entry. Removing an absent entry is
// a logged no-op.
func (g *Graph) RemoveDirectedEdge(u, v string) error {
	if _, ok := g.nodes[u]; !ok {
		return nodeNotFound("RemoveDirectedEdge", u)
	}
	if _, ok := g.nodes[v]; !ok {
		return nodeNotFound("RemoveDirectedEdge", v)
	}
	if !g.DirectedEdgeExists(u, v) {
		slog.Debug("remove directed edge: edge absent", "u", u, "v", v)
		return nil
	}
	delete(g.adjacency(u), v)
	return nil
}

// UpdateEdge replaces the payload of the edge between u and v, in both
// directions. The edge must already exist.
func (g *Graph) UpdateEdge(u, v string, payload Payload) error {
	if _, ok := g.nodes[u]; !ok {
		return nodeNotFound("UpdateEdge", u)
	}
	if _, ok := g.nodes[v]; !ok {
		return nodeNotFound("UpdateEdge", v)
	}
	if !g.EdgeExists(u, v) {
		return edgeNotFound("UpdateEdge", u, v)
	}
	if payload == nil {
		payload = Payload{}
	}
	g.adjacency(u)[v] = payload
	g.adjacency(v)[u] = payload
	return nil
}

// UpdateDirectedEdge replaces the payload of the u→v entry only. The entry
// must already exist.
func (g *Graph) UpdateDirectedEdge(u, v string, payload Payload) error {
	if _, ok := g.nodes[u]; !ok {
		return nodeNotFound("UpdateDirectedEdge", u)
	}
	if _, ok := g.nodes[v]; !ok {
		return nodeNotFound("UpdateDirectedEdge", v)
	}
	if !g.DirectedEdgeExists(u, v) {
		return edgeNotFound("UpdateDirectedEdge", u, v)
	}
	if payload == nil {
		payload = Payload{}
	}
	g.adjacency(u)[v] = payload
	return nil
}

// EdgeExists reports whether any edge exists between u and v.
// Covers u→v, u↔v and u←v.
func (g *Graph) EdgeExists(u, v string) bool {
	return g.DirectedEdgeExists(u, v) || g.DirectedEdgeExists(v, u)
}

// DirectedEdgeExists reports whether the u→v entry exists.
// Covers u→v and u↔v.
func (g *Graph) DirectedEdgeExists(u, v string) bool {
	if _, ok := g.nodes[u]; !ok {
		return false
	}
	if _, ok := g.nodes[v]; !ok {
		return false
	}
	adj, ok := g.edges[u]
	if !ok {
		return false
	}
	_, ok = adj[v]
	return ok
}

// OnlyDirectedEdgeExists reports whether exactly the u→v entry exists and
// the reverse does not: the edge has been oriented u→v.
func (g *Graph) OnlyDirectedEdgeExists(u, v string) bool {
	return g.DirectedEdgeExists(u, v) && !g.DirectedEdgeExists(v, u)
}

// UndirectedEdgeExists reports whether both directed entries exist. In the
// PC family this reads as "the edge could not (yet) be oriented".
func (g *Graph) UndirectedEdgeExists(u, v string) bool {
	return g.DirectedEdgeExists(u, v) && g.DirectedEdgeExists(v, u)
}

// BidirectedEdgeExists reports whether both directed entries exist. Same
// structure as UndirectedEdgeExists, but FCI-style callers read it as "u and
// v share a common cause". Kept separate so call sites document their
// interpretation.
func (g *Graph) BidirectedEdgeExists(u, v string) bool {
	return g.DirectedEdgeExists(u, v) && g.DirectedEdgeExists(v, u)
}

// EdgeValue returns the current payload of the u→v entry.
func (g *Graph) EdgeValue(u, v string) (Payload, error) {
	if !g.DirectedEdgeExists(u, v) {
		return nil, edgeNotFound("EdgeValue", u, v)
	}
	return g.edges[u][v], nil
}

// Neighbours returns the adjacency targets of u in sorted order. Sorted so
// candidate enumeration is deterministic regardless of map iteration order.
func (g *Graph) Neighbours(u string) []string {
	adj, ok := g.edges[u]
	if !ok {
		return nil
	}
	names := slices.Collect(maps.Keys(adj))
	slices.Sort(names)
	return names
}

// EdgeHistory returns the append-only history of the ordered pair (u, v).
func (g *Graph) EdgeHistory(u, v string) []*TestResult {
	return g.edgeHistory[Pair{u, v}]
}

// EdgeHistoryByAction returns the history entries of (u, v) whose action
// matches. Orientation rules use this to retrieve e.g. the separating sets
// recorded by earlier pruning steps.
func (g *Graph) EdgeHistoryByAction(u, v string, action Action) []*TestResult {
	var out []*TestResult
	for _, r := range g.edgeHistory[Pair{u, v}] {
		if r.Action == action {
			out = append(out, r)
		}
	}
	return out
}

// AppendEdgeHistory appends a result to the history of the ordered pair
// (u, v). History entries are never removed.
func (g *Graph) AppendEdgeHistory(u, v string, result *TestResult) {
	p := Pair{u, v}
	g.edgeHistory[p] = append(g.edgeHistory[p], result)
}

// ActionHistory returns the ordered per-step action trail.
func (g *Graph) ActionHistory() []ActionHistoryEntry {
	return g.actionHistory
}

// AppendActionHistory appends one per-step record to the action trail.
func (g *Graph) AppendActionHistory(entry ActionHistoryEntry) {
	g.actionHistory = append(g.actionHistory, entry)
}

// EdgePairs returns every directed pair (u, v) that currently has an entry,
// in sorted order. Used by the result boundary to export the final
// adjacency structure.
func (g *Graph) EdgePairs() []Pair {
	var pairs []Pair
	for u, adj := range g.edges {
		for v := range adj {
			pairs = append(pairs, Pair{u, v})
		}
	}
	sortPairs(pairs)
	return pairs
}

func sortPairs(pairs []Pair) {
	slices.SortFunc(pairs, func(a, b Pair) int {
		if a.U != b.U {
			if a.U < b.U {
				return -1
			}
			return 1
		}
		if a.V < b.V {
			return -1
		}
		if a.V > b.V {
			return 1
		}
		return 0
	})
}

// HistoryPairs returns every directed pair that has edge history, in sorted
// order. Includes pairs whose edge has since been removed — those are the
// ones "why was this edge removed" queries care about.
func (g *Graph) HistoryPairs() []Pair {
	var pairs []Pair
	for p, hist := range g.edgeHistory {
		if len(hist) > 0 {
			pairs = append(pairs, p)
		}
	}
	sortPairs(pairs)
	return pairs
}

// Snapshot returns a deep copy of the graph for read-only use by parallel
// test workers. Node values are shared (immutable); adjacency maps, payloads
// and history slices are copied so no mutation of the live graph is visible
// to workers mid-step.
func (g *Graph) Snapshot() *Graph {
	s := &Graph{
		nodes:       maps.Clone(g.nodes),
		order:       slices.Clone(g.order),
		edges:       make(map[string]map[string]Payload, len(g.edges)),
		edgeHistory: make(map[Pair][]*TestResult, len(g.edgeHistory)),
	}
	// Snapshots are read-only, so the payload aliasing between the two
	// directions of an undirected edge does not need to survive the copy.
	for u, adj := range g.edges {
		s.edges[u] = make(map[string]Payload, len(adj))
		for v, payload := range adj {
			s.edges[u][v] = maps.Clone(payload)
		}
	}
	for p, hist := range g.edgeHistory {
		s.edgeHistory[p] = slices.Clone(hist)
	}
	s.actionHistory = slices.Clone(g.actionHistory)
	return s
}

// adjacency returns the (lazily created) adjacency map of u.
func (g *Graph) adjacency(u string) map[string]Payload {
	adj, ok := g.edges[u]
	if !ok {
		adj = make(map[string]Payload)
		g.edges[u] = adj
	}
	return adj
}
