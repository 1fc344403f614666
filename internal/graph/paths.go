package graph

// DirectedPathExists reports whether a directed path from u to v exists.
// Depth-first over directed adjacency with a visited set, so cyclic graphs
// terminate.
func (g *Graph) DirectedPathExists(u, v string) bool {
	if _, ok := g.nodes[u]; !ok {
		return false
	}
	if _, ok := g.nodes[v]; !ok {
		return false
	}
	visited := map[string]bool{}
	var dfs func(cur string) bool
	dfs = func(cur string) bool {
		if g.DirectedEdgeExists(cur, v) {
			return true
		}
		visited[cur] = true
		for next := range g.edges[cur] {
			if !visited[next] && dfs(next) {
				return true
			}
		}
		return false
	}
	return dfs(u)
}

// DirectedPaths returns every simple directed path from u to v as a sequence
// of directed pairs. Order of paths follows sorted adjacency, so the result
// is deterministic.
func (g *Graph) DirectedPaths(u, v string) [][]Pair {
	if _, ok := g.nodes[u]; !ok {
		return nil
	}
	if _, ok := g.nodes[v]; !ok {
		return nil
	}
	var paths [][]Pair
	onPath := map[string]bool{u: true}
	var dfs func(cur string, trail []Pair)
	dfs = func(cur string, trail []Pair) {
		for _, next := range g.Neighbours(cur) {
			if !g.DirectedEdgeExists(cur, next) || onPath[next] {
				continue
			}
			step := append(append([]Pair{}, trail...), Pair{cur, next})
			if next == v {
				paths = append(paths, step)
				continue
			}
			onPath[next] = true
			dfs(next, step)
			delete(onPath, next)
		}
	}
	dfs(u, nil)
	return paths
}

// InducingPathExists reports whether an inducing path from u to v exists: a
// directed path on which every interior leg is a bidirected edge, i.e. every
// mediator is a collider. True when at least one qualifying path exists.
func (g *Graph) InducingPathExists(u, v string) bool {
	if !g.DirectedPathExists(u, v) {
		return false
	}
	for _, path := range g.DirectedPaths(u, v) {
		qualifies := true
		for i := 1; i < len(path)-1; i++ {
			if !g.BidirectedEdgeExists(path[i].U, path[i].V) {
				qualifies = false
				break
			}
		}
		if qualifies {
			return true
		}
	}
	return false
}
