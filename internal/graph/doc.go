// Package graph implements the mutable graph store that causal-discovery
// pipelines operate on.
//
// Edges are stored as two independent directed adjacency entries. Both
// directions present means the edge is still undirected (not yet oriented);
// exactly one direction present means the edge has been oriented.
//
// The store also keeps two provenance trails:
//   - edge history: per ordered pair, every TestResult that touched it
//   - action history: per executed pipeline step, the actions actually applied
//
// Both trails are append-only for the lifetime of the graph. They are what
// later orientation steps and the trace command query to answer "why was
// this edge removed".
//
// The store is NOT safe for concurrent mutation. The execution engine
// guarantees that all mutation happens in a single apply phase; parallel
// test workers only ever see an immutable Snapshot.
package graph
