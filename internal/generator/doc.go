// Package generator produces the candidate node tuples a test step runs
// over, without ever materializing the full combinatorial space.
//
// Generators yield candidates lazily via iter.Seq. A generator may
// additionally implement ChunkedGenerator to group tuples that share a seed
// pair into one batch, amortizing per-dispatch overhead when the engine
// fans candidates out to a worker pool.
package generator
