// Package engine executes causal-discovery pipelines against the graph
// store.
//
// The Runner drives a strict per-step state machine:
//
//	dispatch → normalize → apply → record
//
// Dispatch streams candidates from the step's generator into a fixed-size
// worker pool (parallel steps) or evaluates them inline (sequential steps).
// Workers only ever see an immutable snapshot of the graph. Apply is always
// single-threaded in the coordinating goroutine and starts only after the
// step's generation and test phases have fully drained, so the graph store
// is read-only while tests run and exclusively, serially mutated during
// apply.
//
// Precondition misses during apply — an action whose target edge state no
// longer matches because an earlier action in the same batch got there
// first — are expected under combinatorial enumeration. They are skipped
// and logged, never surfaced as failures.
//
// The worker pool is owned by the Runner: created on construction, disposed
// by Close. It is never a hidden process-wide singleton.
package engine
