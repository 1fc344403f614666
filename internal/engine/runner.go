package engine

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"runtime"
	"slices"
	"sort"
	"sync"

	"github.com/roach88/sepset/internal/generator"
	"github.com/roach88/sepset/internal/graph"
	"github.com/roach88/sepset/internal/pipeline"
)

// Recorder persists applied actions as they are committed. Implemented by
// store.Run; a nil Recorder disables persistence.
type Recorder interface {
	RecordAction(step string, seq int64, result *graph.TestResult) error
}

// Runner executes pipeline steps against one graph.
//
// Thread-safety model:
//   - ExecuteAll / ExecuteStep / ApplyResults: coordinator goroutine only
//   - the worker pool runs test functions over immutable snapshots
//
// All graph mutation happens in the coordinator goroutine.
type Runner struct {
	graph *graph.Graph
	clock *Clock
	pool  *workerPool

	workers      int
	orderedApply bool
	recorder     Recorder
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets the worker-pool size. Default is 2 × GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithOrderedApply makes parallel steps apply results in candidate
// generation order instead of worker-completion order. Slightly slower,
// but runs become reproducible when two candidates' actions are
// order-sensitive. Sequential steps always apply in generation order.
func WithOrderedApply(on bool) Option {
	return func(r *Runner) { r.orderedApply = on }
}

// WithRecorder attaches a provenance recorder. Recorder failures are logged
// and never abort a run.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// New creates a Runner for the given graph and starts its worker pool.
// Callers must Close the Runner when the algorithm run is over.
func New(g *graph.Graph, opts ...Option) *Runner {
	r := &Runner{
		graph:   g,
		clock:   NewClock(),
		workers: runtime.GOMAXPROCS(0) * 2,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.pool = newWorkerPool(r.workers)
	return r
}

// Close tears down the worker pool.
func (r *Runner) Close() {
	r.pool.close()
}

// Graph implements pipeline.Runner.
func (r *Runner) Graph() *graph.Graph { return r.graph }

// Clock returns the action sequence clock.
func (r *Runner) Clock() *Clock { return r.clock }

// ExecuteAll runs every step of a pipeline in order.
func (r *Runner) ExecuteAll(ctx context.Context, steps []pipeline.Step) error {
	for _, step := range steps {
		if _, err := r.ExecuteStep(ctx, step); err != nil {
			return fmt.Errorf("step %s: %w", step.Name(), err)
		}
	}
	return nil
}

// ExecuteStep runs one step through the full cycle and returns the applied
// actions. Branches once on the step kind: test steps run the dispatch →
// normalize → apply → record machine, logic steps orchestrate themselves.
func (r *Runner) ExecuteStep(ctx context.Context, step pipeline.Step) ([]*graph.TestResult, error) {
	slog.Info("executing pipeline step", "step", step.Name())
	switch s := step.(type) {
	case pipeline.TestStep:
		results, err := r.CollectStep(ctx, s)
		if err != nil {
			return nil, err
		}
		return r.ApplyResults(s.Name(), results)
	case pipeline.LogicStep:
		if err := s.Execute(ctx, r.graph, r); err != nil {
			return nil, err
		}
		// Logic steps record through their children; they report no
		// actions of their own.
		return nil, nil
	default:
		return nil, fmt.Errorf("step %s is neither a test step nor a logic step", step.Name())
	}
}

// CollectStep runs the generation and test phases of a test step without
// committing anything. Parallel steps fan batches out to the worker pool
// over an immutable snapshot; sequential steps evaluate inline in generator
// order. Either way the graph is not mutated until ApplyResults.
func (r *Runner) CollectStep(ctx context.Context, step pipeline.TestStep) ([]*graph.TestResult, error) {
	if !step.Parallel() {
		return r.collectSequential(ctx, step)
	}
	return r.collectParallel(ctx, step)
}

func (r *Runner) collectSequential(ctx context.Context, step pipeline.TestStep) ([]*graph.TestResult, error) {
	var results []*graph.TestResult
	for candidate := range step.Generator().Generate(r.graph) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, normalize(step.Test(candidate, r.graph))...)
	}
	return results, nil
}

type batchOutcome struct {
	seq     int
	results []*graph.TestResult
}

func (r *Runner) collectParallel(ctx context.Context, step pipeline.TestStep) ([]*graph.TestResult, error) {
	snapshot := r.graph.Snapshot()
	outcomes := make(chan batchOutcome)

	// Feeder: stream batches into the pool. Collector below drains until
	// every submitted batch has reported, so the test phase is fully over
	// before apply starts.
	go func() {
		var wg sync.WaitGroup
		seq := 0
		for batch := range r.batches(step, snapshot) {
			if ctx.Err() != nil {
				break
			}
			b, s := batch, seq
			seq++
			wg.Add(1)
			r.pool.submit(func() {
				defer wg.Done()
				var out []*graph.TestResult
				for _, candidate := range b {
					out = append(out, normalize(step.Test(candidate, snapshot))...)
				}
				outcomes <- batchOutcome{seq: s, results: out}
			})
		}
		wg.Wait()
		close(outcomes)
	}()

	var collected []batchOutcome
	for outcome := range outcomes {
		collected = append(collected, outcome)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.orderedApply {
		sort.Slice(collected, func(i, j int) bool { return collected[i].seq < collected[j].seq })
	}
	var results []*graph.TestResult
	for _, outcome := range collected {
		results = append(results, outcome.results...)
	}
	return results, nil
}

// batches yields the dispatch units for a parallel step: the generator's
// own chunks when it batches (tuples sharing a seed pair), otherwise
// candidates grouped into ChunkSize batches.
func (r *Runner) batches(step pipeline.TestStep, g *graph.Graph) iter.Seq[[]generator.Candidate] {
	gen := step.Generator()
	if cg, ok := gen.(generator.ChunkedGenerator); ok {
		return cg.GenerateChunks(g)
	}
	size := step.ChunkSize()
	return func(yield func([]generator.Candidate) bool) {
		batch := make([]generator.Candidate, 0, size)
		for candidate := range gen.Generate(g) {
			batch = append(batch, candidate)
			if len(batch) == size {
				if !yield(batch) {
					return
				}
				batch = make([]generator.Candidate, 0, size)
			}
		}
		if len(batch) > 0 {
			yield(batch)
		}
	}
}

// normalize flattens a test outcome into actionable results: nil outcomes
// and nil entries disappear.
func normalize(results []*graph.TestResult) []*graph.TestResult {
	return slices.DeleteFunc(slices.Clone(results), func(r *graph.TestResult) bool {
		return r == nil
	})
}
