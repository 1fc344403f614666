package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/sepset/internal/algorithms"
	"github.com/roach88/sepset/internal/dataset"
	"github.com/roach88/sepset/internal/engine"
	"github.com/roach88/sepset/internal/graph"
	"github.com/roach88/sepset/internal/pipeline"
	"github.com/roach88/sepset/internal/registry"
	"github.com/roach88/sepset/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Algorithm    string
	PipelineDir  string
	PipelineName string
	Workers      int
	Database     string
	Ordered      bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <dataset>",
		Short: "Run a discovery pipeline over a dataset",
		Long: `Run a causal-discovery pipeline over an observational dataset.

The dataset is a JSON or YAML list of observation rows. The pipeline is
either a built-in algorithm (--algorithm) or a custom CUE definition
(--pipeline). With --db, every applied action is persisted for later
tracing.

Example:
  sepset run --algorithm PC data.json
  sepset run --pipeline ./pipelines --db runs.db data.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Algorithm, "algorithm", "PC", "built-in algorithm to run")
	cmd.Flags().StringVar(&opts.PipelineDir, "pipeline", "", "directory with CUE pipeline definitions (overrides --algorithm)")
	cmd.Flags().StringVar(&opts.PipelineName, "pipeline-name", "", "pipeline to pick when the directory declares several")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "worker pool size (default 2 × GOMAXPROCS)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite provenance database")
	cmd.Flags().BoolVar(&opts.Ordered, "ordered", false, "apply parallel results in generation order")

	return cmd
}

func runPipeline(opts *RunOptions, datasetPath string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	ds, err := dataset.Load(datasetPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load dataset", err)
	}
	slog.Info("dataset loaded", "variables", len(ds.Names()), "samples", ds.SampleSize())

	name, steps, err := resolvePipeline(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to assemble pipeline", err)
	}
	slog.Info("pipeline assembled", "pipeline", name, "steps", len(steps))

	g, err := ds.Graph()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build graph", err)
	}

	engineOpts := []engine.Option{engine.WithOrderedApply(opts.Ordered)}
	if opts.Workers > 0 {
		engineOpts = append(engineOpts, engine.WithWorkers(opts.Workers))
	}

	var rec *store.RunRecorder
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		rec, err = st.BeginRun(cmd.Context(), name)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to begin run", err)
		}
		engineOpts = append(engineOpts, engine.WithRecorder(rec))
		slog.Info("run registered", "id", rec.ID())
	}

	runner := engine.New(g, engineOpts...)
	defer runner.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if err := runner.ExecuteAll(ctx, steps); err != nil {
		return WrapExitError(ExitFailure, "pipeline failed", err)
	}
	if rec != nil {
		if err := rec.Finish(context.Background()); err != nil {
			slog.Error("error finishing run", "error", err)
		}
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	result := runner.Result()
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(renderRunText(g, result, rec))
}

// resolvePipeline picks the step list: a CUE directory when given,
// otherwise a built-in algorithm.
func resolvePipeline(opts *RunOptions) (string, []pipeline.Step, error) {
	if opts.PipelineDir == "" {
		steps, err := algorithms.Build(opts.Algorithm)
		return opts.Algorithm, steps, err
	}

	defs, err := LoadPipelines(opts.PipelineDir)
	if err != nil {
		return "", nil, err
	}
	def, err := pickPipeline(defs, opts.PipelineName)
	if err != nil {
		return "", nil, err
	}
	steps, err := Assemble(registry.Default(), def)
	return def.Name, steps, err
}

func pickPipeline(defs []PipelineDef, name string) (PipelineDef, error) {
	if name == "" {
		if len(defs) > 1 {
			names := make([]string, len(defs))
			for i, d := range defs {
				names[i] = d.Name
			}
			return PipelineDef{}, fmt.Errorf("directory declares %d pipelines %v, pick one with --pipeline-name", len(defs), names)
		}
		return defs[0], nil
	}
	for _, d := range defs {
		if d.Name == name {
			return d, nil
		}
	}
	return PipelineDef{}, fmt.Errorf("pipeline %q not declared in directory", name)
}

// renderRunText summarizes a finished run for terminal output.
func renderRunText(g *graph.Graph, result *engine.RunResult, rec *store.RunRecorder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nodes: %s\n", strings.Join(result.Nodes, ", "))

	fmt.Fprintln(&b, "Edges:")
	edges := 0
	for i, u := range result.Nodes {
		for _, v := range result.Nodes[i+1:] {
			switch {
			case g.UndirectedEdgeExists(u, v):
				fmt.Fprintf(&b, "  %s -- %s\n", u, v)
			case g.OnlyDirectedEdgeExists(u, v):
				fmt.Fprintf(&b, "  %s -> %s\n", u, v)
			case g.OnlyDirectedEdgeExists(v, u):
				fmt.Fprintf(&b, "  %s -> %s\n", v, u)
			default:
				continue
			}
			edges++
		}
	}
	if edges == 0 {
		fmt.Fprintln(&b, "  (none)")
	}

	applied := 0
	for _, entry := range result.ActionHistory {
		applied += len(entry.Actions)
	}
	fmt.Fprintf(&b, "Steps executed: %d, actions applied: %d", len(result.ActionHistory), applied)
	if rec != nil {
		fmt.Fprintf(&b, "\nRun id: %s", rec.ID())
	}
	return b.String()
}

func configureLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

// signalContext derives a context cancelled by SIGINT/SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
