package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/sepset/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <u> <v>",
		Short: "Show the provenance trail of one node pair",
		Long: `Show every persisted action that touched the edge between two nodes.

Without --run the most recent run in the database is traced. Actions on
undirected edges are indexed under both node orderings, so the argument
order does not matter for them.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return traceEdge(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite provenance database (required)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to trace (default latest)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// EdgeTraceReport is the trace command's output payload.
type EdgeTraceReport struct {
	Run     store.Run            `json:"run"`
	U       string               `json:"u"`
	V       string               `json:"v"`
	Actions []store.ActionRecord `json:"actions"`
}

func traceEdge(opts *TraceOptions, u, v string, cmd *cobra.Command) error {
	ctx := cmd.Context()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	run, err := resolveRun(ctx, st, opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to resolve run", err)
	}

	actions, err := st.EdgeTrace(ctx, run.ID, u, v)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read edge trace", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	report := EdgeTraceReport{Run: run, U: u, V: v, Actions: actions}
	if opts.Format == "json" {
		return formatter.Success(report)
	}
	return formatter.Success(renderTraceText(report))
}

func resolveRun(ctx context.Context, st *store.Store, runID string) (store.Run, error) {
	if runID == "" {
		return st.LatestRun(ctx)
	}
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return store.Run{}, err
	}
	for _, r := range runs {
		if r.ID == runID {
			return r, nil
		}
	}
	return store.Run{}, fmt.Errorf("run %q not found", runID)
}

func renderTraceText(report EdgeTraceReport) string {
	var b strings.Builder
	started := time.UnixMilli(report.Run.StartedAt).UTC().Format(time.RFC3339)
	fmt.Fprintf(&b, "Run %s (%s, started %s)\n", report.Run.ID, report.Run.Algorithm, started)
	fmt.Fprintf(&b, "Edge %s / %s:\n", report.U, report.V)
	if len(report.Actions) == 0 {
		fmt.Fprint(&b, "  (no recorded actions)")
		return b.String()
	}
	for _, a := range report.Actions {
		fmt.Fprintf(&b, "  #%d %s: %s %s %s", a.Seq, a.Step, a.Action, a.X, a.Y)
		if len(a.Data) > 0 {
			if data, err := json.Marshal(a.Data); err == nil {
				fmt.Fprintf(&b, " %s", data)
			}
		}
		fmt.Fprintln(&b)
	}
	fmt.Fprintf(&b, "%d action(s)", len(report.Actions))
	return b.String()
}
