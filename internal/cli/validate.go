package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sepset/internal/registry"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <pipeline-dir>",
		Short: "Validate CUE pipeline definitions",
		Long: `Validate a directory of CUE pipeline definitions without running them.

Every declared pipeline is loaded and assembled against the built-in step
registry, so unknown step ids, bad generator nesting and malformed loop
or batch blocks are reported before a run is attempted.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validatePipelines(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

// ValidationReport is the validate command's output payload.
type ValidationReport struct {
	Directory string             `json:"directory"`
	Pipelines []PipelineValidity `json:"pipelines"`
	Valid     bool               `json:"valid"`
}

// PipelineValidity is the assembly outcome of one declared pipeline.
type PipelineValidity struct {
	Name  string `json:"name"`
	Steps int    `json:"steps"`
	Error string `json:"error,omitempty"`
}

func validatePipelines(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	defs, err := LoadPipelines(dir)
	if err != nil {
		code := ErrCodeGeneric
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			code = loadErr.Code
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load pipelines", err)
	}

	reg := registry.Default()
	report := ValidationReport{Directory: dir, Valid: true}
	for _, def := range defs {
		entry := PipelineValidity{Name: def.Name, Steps: len(def.Steps)}
		if _, err := Assemble(reg, def); err != nil {
			entry.Error = err.Error()
			report.Valid = false
		}
		report.Pipelines = append(report.Pipelines, entry)
	}

	if opts.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		if err := formatter.Success(renderValidationText(report)); err != nil {
			return err
		}
	}
	if !report.Valid {
		return NewExitError(ExitFailure, "one or more pipelines failed validation")
	}
	return nil
}

func renderValidationText(report ValidationReport) string {
	var b strings.Builder
	for _, p := range report.Pipelines {
		if p.Error == "" {
			fmt.Fprintf(&b, "ok   %s (%d steps)\n", p.Name, p.Steps)
		} else {
			fmt.Fprintf(&b, "FAIL %s: %s\n", p.Name, p.Error)
		}
	}
	fmt.Fprintf(&b, "%d pipeline(s) checked", len(report.Pipelines))
	return b.String()
}
