package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sepset/internal/algorithms"
	"github.com/roach88/sepset/internal/registry"
)

// NewAlgorithmsCommand creates the algorithms command.
func NewAlgorithmsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "algorithms",
		Short: "List built-in algorithms and registered step ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listAlgorithms(rootOpts, cmd)
		},
	}
	return cmd
}

// AlgorithmCatalog lists everything a pipeline definition can reference.
type AlgorithmCatalog struct {
	Algorithms []string `json:"algorithms"`
	Steps      []string `json:"steps"`
	Generators []string `json:"generators"`
	Exits      []string `json:"exits"`
}

func listAlgorithms(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	reg := registry.Default()
	catalog := AlgorithmCatalog{
		Algorithms: algorithms.Names(),
		Steps:      reg.Steps(),
		Generators: reg.Generators(),
		Exits:      reg.Exits(),
	}

	if opts.Format == "json" {
		return formatter.Success(catalog)
	}
	return formatter.Success(renderCatalogText(catalog))
}

func renderCatalogText(catalog AlgorithmCatalog) string {
	var b strings.Builder
	section := func(title string, items []string) {
		fmt.Fprintf(&b, "%s:\n", title)
		for _, item := range items {
			fmt.Fprintf(&b, "  %s\n", item)
		}
	}
	section("Algorithms", catalog.Algorithms)
	section("Steps", catalog.Steps)
	section("Generators", catalog.Generators)
	section("Exits", catalog.Exits)
	return strings.TrimRight(b.String(), "\n")
}
