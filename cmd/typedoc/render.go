package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"typedoc/internal/annotation"
	"typedoc/internal/markup"
	"typedoc/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render [flags] expression",
	Short: "Render one annotation expression to cross-reference markup",
	Long: `Render parses a single annotation expression against the builtin
namespace and prints the cross-reference markup it would produce in a
docstring type field`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().Bool("fully-qualified", false, "render fully qualified type names")
	renderCmd.Flags().Bool("bars", false, "render unions with | instead of Union[...]")
	renderCmd.Flags().Bool("no-simplify", false, "keep explicit Optional[Union[...]] wrappers")
	renderCmd.Flags().Bool("span", false, "wrap the output in the escaped inline role")
}

func runRender(cmd *cobra.Command, args []string) error {
	v, err := annotation.Parse(args[0], annotation.DefaultResolver)
	if err != nil {
		return fmt.Errorf("cannot parse %q: %w", args[0], err)
	}

	cfg := render.Default()
	if fq, _ := cmd.Flags().GetBool("fully-qualified"); fq {
		cfg.FullyQualified = true
	}
	if bars, _ := cmd.Flags().GetBool("bars"); bars {
		cfg.AlwaysUseBarsUnion = true
	}
	if noSimplify, _ := cmd.Flags().GetBool("no-simplify"); noSimplify {
		cfg.SimplifyOptionalUnions = false
	}

	out := render.Render(v, cfg)
	if span, _ := cmd.Flags().GetBool("span"); span {
		out = markup.TypeSpan(out)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
