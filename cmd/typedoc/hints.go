package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"typedoc"
	"typedoc/internal/annotation"
	"typedoc/internal/diag"
	"typedoc/internal/diagfmt"
	"typedoc/internal/driver"
	"typedoc/internal/pysrc"
	"typedoc/internal/render"
)

var hintsCmd = &cobra.Command{
	Use:   "hints [flags] file",
	Short: "Show the resolved annotation map of every callable in a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runHints,
}

func init() {
	hintsCmd.Flags().Bool("raw", false, "print structural annotation values instead of markup")
	hintsCmd.Flags().StringSlice("mock", nil, "modules whose guarded imports are mocked")
}

func runHints(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %q: %w", path, err)
	}

	root := filepath.Dir(path)
	cfg, err := buildConfig(cmd, root)
	if err != nil {
		return err
	}

	maxDiag, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	bag := diag.NewBag(maxDiag)
	rep := diag.BagReporter{Bag: bag}

	name := driver.ModuleName(root, path)
	mod := pysrc.Scan(name, path, string(src), rep)
	set := pysrc.NewModuleSet()
	set.Add(mod)

	ext := typedoc.New(set, cfg, rep)
	raw, _ := cmd.Flags().GetBool("raw")
	rcfg := &render.Config{
		FullyQualified:         cfg.FullyQualified,
		SimplifyOptionalUnions: cfg.SimplifyOptionalUnions,
		AlwaysUseBarsUnion:     cfg.AlwaysUseBarsUnion,
	}

	colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
	qual := color.New(color.FgCyan, color.Bold)
	if !useColor(colorFlag, os.Stdout) {
		qual.DisableColor()
	}

	for _, c := range mod.Callables {
		hints := ext.Hints(c)
		qual.Printf("%s %s\n", c.What, c.QualName)
		for _, param := range sortedKeys(hints) {
			if raw {
				fmt.Printf("  %s: %s\n", param, hints[param])
			} else {
				fmt.Printf("  %s: %s\n", param, render.Render(hints[param], rcfg))
			}
		}
		fmt.Println()
	}

	bag.Sort()
	diagfmt.Pretty(os.Stderr, bag, diagfmt.PrettyOpts{Color: useColor(colorFlag, os.Stderr)})
	if bag.HasErrors() {
		return fmt.Errorf("resolution finished with errors")
	}
	return nil
}

// sortedKeys orders a hint map: parameters alphabetically, the return
// pseudo-key last.
func sortedKeys(m annotation.Map) []string {
	keys := make([]string, 0, len(m))
	hasReturn := false
	for k := range m {
		if k == annotation.ReturnKey {
			hasReturn = true
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if hasReturn {
		keys = append(keys, annotation.ReturnKey)
	}
	return keys
}
