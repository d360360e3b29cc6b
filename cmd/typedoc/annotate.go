package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"typedoc"
	"typedoc/internal/diagfmt"
	"typedoc/internal/docstring"
	"typedoc/internal/driver"
	"typedoc/internal/pipeline"
	"typedoc/internal/project"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [flags] path",
	Short: "Splice type fields into the docstrings of a file or directory",
	Long:  `Annotate scans source files, resolves every callable's type annotations and prints the docstrings with :type: and :rtype: fields spliced in`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAnnotate,
}

func init() {
	annotateCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	annotateCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	annotateCmd.Flags().Bool("no-cache", false, "bypass the scan cache")
	annotateCmd.Flags().Bool("fully-qualified", false, "render fully qualified type names")
	annotateCmd.Flags().Bool("bars", false, "render unions with | instead of Union[...]")
	annotateCmd.Flags().Bool("no-simplify", false, "keep explicit Optional[Union[...]] wrappers")
	annotateCmd.Flags().String("defaults", "", "default-value layout (none|comma|braces|braces-after)")
	annotateCmd.Flags().Bool("always-document-params", false, "synthesize :param: fields for undocumented annotated parameters")
	annotateCmd.Flags().Bool("no-rtype", false, "do not document return types")
	annotateCmd.Flags().Bool("fold-return", false, "fold return types into :return: descriptions instead of :rtype:")
	annotateCmd.Flags().StringSlice("mock", nil, "modules whose guarded imports are mocked")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	target := args[0]
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("cannot open %q: %w", target, err)
	}

	var root string
	var files []string
	if info.IsDir() {
		root = target
		files, err = driver.ListSourceFiles(target)
		if err != nil {
			return fmt.Errorf("failed to list source files: %w", err)
		}
		if len(files) == 0 {
			return fmt.Errorf("no source files under %q", target)
		}
	} else {
		root = filepath.Dir(target)
		files = []string{target}
	}

	cfg, err := buildConfig(cmd, root)
	if err != nil {
		return err
	}

	opts := driver.Options{Config: cfg}
	if opts.Jobs, err = cmd.Root().PersistentFlags().GetInt("jobs"); err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if opts.MaxDiagnostics, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); !noCache {
		// A broken cache dir degrades to uncached scans.
		if cache, err := driver.OpenDiskCache("typedoc"); err == nil {
			opts.Cache = cache
		}
	}

	useTUI, err := resolveUI(cmd)
	if err != nil {
		return err
	}

	var result *driver.RunResult
	if useTUI {
		result, err = runAnnotateWithUI(cmd.Context(), "annotating", root, files, opts)
	} else {
		result, err = driver.Annotate(cmd.Context(), root, files, opts)
	}
	if err != nil {
		return fmt.Errorf("annotation failed: %w", err)
	}

	colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
	prettyOpts := diagfmt.PrettyOpts{Color: useColor(colorFlag, os.Stderr)}
	hadErrors := false
	for _, fr := range result.Files {
		if fr.Bag.HasErrors() {
			hadErrors = true
		}
		diagfmt.Pretty(os.Stderr, fr.Bag, prettyOpts)
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if !quiet {
		diagfmt.Pretty(os.Stderr, result.Bag, prettyOpts)
		elapsed := result.Timings.Sum(pipeline.StageScan, pipeline.StageSplice)
		fmt.Fprintf(os.Stderr, "%d files (scan %s, splice %s, total %s)\n",
			len(result.Files),
			result.Timings.Duration(pipeline.StageScan),
			result.Timings.Duration(pipeline.StageSplice),
			elapsed)
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "pretty":
		printAnnotatePretty(result, useColor(colorFlag, os.Stdout))
	case "json":
		if err := printAnnotateJSON(result); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if hadErrors {
		return fmt.Errorf("annotation finished with errors")
	}
	return nil
}

// resolveUI interprets the --ui tri-state: "auto" attaches the progress
// view only when stdout is a terminal, so piped runs stay plain.
func resolveUI(cmd *cobra.Command) (bool, error) {
	value, _ := cmd.Flags().GetString("ui")
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return isTerminal(os.Stdout), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// buildConfig layers CLI flag overrides on top of the discovered manifest.
func buildConfig(cmd *cobra.Command, startDir string) (typedoc.Config, error) {
	cfg := typedoc.DefaultConfig()

	manifest, ok, err := project.Discover(startDir)
	if err != nil {
		return cfg, err
	}
	if ok {
		cfg.FullyQualified = manifest.Config.Render.FullyQualified
		cfg.SimplifyOptionalUnions = manifest.Config.Render.SimplifyOptionalUnionsValue()
		cfg.AlwaysUseBarsUnion = manifest.Config.Render.AlwaysUseBarsUnion
		cfg.AlwaysDocumentParams = manifest.Config.Docstring.AlwaysDocumentParams
		cfg.DocumentRType = manifest.Config.Docstring.DocumentRTypeValue()
		cfg.UseRType = manifest.Config.Docstring.UseRTypeValue()
		cfg.Defaults, _ = docstring.ParseDefaultsMode(manifest.Config.Docstring.Defaults)
		cfg.MockImports = manifest.Config.Resolve.MockImports
	}

	flags := cmd.Flags()
	if flags.Changed("fully-qualified") {
		cfg.FullyQualified, _ = flags.GetBool("fully-qualified")
	}
	if flags.Changed("bars") {
		cfg.AlwaysUseBarsUnion, _ = flags.GetBool("bars")
	}
	if flags.Changed("no-simplify") {
		noSimplify, _ := flags.GetBool("no-simplify")
		cfg.SimplifyOptionalUnions = !noSimplify
	}
	if flags.Changed("defaults") {
		layout, _ := flags.GetString("defaults")
		mode, err := docstring.ParseDefaultsMode(layout)
		if err != nil {
			return cfg, err
		}
		cfg.Defaults = mode
	}
	if flags.Changed("always-document-params") {
		cfg.AlwaysDocumentParams, _ = flags.GetBool("always-document-params")
	}
	if flags.Changed("no-rtype") {
		noRType, _ := flags.GetBool("no-rtype")
		cfg.DocumentRType = !noRType
	}
	if flags.Changed("fold-return") {
		fold, _ := flags.GetBool("fold-return")
		cfg.UseRType = !fold
	}
	if mocks, _ := flags.GetStringSlice("mock"); len(mocks) > 0 {
		cfg.MockImports = append(cfg.MockImports, mocks...)
	}
	return cfg, nil
}

func printAnnotatePretty(result *driver.RunResult, colored bool) {
	header := color.New(color.Bold)
	qual := color.New(color.FgCyan)
	if !colored {
		header.DisableColor()
		qual.DisableColor()
	}
	for _, fr := range result.Files {
		if len(fr.Entries) == 0 {
			continue
		}
		header.Printf("%s (%s)\n", fr.Path, fr.Module)
		for _, e := range fr.Entries {
			qual.Printf("  %s %s%s\n", e.What, e.QualName, e.Signature)
			for _, line := range e.Doc {
				fmt.Printf("    %s\n", line)
			}
			fmt.Println()
		}
	}
}

type annotateFilePayload struct {
	Path    string                 `json:"path"`
	Module  string                 `json:"module"`
	Entries []annotateEntryPayload `json:"entries"`
}

type annotateEntryPayload struct {
	QualName  string   `json:"qualname"`
	What      string   `json:"what"`
	Signature string   `json:"signature,omitempty"`
	Doc       []string `json:"doc"`
}

func printAnnotateJSON(result *driver.RunResult) error {
	payload := make([]annotateFilePayload, 0, len(result.Files))
	for _, fr := range result.Files {
		fp := annotateFilePayload{Path: fr.Path, Module: fr.Module}
		for _, e := range fr.Entries {
			fp.Entries = append(fp.Entries, annotateEntryPayload{
				QualName:  e.QualName,
				What:      e.What.String(),
				Signature: e.Signature,
				Doc:       e.Doc,
			})
		}
		payload = append(payload, fp)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
