package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"typedoc/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "typedoc",
	Short: "Type-annotation documentation tool",
	Long:  `typedoc recovers type annotations from source files and splices them into API docstrings as cross-referenced type fields`,
}

// main initializes the CLI by setting the command version, registering
// subcommands and persistent flags, and then executes the root command.
// If command execution returns an error, the process exits with status
// code 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(hintsCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Int("jobs", 0, "parallel workers (0 = all cores)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show per file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether the file is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves the --color tri-state against the output stream.
func useColor(value string, f *os.File) bool {
	switch value {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(f)
	}
}
