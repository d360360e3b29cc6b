// Package version records the build metadata stamped into release
// binaries through -ldflags.
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of this build. It stays free of
	// escape codes so callers can log and compare it.
	Version = "0.1.0-dev"

	// GitCommit, GitMessage and BuildDate describe the commit a release
	// was cut from; local builds leave them empty.
	GitCommit  = ""
	GitMessage = ""
	BuildDate  = ""
)

var componentColors = []*color.Color{
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgBlue, color.Bold),
}

// Pretty returns Version with each dotted component colored for terminal
// output. Pre-release suffixes after the first dash stay uncolored.
func Pretty() string {
	base, suffix, pre := strings.Cut(Version, "-")
	parts := strings.Split(base, ".")
	for i, p := range parts {
		parts[i] = componentColors[i%len(componentColors)].Sprint(p)
	}
	out := strings.Join(parts, ".")
	if pre {
		out += "-" + suffix
	}
	return out
}
