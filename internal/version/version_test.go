package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestVersionDefault(t *testing.T) {
	if Version == "" {
		t.Fatal("Version must have a default")
	}
	if !strings.Contains(Version, ".") {
		t.Fatalf("Version = %q, not semver-shaped", Version)
	}
	if strings.Contains(Version, "\x1b") {
		t.Fatalf("Version carries escape codes: %q", Version)
	}
}

func TestPretty(t *testing.T) {
	origColor := color.NoColor
	origVersion := Version
	defer func() {
		color.NoColor = origColor
		Version = origVersion
	}()
	color.NoColor = true

	Version = "1.2.3-rc1"
	if got := Pretty(); got != "1.2.3-rc1" {
		t.Fatalf("Pretty() = %q", got)
	}
	Version = "2.0.0"
	if got := Pretty(); got != "2.0.0" {
		t.Fatalf("Pretty() = %q", got)
	}
}

func TestBuildMetadataOverride(t *testing.T) {
	origCommit, origDate := GitCommit, BuildDate
	defer func() {
		GitCommit, BuildDate = origCommit, origDate
	}()

	// Simulates -ldflags injection at build time.
	GitCommit = "abc123def456"
	BuildDate = "2026-08-29T10:30:00Z"
	if GitCommit != "abc123def456" || BuildDate != "2026-08-29T10:30:00Z" {
		t.Fatalf("override lost: %q / %q", GitCommit, BuildDate)
	}
}
