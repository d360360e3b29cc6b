package project

import (
	"os"
	"path/filepath"
	"testing"

	"typedoc/internal/docstring"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "typedoc.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[project]
name = "demo"

[render]
fully_qualified = true
simplify_optional_unions = false

[docstring]
always_document_params = true
use_rtype = false
defaults = "braces"

[resolve]
mock_imports = ["bigframework", "legacy.compat"]
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Root != dir {
		t.Fatalf("Root = %q, want %q", m.Root, dir)
	}
	if m.Config.Project.Name != "demo" {
		t.Fatalf("name = %q", m.Config.Project.Name)
	}
	if !m.Config.Render.FullyQualified {
		t.Fatal("fully_qualified not read")
	}
	if m.Config.Render.SimplifyOptionalUnionsValue() {
		t.Fatal("simplify_optional_unions=false not honored")
	}
	if !m.Config.Docstring.AlwaysDocumentParams || m.Config.Docstring.UseRTypeValue() {
		t.Fatalf("docstring section = %+v", m.Config.Docstring)
	}
	mode, err := docstring.ParseDefaultsMode(m.Config.Docstring.Defaults)
	if err != nil || mode != docstring.DefaultsBraces {
		t.Fatalf("defaults = %v (%v)", mode, err)
	}
	if len(m.Config.Resolve.MockImports) != 2 {
		t.Fatalf("mock_imports = %v", m.Config.Resolve.MockImports)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "")
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	// The tri-state toggles default to true when unset.
	if !m.Config.Render.SimplifyOptionalUnionsValue() {
		t.Fatal("simplify should default to true")
	}
	if !m.Config.Docstring.DocumentRTypeValue() || !m.Config.Docstring.UseRTypeValue() {
		t.Fatal("rtype toggles should default to true")
	}
}

func TestLoadManifestRejectsBadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[docstring]
defaults = "sometimes"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("invalid defaults layout accepted")
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `[project]
name = "demo"
`)
	nested := filepath.Join(root, "src", "pkg")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	m, ok, err := Discover(nested)
	if err != nil || !ok {
		t.Fatalf("Discover = %v, %v", ok, err)
	}
	if m.Root != root {
		t.Fatalf("Root = %q, want %q", m.Root, root)
	}

	rootDir, ok, err := FindProjectRoot(nested)
	if err != nil || !ok || rootDir != root {
		t.Fatalf("FindProjectRoot = %q, %v, %v", rootDir, ok, err)
	}
}

func TestDiscoverMissing(t *testing.T) {
	dir := t.TempDir()
	_, ok, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if ok {
		t.Fatal("Discover found a manifest in an empty tree")
	}
}
