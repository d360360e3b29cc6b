// Package project locates and loads the typedoc.toml manifest that
// configures a documentation run.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"typedoc/internal/docstring"
)

// ManifestName is the file the walk-up looks for.
const ManifestName = "typedoc.toml"

// Manifest is a loaded typedoc.toml plus where it came from.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the typedoc.toml layout.
type Config struct {
	Project   ProjectConfig   `toml:"project"`
	Render    RenderConfig    `toml:"render"`
	Docstring DocstringConfig `toml:"docstring"`
	Resolve   ResolveConfig   `toml:"resolve"`
}

type ProjectConfig struct {
	Name string `toml:"name"`
}

type RenderConfig struct {
	FullyQualified         bool  `toml:"fully_qualified"`
	SimplifyOptionalUnions *bool `toml:"simplify_optional_unions"`
	AlwaysUseBarsUnion     bool  `toml:"always_use_bars_union"`
}

type DocstringConfig struct {
	AlwaysDocumentParams bool   `toml:"always_document_params"`
	DocumentRType        *bool  `toml:"document_rtype"`
	UseRType             *bool  `toml:"use_rtype"`
	Defaults             string `toml:"defaults"`
}

type ResolveConfig struct {
	MockImports []string `toml:"mock_imports"`
}

// SimplifyOptionalUnionsValue defaults to true when unset.
func (c RenderConfig) SimplifyOptionalUnionsValue() bool {
	return c.SimplifyOptionalUnions == nil || *c.SimplifyOptionalUnions
}

// DocumentRTypeValue defaults to true when unset.
func (c DocstringConfig) DocumentRTypeValue() bool {
	return c.DocumentRType == nil || *c.DocumentRType
}

// UseRTypeValue defaults to true when unset.
func (c DocstringConfig) UseRTypeValue() bool {
	return c.UseRType == nil || *c.UseRType
}

// Load reads and validates a manifest file. A bad defaults layout is a
// fatal configuration error, caught here before any file is processed.
func Load(path string) (*Manifest, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", path, err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	return &Manifest{
		Path:   abs,
		Root:   filepath.Dir(abs),
		Config: cfg,
	}, nil
}

// Validate checks the configuration for values that must be rejected
// before processing begins.
func Validate(cfg *Config) error {
	if _, err := docstring.ParseDefaultsMode(cfg.Docstring.Defaults); err != nil {
		return fmt.Errorf("docstring.defaults: %w", err)
	}
	return nil
}

// Discover finds and loads the manifest governing startDir. ok is false
// when no manifest exists anywhere up the tree.
func Discover(startDir string) (*Manifest, bool, error) {
	path, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// FindProjectRoot returns the directory whose manifest governs startDir.
func FindProjectRoot(startDir string) (string, bool, error) {
	path, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return "", ok, err
	}
	return filepath.Dir(path), true, nil
}

// findManifest walks from startDir toward the filesystem root and stops
// at the first directory holding a manifest file.
func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for prev := ""; dir != prev; prev, dir = dir, filepath.Dir(dir) {
		candidate := filepath.Join(dir, ManifestName)
		info, err := os.Stat(candidate)
		switch {
		case err == nil && !info.IsDir():
			return candidate, true, nil
		case err != nil && !errors.Is(err, os.ErrNotExist):
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
	}
	return "", false, nil
}
