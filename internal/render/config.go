package render

import "typedoc/internal/annotation"

// Formatter is the custom per-annotation escape hatch. Returning false
// declines, letting the built-in rules run.
type Formatter func(v *annotation.Value, cfg *Config) (string, bool)

// Config carries the rendering toggles. It is built once per documentation
// build and read-only afterwards.
type Config struct {
	// FullyQualified suppresses the "~" shortening prefix on references.
	FullyQualified bool
	// SimplifyOptionalUnions collapses Union[..., None] spellings instead
	// of nesting them under an explicit Optional wrapper.
	SimplifyOptionalUnions bool
	// AlwaysUseBarsUnion renders every union with the "X | Y" spelling.
	AlwaysUseBarsUnion bool
	// Formatter, when set, is consulted first for every annotation.
	Formatter Formatter
	// FixupModule remaps a module name before it is displayed.
	FixupModule func(module string) string
}

// Default returns the configuration the host applies when nothing is set.
func Default() *Config {
	return &Config{SimplifyOptionalUnions: true}
}
