package docstring

import "fmt"

// DefaultsMode selects how a parameter's default value is appended to its
// documentation.
type DefaultsMode uint8

const (
	// DefaultsNone leaves defaults undocumented.
	DefaultsNone DefaultsMode = iota
	// DefaultsComma appends ", default: ``value``" to the type field.
	DefaultsComma
	// DefaultsBraces appends " (default: ``value``)" to the type field.
	DefaultsBraces
	// DefaultsBracesAfter appends " (default: ``value``)" to the last
	// line of the parameter's description instead.
	DefaultsBracesAfter
)

func (m DefaultsMode) String() string {
	switch m {
	case DefaultsNone:
		return "none"
	case DefaultsComma:
		return "comma"
	case DefaultsBraces:
		return "braces"
	case DefaultsBracesAfter:
		return "braces-after"
	default:
		return fmt.Sprintf("DefaultsMode(%d)", m)
	}
}

// ParseDefaultsMode validates a defaults layout name. An unknown name is a
// configuration error, reported before any callable is processed.
func ParseDefaultsMode(s string) (DefaultsMode, error) {
	switch s {
	case "", "none":
		return DefaultsNone, nil
	case "comma":
		return DefaultsComma, nil
	case "braces":
		return DefaultsBraces, nil
	case "braces-after":
		return DefaultsBracesAfter, nil
	default:
		return DefaultsNone, fmt.Errorf("unknown defaults layout %q (want none, comma, braces or braces-after)", s)
	}
}

// Options tunes the splicer.
type Options struct {
	// AlwaysDocumentParams synthesizes a bare ":param name:" field for
	// annotated parameters that have no description.
	AlwaysDocumentParams bool
	// DocumentRType controls whether return types are documented at all.
	DocumentRType bool
	// UseRType emits a separate ":rtype:" field; when false the rendered
	// type is folded into an existing ":return:" description instead.
	UseRType bool
	// Defaults selects the default-value suffix layout.
	Defaults DefaultsMode
}

// DefaultOptions matches the behavior used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		DocumentRType: true,
		UseRType:      true,
	}
}
