// Package render turns annotation values into Sphinx cross-reference
// markup. Render is pure: identical inputs give identical strings, nothing
// is mutated and nothing panics — classification failures degrade to the
// annotation's plain textual form.
package render

import (
	"strings"

	"typedoc/internal/annotation"
)

const (
	noneToken     = ":py:obj:`None`"
	ellipsisToken = ":py:data:`...<Ellipsis>`"
)

// dataRoleNames are the typing pseudo-types that cross-reference through
// the data role instead of the class role. Matched by class name within
// the typing module only.
var dataRoleNames = map[string]bool{
	"Any": true, "AnyStr": true, "Callable": true, "ClassVar": true,
	"Literal": true, "NoReturn": true, "Optional": true, "Tuple": true,
	"Union": true,
}

// Render formats one annotation value under the given configuration.
func Render(v *annotation.Value, cfg *Config) string {
	if cfg == nil {
		cfg = Default()
	}
	if cfg.Formatter != nil {
		if s, ok := cfg.Formatter(v, cfg); ok {
			return s
		}
	}
	if v == nil {
		return noneToken
	}

	switch v.Kind {
	case annotation.KindForwardRef:
		return v.Ref
	case annotation.KindNone:
		return noneToken
	case annotation.KindEllipsis:
		return ellipsisToken
	case annotation.KindGroup:
		return renderGroup(v, cfg)
	case annotation.KindInvalid:
		return fallback(v)
	}

	module := fixupModule(cfg, v.Module)
	className := v.Name
	// Declared variables display under their typing construct; the
	// variable's own name goes into the parenthesized argument list.
	switch v.Kind {
	case annotation.KindTypeVar:
		className = "TypeVar"
	case annotation.KindParamSpec:
		className = "ParamSpec"
	case annotation.KindNewType:
		className = "NewType"
	}
	fullName := className
	if module != "" && module != "builtins" {
		fullName = module + "." + className
	}
	prefix := "~"
	if cfg.FullyQualified || fullName == className {
		prefix = ""
	}
	role := "class"
	if module == "typing" && dataRoleNames[className] {
		role = "data"
	}
	formattedArgs := ""

	switch v.Kind {
	case annotation.KindTypeVar, annotation.KindParamSpec:
		formattedArgs = renderTypeVarArgs(v, cfg)
	case annotation.KindNewType:
		formattedArgs = "\\(``" + v.Name + "``, " + Render(v.Super, cfg) + ")"
		role = "class"
	case annotation.KindLiteral:
		parts := make([]string, 0, len(v.Literals))
		for _, lit := range v.Literals {
			parts = append(parts, "``"+lit+"``")
		}
		formattedArgs = "\\[" + strings.Join(parts, ", ") + "]"
	case annotation.KindCallable:
		if len(v.Args) > 0 && v.Args[0].Kind != annotation.KindEllipsis {
			params := renderAll(v.Args[:len(v.Args)-1], cfg)
			ret := Render(v.Args[len(v.Args)-1], cfg)
			formattedArgs = "\\[\\[" + strings.Join(params, ", ") + "], " + ret + "]"
		}
	case annotation.KindUnion:
		return renderUnion(v, cfg, prefix)
	}

	if len(v.Args) > 0 && formattedArgs == "" {
		formattedArgs = "\\[" + strings.Join(renderAll(v.Args, cfg), ", ") + "]"
	}
	escape := ""
	if formattedArgs != "" {
		escape = "\\ "
	}
	return ":py:" + role + ":`" + prefix + fullName + "`" + escape + formattedArgs
}

func renderAll(args []*annotation.Value, cfg *Config) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		out = append(out, Render(a, cfg))
	}
	return out
}

// renderGroup formats a parenthesized tuple-of-annotations: zero members
// render as (), a singleton keeps a trailing comma.
func renderGroup(v *annotation.Value, cfg *Config) string {
	parts := renderAll(v.Args, cfg)
	switch len(parts) {
	case 0:
		return "()"
	case 1:
		return "(" + parts[0] + ", )"
	default:
		return "(" + strings.Join(parts, ", ") + ")"
	}
}

// renderTypeVarArgs formats the parenthesized declaration of a type
// variable: its name, constraints, then bound and variance modifiers.
func renderTypeVarArgs(v *annotation.Value, cfg *Config) string {
	var b strings.Builder
	b.WriteString("\\(``" + v.Name + "``")
	if len(v.Constraints) > 0 {
		b.WriteString(", " + strings.Join(renderAll(v.Constraints, cfg), ", "))
	}
	if v.Bound != nil {
		b.WriteString(", bound= " + Render(v.Bound, cfg))
	}
	if v.Covariant {
		b.WriteString(", covariant=True")
	}
	if v.Contravariant {
		b.WriteString(", contravariant=True")
	}
	b.WriteString(")")
	return b.String()
}

// renderUnion applies the Optional/Union collapsing rules. The None arm
// was already normalized into the Nullable flag at construction, which is
// what makes equivalent spellings render identically.
func renderUnion(v *annotation.Value, cfg *Config, prefix string) string {
	bars := v.Bar || cfg.AlwaysUseBarsUnion
	members := renderAll(v.Args, cfg)

	if !v.Nullable {
		if bars {
			return strings.Join(members, " | ")
		}
		return ":py:data:`" + prefix + "typing.Union`\\ \\[" + strings.Join(members, ", ") + "]"
	}

	switch {
	case len(members) == 0:
		return noneToken
	case !cfg.SimplifyOptionalUnions:
		// Keep the stripped union nested under an explicit Optional
		// wrapper, with the None arm spelled exactly once.
		inner := append(members, noneToken)
		return ":py:data:`" + prefix + "typing.Optional`\\ \\[:py:data:`" + prefix +
			"typing.Union`\\[" + strings.Join(inner, ", ") + "]]"
	case len(members) == 1:
		return ":py:data:`" + prefix + "typing.Optional`\\ \\[" + members[0] + "]"
	default:
		all := append(members, noneToken)
		if bars {
			return strings.Join(all, " | ")
		}
		return ":py:data:`" + prefix + "typing.Union`\\ \\[" + strings.Join(all, ", ") + "]"
	}
}

// fixupModule applies the user hook first, then the fixed redirects for
// the typing_extensions shim and the private I/O module name.
func fixupModule(cfg *Config, module string) string {
	if cfg.FixupModule != nil {
		module = cfg.FixupModule(module)
	}
	if module == "typing_extensions" {
		module = "typing"
	}
	if module == "_io" {
		module = "io"
	}
	return module
}

// fallback renders the plain string form with quote characters stripped.
func fallback(v *annotation.Value) string {
	return strings.Trim(v.String(), "'\"")
}
