package docstring

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// paramKeywords are the field keywords that document a parameter.
var paramKeywords = map[string]bool{
	"param": true, "parameter": true, "arg": true, "argument": true,
	"keyword": true, "kwarg": true, "kwparam": true,
}

// starPrefixes are the escaped spellings a variadic parameter's doc entry
// may carry in front of the bare name.
var starPrefixes = []string{"", `\*`, `\**`, `\*\*`}

// fieldParts decomposes a structured field line ":keyword argument: rest"
// into its keyword and argument. Field lines with no argument (":rtype:")
// yield an empty argument.
func fieldParts(line string) (keyword, argument string, ok bool) {
	parts := strings.SplitN(line, ":", 3)
	if len(parts) != 3 || strings.TrimSpace(parts[0]) != "" {
		return "", "", false
	}
	head := strings.TrimSpace(parts[1])
	if head == "" {
		return "", "", false
	}
	kw, arg, _ := strings.Cut(head, " ")
	return kw, strings.TrimSpace(arg), true
}

// matchesParam reports whether a line documents the named parameter,
// allowing the escaped star prefixes of variadic entries. Names compare
// under NFC so composed and decomposed spellings of the same identifier
// match.
func matchesParam(line, name string) bool {
	kw, arg, ok := fieldParts(line)
	if !ok || arg == "" || !paramKeywords[kw] {
		return false
	}
	arg = norm.NFC.String(arg)
	name = norm.NFC.String(name)
	for _, prefix := range starPrefixes {
		if arg == prefix+name {
			return true
		}
	}
	return false
}

// escapeTrailingUnderscore converts a trailing-underscore parameter name to
// its escaped doc-text spelling: the field is keyed by the escaped form.
func escapeTrailingUnderscore(name string) string {
	if strings.HasSuffix(name, "_") {
		return name[:len(name)-1] + `\_`
	}
	return name
}
