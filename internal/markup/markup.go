// Package markup implements the deferred-rendering marker that carries a
// rendered type annotation through the docstring pipeline. Rendered types
// are bracket- and backtick-heavy, so they get escaped and wrapped in a
// dedicated inline role; the role's second pass unescapes the body and
// wraps it in a semantic span the output layer can style.
package markup

import (
	"regexp"
	"strings"
)

// RoleName is the inline role registered with the host's text renderer.
const RoleName = "typedoc-type"

// SpanClass is the CSS class the role attaches to its rendered body.
const SpanClass = "typedoc-type"

var (
	punctRe    = regexp.MustCompile("([!-/:-@\\[-`{-~])")
	unescRe    = regexp.MustCompile(`\\([^ ])`)
	typeSpanRe = regexp.MustCompile(":" + RoleName + ":`((?:[^`\\\\]|\\\\.)*)`")
)

// Escape backslash-escapes every ASCII punctuation character so arbitrary
// reference markup survives a trip through another markup parser.
func Escape(s string) string {
	return punctRe.ReplaceAllString(s, `\$1`)
}

// Unescape reverses Escape. Stray NUL bytes introduced by intermediate
// buffers are dropped, and an escaped space keeps its backslash because the
// non-breaking escape must survive into the second rendering pass.
func Unescape(escaped string) string {
	escaped = strings.ReplaceAll(escaped, "\x00", "")
	return unescRe.ReplaceAllString(escaped, "$1")
}

// TypeSpan wraps a rendered annotation in the deferred-rendering role.
func TypeSpan(rendered string) string {
	return ":" + RoleName + ":`" + Escape(rendered) + "`"
}

// RenderRole is the role's behavior: re-parse the escaped body and return
// it wrapped in the semantic span. Output here is the plain-text shape of
// the span; an HTML writer substitutes its own container.
func RenderRole(escaped string) string {
	return Unescape(escaped)
}

// ExpandTypeSpans rewrites every deferred-rendering marker on a line into
// its unescaped body, for plain-text output surfaces.
func ExpandTypeSpans(line string) string {
	return typeSpanRe.ReplaceAllStringFunc(line, func(m string) string {
		body := typeSpanRe.FindStringSubmatch(m)[1]
		return RenderRole(body)
	})
}
