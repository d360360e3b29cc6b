package docstring

// Splicer tests.
//
// Coverage:
//   - Type-field placement before existing parameter fields
//   - Field-keyword synonyms and star-prefixed variadic entries
//   - Unicode-normalized and trailing-underscore name matching
//   - Synthesized fields for undocumented parameters
//   - The four default-value layouts
//   - Return-type placement, folding and idempotence

import (
	"strings"
	"testing"

	"typedoc/internal/annotation"
	"typedoc/internal/markup"
	"typedoc/internal/pysrc"
	"typedoc/internal/render"
)

func boolSpan(t *testing.T) string {
	t.Helper()
	return markup.TypeSpan(render.Render(annotation.MakeClass("builtins", "bool"), render.Default()))
}

func intSpan(t *testing.T) string {
	t.Helper()
	return markup.TypeSpan(render.Render(annotation.MakeClass("builtins", "int"), render.Default()))
}

func fn(params ...pysrc.Param) *pysrc.Callable {
	return &pysrc.Callable{QualName: "mod.f", What: pysrc.WhatFunction, Params: params}
}

func inject(t *testing.T, hints annotation.Map, target *pysrc.Callable, lines []string, opts Options) []string {
	t.Helper()
	buf := NewBuffer(lines)
	InjectTypes(hints, target, buf, render.Default(), opts)
	return buf.Lines()
}

func TestInjectTypeBeforeParamField(t *testing.T) {
	hints := annotation.Map{"x": annotation.MakeClass("builtins", "bool")}
	got := inject(t, hints, fn(pysrc.Param{Name: "x"}), []string{
		"Do a thing.",
		"",
		":param x: the flag",
	}, DefaultOptions())

	want := []string{
		"Do a thing.",
		"",
		":type x: " + boolSpan(t),
		":param x: the flag",
	}
	assertLines(t, got, want)
}

func TestInjectFieldSynonyms(t *testing.T) {
	for _, kw := range []string{"param", "parameter", "arg", "argument", "keyword", "kwarg", "kwparam"} {
		hints := annotation.Map{"x": annotation.MakeClass("builtins", "bool")}
		got := inject(t, hints, fn(pysrc.Param{Name: "x"}), []string{":" + kw + " x: doc"}, DefaultOptions())
		if len(got) != 2 || !strings.HasPrefix(got[0], ":type x: ") {
			t.Fatalf("keyword %q: lines = %q", kw, got)
		}
	}
}

func TestInjectStarPrefixedEntry(t *testing.T) {
	// The doc entry's escaped spelling keys the type field.
	hints := annotation.Map{"args": annotation.MakeClass("builtins", "int")}
	got := inject(t, hints, fn(pysrc.Param{Name: "args", Kind: pysrc.ParamVarPositional}), []string{
		`:param \*args: extras`,
	}, DefaultOptions())
	if got[0] != `:type \*args: `+intSpan(t) {
		t.Fatalf("lines = %q", got)
	}

	hints = annotation.Map{"kw": annotation.MakeClass("builtins", "int")}
	got = inject(t, hints, fn(pysrc.Param{Name: "kw", Kind: pysrc.ParamVarKeyword}), []string{
		`:param \*\*kw: extras`,
	}, DefaultOptions())
	if got[0] != `:type \*\*kw: `+intSpan(t) {
		t.Fatalf("lines = %q", got)
	}
}

func TestInjectUnicodeNormalizedMatch(t *testing.T) {
	// "café" spelled decomposed in the docs, composed in the signature.
	hints := annotation.Map{"café": annotation.MakeClass("builtins", "int")}
	got := inject(t, hints, fn(pysrc.Param{Name: "café"}), []string{
		":param café: a place",
	}, DefaultOptions())
	if len(got) != 2 || !strings.HasPrefix(got[0], ":type ") {
		t.Fatalf("lines = %q", got)
	}
}

func TestInjectTrailingUnderscore(t *testing.T) {
	hints := annotation.Map{"class_": annotation.MakeClass("builtins", "int")}
	got := inject(t, hints, fn(pysrc.Param{Name: "class_"}), []string{
		`:param class\_: the class`,
	}, DefaultOptions())
	if got[0] != `:type class\_: `+intSpan(t) {
		t.Fatalf("lines = %q", got)
	}
}

func TestInjectUndocumentedParam(t *testing.T) {
	hints := annotation.Map{"x": annotation.MakeClass("builtins", "bool")}

	// Without the flag, nothing is added.
	got := inject(t, hints, fn(pysrc.Param{Name: "x"}), []string{"Doc."}, DefaultOptions())
	assertLines(t, got, []string{"Doc."})

	// With it, a bare field plus the type land at the end.
	opts := DefaultOptions()
	opts.AlwaysDocumentParams = true
	got = inject(t, hints, fn(pysrc.Param{Name: "x"}), []string{"Doc."}, opts)
	want := []string{
		"Doc.",
		":param x:",
		":type x: " + boolSpan(t),
	}
	assertLines(t, got, want)

	// An unannotated parameter is never synthesized.
	got = inject(t, annotation.Map{}, fn(pysrc.Param{Name: "y"}), []string{"Doc."}, opts)
	assertLines(t, got, []string{"Doc."})
}

func TestInjectEmptyTypeForUnresolvedParam(t *testing.T) {
	// Documented parameter with no resolvable annotation gets a bare field.
	got := inject(t, annotation.Map{}, fn(pysrc.Param{Name: "x"}), []string{
		":param x: something",
	}, DefaultOptions())
	assertLines(t, got, []string{":type x:", ":param x: something"})
}

func TestInjectDefaults(t *testing.T) {
	base := []string{":param x: the count"}
	param := pysrc.Param{Name: "x", Default: "3", HasDefault: true}
	hints := annotation.Map{"x": annotation.MakeClass("builtins", "int")}

	tests := []struct {
		name string
		mode DefaultsMode
		want string
	}{
		{"none", DefaultsNone, ":type x: " + intSpan(t)},
		{"comma", DefaultsComma, ":type x: " + intSpan(t) + ", default: ``3``"},
		{"braces", DefaultsBraces, ":type x: " + intSpan(t) + " (default: ``3``)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Defaults = tt.mode
			got := inject(t, hints, fn(param), base, opts)
			if got[0] != tt.want {
				t.Fatalf("type field = %q, want %q", got[0], tt.want)
			}
		})
	}
}

func TestInjectDefaultsBracesAfter(t *testing.T) {
	// The suffix lands on the last continuation line of the field, not on
	// the type field itself.
	param := pysrc.Param{Name: "x", Default: "3", HasDefault: true}
	hints := annotation.Map{"x": annotation.MakeClass("builtins", "int")}
	opts := DefaultOptions()
	opts.Defaults = DefaultsBracesAfter

	got := inject(t, hints, fn(param), []string{
		":param x: the count,",
		"    continued over",
		"    three lines",
		"",
		"Trailing prose.",
	}, opts)
	want := []string{
		":type x: " + intSpan(t),
		":param x: the count,",
		"    continued over",
		"    three lines (default: ``3``)",
		"",
		"Trailing prose.",
	}
	assertLines(t, got, want)
}

func TestInjectDefaultsBracesAfterInteriorBlank(t *testing.T) {
	// A blank line inside the field body does not end it; the suffix
	// still lands on the last nonempty continuation line.
	param := pysrc.Param{Name: "x", Default: "3", HasDefault: true}
	hints := annotation.Map{"x": annotation.MakeClass("builtins", "int")}
	opts := DefaultOptions()
	opts.Defaults = DefaultsBracesAfter

	got := inject(t, hints, fn(param), []string{
		":param x: first line",
		"",
		"    continued description",
		"",
		"Trailing prose.",
	}, opts)
	want := []string{
		":type x: " + intSpan(t),
		":param x: first line",
		"",
		"    continued description (default: ``3``)",
		"",
		"Trailing prose.",
	}
	assertLines(t, got, want)
}

func TestInjectDefaultBackslashDoubling(t *testing.T) {
	param := pysrc.Param{Name: "p", Default: `"a\b"`, HasDefault: true}
	hints := annotation.Map{"p": annotation.MakeClass("builtins", "str")}
	opts := DefaultOptions()
	opts.Defaults = DefaultsComma
	got := inject(t, hints, fn(param), []string{":param p: path"}, opts)
	if !strings.Contains(got[0], `"a\\b"`) {
		t.Fatalf("default not escaped: %q", got[0])
	}
}

func TestInjectReturnAfterFieldList(t *testing.T) {
	hints := annotation.Map{annotation.ReturnKey: annotation.MakeClass("builtins", "bool")}
	got := inject(t, hints, fn(), []string{
		"Do a thing.",
		"",
		":param x: the flag",
		"",
		"Closing prose.",
	}, DefaultOptions())
	want := []string{
		"Do a thing.",
		"",
		":param x: the flag",
		":rtype: " + boolSpan(t),
		"",
		"Closing prose.",
	}
	assertLines(t, got, want)
}

func TestInjectReturnBeforeExamples(t *testing.T) {
	hints := annotation.Map{annotation.ReturnKey: annotation.MakeClass("builtins", "bool")}
	got := inject(t, hints, fn(), []string{
		"Do a thing.",
		"",
		">>> f()",
		"True",
	}, DefaultOptions())
	want := []string{
		"Do a thing.",
		"",
		":rtype: " + boolSpan(t),
		"",
		">>> f()",
		"True",
	}
	assertLines(t, got, want)
}

func TestInjectReturnBeforeDirectiveGetsBlankLine(t *testing.T) {
	hints := annotation.Map{annotation.ReturnKey: annotation.MakeClass("builtins", "bool")}
	got := inject(t, hints, fn(), []string{
		"Do a thing.",
		"",
		".. warning:: careful",
	}, DefaultOptions())
	want := []string{
		"Do a thing.",
		"",
		":rtype: " + boolSpan(t),
		"",
		".. warning:: careful",
	}
	assertLines(t, got, want)
}

func TestInjectReturnIgnoresNonParamFieldList(t *testing.T) {
	// A field list with no parameter fields does not anchor the return
	// type; it goes to the end of the buffer instead.
	hints := annotation.Map{annotation.ReturnKey: annotation.MakeClass("builtins", "bool")}
	got := inject(t, hints, fn(), []string{
		"Do a thing.",
		"",
		":meta private:",
		"",
		"Closing prose.",
	}, DefaultOptions())
	want := []string{
		"Do a thing.",
		"",
		":meta private:",
		"",
		"Closing prose.",
		"",
		":rtype: " + boolSpan(t),
	}
	assertLines(t, got, want)
}

func TestInjectReturnAtEndAddsBlankLine(t *testing.T) {
	hints := annotation.Map{annotation.ReturnKey: annotation.MakeClass("builtins", "bool")}
	got := inject(t, hints, fn(), []string{"Just prose."}, DefaultOptions())
	want := []string{"Just prose.", "", ":rtype: " + boolSpan(t)}
	assertLines(t, got, want)

	// No separator when a field immediately precedes.
	got = inject(t, hints, fn(pysrc.Param{Name: "x"}), []string{":param x: doc"}, DefaultOptions())
	if got[len(got)-1] != ":rtype: "+boolSpan(t) || got[len(got)-2] == "" {
		t.Fatalf("lines = %q", got)
	}
}

func TestInjectReturnRespectsManualRType(t *testing.T) {
	hints := annotation.Map{annotation.ReturnKey: annotation.MakeClass("builtins", "bool")}
	lines := []string{":rtype: int"}
	got := inject(t, hints, fn(), lines, DefaultOptions())
	assertLines(t, got, []string{":rtype: int"})
}

func TestInjectReturnBeforeReturnField(t *testing.T) {
	hints := annotation.Map{annotation.ReturnKey: annotation.MakeClass("builtins", "bool")}
	got := inject(t, hints, fn(), []string{":return: the answer"}, DefaultOptions())
	want := []string{":rtype: " + boolSpan(t), ":return: the answer"}
	assertLines(t, got, want)
}

func TestInjectReturnFold(t *testing.T) {
	hints := annotation.Map{annotation.ReturnKey: annotation.MakeClass("builtins", "bool")}
	opts := DefaultOptions()
	opts.UseRType = false

	got := inject(t, hints, fn(), []string{":return: the answer"}, opts)
	assertLines(t, got, []string{":return: " + boolSpan(t) + " -- the answer"})

	// Folding twice changes nothing.
	got = inject(t, hints, fn(), got, opts)
	assertLines(t, got, []string{":return: " + boolSpan(t) + " -- the answer"})

	// An empty description keeps just the type.
	got = inject(t, hints, fn(), []string{":return:"}, opts)
	assertLines(t, got, []string{":return: " + boolSpan(t)})
}

func TestInjectReturnSkippedForConstructors(t *testing.T) {
	hints := annotation.Map{annotation.ReturnKey: annotation.MakeNone()}

	cls := &pysrc.Callable{QualName: "mod.C", What: pysrc.WhatClass}
	got := inject(t, hints, cls, []string{"A class."}, DefaultOptions())
	assertLines(t, got, []string{"A class."})

	init := &pysrc.Callable{QualName: "mod.C.__init__", What: pysrc.WhatMethod}
	got = inject(t, hints, init, []string{"Build it."}, DefaultOptions())
	assertLines(t, got, []string{"Build it."})
}

func TestInjectReturnSkippedForProperties(t *testing.T) {
	hints := annotation.Map{annotation.ReturnKey: annotation.MakeClass("builtins", "int")}
	prop := &pysrc.Callable{QualName: "mod.C.size", What: pysrc.WhatProperty}
	got := inject(t, hints, prop, []string{"The size."}, DefaultOptions())
	assertLines(t, got, []string{"The size."})
}

func TestInjectReturnDisabled(t *testing.T) {
	hints := annotation.Map{annotation.ReturnKey: annotation.MakeClass("builtins", "bool")}
	opts := DefaultOptions()
	opts.DocumentRType = false
	got := inject(t, hints, fn(), []string{"Doc."}, opts)
	assertLines(t, got, []string{"Doc."})
}

func assertLines(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("line count = %d, want %d\ngot:  %q\nwant: %q", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}
