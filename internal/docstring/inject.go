package docstring

import (
	"strings"

	"typedoc/internal/annotation"
	"typedoc/internal/markup"
	"typedoc/internal/pysrc"
	"typedoc/internal/render"
)

// InjectTypes splices type fields for one callable into its documentation
// buffer. Parameter types land immediately before their ":param" fields;
// the return type goes after the field list, or folds into an existing
// ":return:" description when configured to. Existing lines are never
// reordered.
func InjectTypes(hints annotation.Map, target *pysrc.Callable, buf *Buffer, cfg *render.Config, opts Options) {
	if cfg == nil {
		cfg = render.Default()
	}
	t := target.Target()
	for _, p := range t.Params {
		injectParam(hints[p.Name], p, buf, cfg, opts)
	}
	injectReturn(hints, target, buf, cfg, opts)
}

func injectParam(ann *annotation.Value, p pysrc.Param, buf *Buffer, cfg *render.Config, opts Options) {
	name := escapeTrailingUnderscore(p.Name)

	insert := -1
	for i := 0; i < buf.Len(); i++ {
		if matchesParam(buf.At(i), name) {
			// Adopt the doc entry's exact spelling so a star-prefixed
			// entry keys the type field the same way.
			if _, docName, ok := fieldParts(buf.At(i)); ok {
				name = docName
			}
			insert = i
			break
		}
	}
	if insert < 0 {
		if ann == nil || !opts.AlwaysDocumentParams {
			return
		}
		buf.Append(":param " + name + ":")
		insert = buf.Len()
	}

	field := ":type " + name + ":"
	if ann != nil {
		field = ":type " + name + ": " + markup.TypeSpan(render.Render(ann, cfg))
	}

	if opts.Defaults != DefaultsNone && p.HasDefault {
		suffix := formatDefault(p.Default, ann != nil, opts.Defaults)
		if suffix != "" {
			if opts.Defaults == DefaultsBracesAfter && insert < buf.Len() {
				buf.Extend(lastFieldLine(buf, insert), suffix)
			} else {
				field += suffix
			}
		}
	}
	buf.Insert(insert, field)
}

// lastFieldLine walks past the continuation lines of the field at the
// given index and returns the index of its last nonempty line. Interior
// blank lines stay part of the field as long as indented content follows.
func lastFieldLine(buf *Buffer, at int) int {
	last := at
	for j := at + 1; j < buf.Len(); j++ {
		line := buf.At(j)
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !indented(line) {
			break
		}
		last = j
	}
	return last
}

// formatDefault renders a default-value suffix. Backslashes in the source
// representation are doubled so the literal survives markup processing.
func formatDefault(value string, annotated bool, mode DefaultsMode) string {
	literal := "``" + strings.ReplaceAll(value, `\`, `\\`) + "``"
	switch mode {
	case DefaultsComma:
		if annotated {
			return ", default: " + literal
		}
		return "default: " + literal
	case DefaultsBraces, DefaultsBracesAfter:
		return " (default: " + literal + ")"
	default:
		return ""
	}
}

func injectReturn(hints annotation.Map, target *pysrc.Callable, buf *Buffer, cfg *render.Config, opts Options) {
	if !opts.DocumentRType || !hints.HasReturn() {
		return
	}
	switch target.What {
	case pysrc.WhatClass, pysrc.WhatException, pysrc.WhatProperty:
		return
	}
	if strings.HasSuffix(target.QualName, ".__init__") {
		return
	}

	foundReturn := -1
	for i := 0; i < buf.Len(); i++ {
		kw, _, ok := fieldParts(buf.At(i))
		if !ok {
			continue
		}
		switch kw {
		case "rtype":
			// Manual return-type annotation wins.
			return
		case "return", "returns":
			if foundReturn < 0 {
				foundReturn = i
			}
		}
	}

	formatted := markup.TypeSpan(render.Render(hints[annotation.ReturnKey], cfg))

	if foundReturn >= 0 {
		if !opts.UseRType {
			foldReturn(buf, foundReturn, formatted)
			return
		}
		buf.Insert(foundReturn, ":rtype: "+formatted)
		return
	}

	blocks := parseBlocks(buf.Lines())
	insert := buf.Len()
	padAfter := false
	if at, ok := afterParamFields(blocks, buf.Lines()); ok {
		insert = at
	} else if at, ok := beforeFirstNonText(blocks); ok {
		insert = at
		// Keep the field from abutting the directive or example below.
		padAfter = true
	}
	if insert == buf.Len() {
		// Separate the field from a preceding paragraph.
		if buf.Len() > 0 && !precedingIsField(buf) {
			buf.Append("")
		}
		buf.Append(":rtype: " + formatted)
		return
	}
	buf.Insert(insert, ":rtype: "+formatted)
	if padAfter {
		buf.Insert(insert+1, "")
	}
}

// foldReturn interleaves the rendered type into an existing return
// description: ":return: desc" becomes ":return: TYPE -- desc". A line
// that already carries the separator is left untouched.
func foldReturn(buf *Buffer, at int, formatted string) {
	line := buf.At(at)
	if strings.Contains(line, " -- ") {
		return
	}
	parts := strings.SplitN(line, ":", 3)
	desc := strings.TrimSpace(parts[2])
	if desc == "" {
		buf.Replace(at, ":return: "+formatted)
		return
	}
	buf.Replace(at, ":return: "+formatted+" -- "+desc)
}

func precedingIsField(buf *Buffer) bool {
	kw, _, ok := fieldParts(buf.At(buf.Len() - 1))
	return ok && (paramKeywords[kw] || kw == "type" || kw == "return" || kw == "returns")
}
