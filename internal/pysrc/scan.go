package pysrc

import (
	"strings"

	"typedoc/internal/annotation"
	"typedoc/internal/diag"
)

// Scan parses one module's source into a Module descriptor. The scanner is
// line-oriented: it tracks indentation to recover qualified names, joins
// bracketed and backslash-continued statements into logical lines, and
// records imports, assignments, guard blocks, classes and callables. It
// never fails outright; malformed constructs produce diagnostics and are
// skipped.
func Scan(name, path, src string, rep diag.Reporter) *Module {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	s := &scanner{
		mod: &Module{
			Name:        name,
			Path:        path,
			Source:      src,
			Assignments: make(map[string]string),
			Names:       make(map[string]*annotation.Value),
		},
		lines:      strings.Split(src, "\n"),
		rep:        rep,
		classIndex: make(map[string]*Callable),
	}
	s.run()
	return s.mod
}

type frame struct {
	indent  int
	name    string
	isClass bool
	isFunc  bool
}

type scanner struct {
	mod        *Module
	lines      []string
	i          int
	rep        diag.Reporter
	stack      []frame
	decorators []string
	classIndex map[string]*Callable
}

func (s *scanner) run() {
	for s.i < len(s.lines) {
		raw := s.lines[s.i]
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			s.i++
			continue
		}
		indent := indentOf(raw)
		s.popTo(indent)

		switch {
		case strings.HasPrefix(trimmed, "@"):
			text, next := s.logical(s.i)
			s.decorators = append(s.decorators, decoratorName(text))
			s.i = next
		case strings.HasPrefix(trimmed, "def ") || strings.HasPrefix(trimmed, "async def "):
			s.scanDef(indent)
		case strings.HasPrefix(trimmed, "class ") || strings.HasPrefix(trimmed, "class:"):
			s.scanClass(indent)
		case indent == 0 && (strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "from ")):
			text, next := s.logical(s.i)
			s.scanImport(text)
			s.i = next
			s.decorators = nil
		case indent == 0 && isGuardHeader(trimmed):
			s.scanGuard()
			s.decorators = nil
		case indent == 0:
			text, next := s.logical(s.i)
			s.scanAssignment(text)
			s.i = next
			s.decorators = nil
		default:
			s.i++
			s.decorators = nil
		}
	}
}

// popTo drops frames whose bodies ended before the given indent.
func (s *scanner) popTo(indent int) {
	for len(s.stack) > 0 && indent <= s.stack[len(s.stack)-1].indent {
		s.stack = s.stack[:len(s.stack)-1]
	}
}

// qualify builds the qualified name of a definition at the current nesting.
// Definitions inside a function body get the conventional "<locals>" marker.
func (s *scanner) qualify(name string) string {
	if len(s.stack) == 0 {
		return name
	}
	top := s.stack[len(s.stack)-1]
	if top.isFunc {
		return top.name + ".<locals>." + name
	}
	return top.name + "." + name
}

func (s *scanner) insideFunc() bool {
	for _, f := range s.stack {
		if f.isFunc {
			return true
		}
	}
	return false
}

func (s *scanner) scanDef(indent int) {
	startLine := s.i
	text, next := s.logical(s.i)
	s.i = next
	decorators := s.decorators
	s.decorators = nil

	name, params, ret, err := parseDef(text)
	if err != nil {
		diag.WarnAtf(s.rep, diag.ScanBadSignature, s.qualify("?"), s.mod.Path, startLine+1,
			"cannot parse signature: %v", err)
		s.stack = append(s.stack, frame{indent: indent, name: s.qualify("?"), isFunc: true})
		return
	}
	qual := s.qualify(name)

	what := WhatFunction
	inClass := len(s.stack) > 0 && s.stack[len(s.stack)-1].isClass
	if inClass {
		what = WhatMethod
	}
	for _, d := range decorators {
		if d == "property" || strings.HasSuffix(d, ".setter") || strings.HasSuffix(d, ".getter") {
			what = WhatProperty
		}
	}

	local := s.insideFunc()
	end := s.blockEnd(startLine, indent)
	c := &Callable{
		QualName:   qual,
		What:       what,
		Module:     s.mod,
		Params:     params,
		Return:     ret,
		Source:     strings.Join(s.lines[startLine:end], "\n"),
		Doc:        s.extractDoc(next, indent),
		Decorators: decorators,
		Line:       startLine + 1,
	}
	if !local {
		s.mod.Callables = append(s.mod.Callables, c)
		if inClass && name == "__init__" {
			owner := s.stack[len(s.stack)-1].name
			if cls, ok := s.classIndex[owner]; ok {
				cls.Init = c
			}
		}
	}
	s.stack = append(s.stack, frame{indent: indent, name: qual, isFunc: true})
}

func (s *scanner) scanClass(indent int) {
	startLine := s.i
	text, next := s.logical(s.i)
	s.i = next
	decorators := s.decorators
	s.decorators = nil

	name, bases, err := parseClass(text)
	if err != nil {
		diag.WarnAtf(s.rep, diag.ScanBadSignature, s.qualify("?"), s.mod.Path, startLine+1,
			"cannot parse class header: %v", err)
		s.stack = append(s.stack, frame{indent: indent, name: s.qualify("?"), isClass: true})
		return
	}
	qual := s.qualify(name)

	what := WhatClass
	for _, b := range bases {
		if strings.Contains(b, "Error") || strings.Contains(b, "Exception") {
			what = WhatException
		}
	}

	if !s.insideFunc() {
		end := s.blockEnd(startLine, indent)
		c := &Callable{
			QualName:   qual,
			What:       what,
			Module:     s.mod,
			Source:     strings.Join(s.lines[startLine:end], "\n"),
			Doc:        s.extractDoc(next, indent),
			Decorators: decorators,
			Line:       startLine + 1,
		}
		if _, dup := s.classIndex[qual]; dup {
			diag.WarnAtf(s.rep, diag.ScanDuplicateDefinition, qual, s.mod.Path, startLine+1,
				"class %s defined more than once", qual)
		}
		s.classIndex[qual] = c
		s.mod.Callables = append(s.mod.Callables, c)
		s.mod.Names[qual] = annotation.MakeClass(s.mod.Name, qual)
	}
	s.stack = append(s.stack, frame{indent: indent, name: qual, isClass: true})
}

func (s *scanner) scanImport(text string) {
	imports, froms, ok := ParseImport(text)
	if !ok {
		return
	}
	s.mod.Imports = append(s.mod.Imports, imports...)
	s.mod.FromImports = append(s.mod.FromImports, froms...)
}

// ParseImport parses a single import statement into its bindings. It is
// shared with the resolver, which interprets the statements captured from
// guard blocks. ok is false when the text is not an import statement.
func ParseImport(text string) (imports []Import, froms []FromImport, ok bool) {
	text = strings.TrimSpace(text)
	if rest, plain := strings.CutPrefix(text, "import "); plain {
		for _, piece := range SplitTop(rest, ',') {
			mod, alias := cutAs(piece)
			if mod != "" {
				imports = append(imports, Import{Module: mod, As: alias})
			}
		}
		return imports, nil, true
	}
	rest, fromForm := strings.CutPrefix(text, "from ")
	if !fromForm {
		return nil, nil, false
	}
	mod, names, found := strings.Cut(rest, " import ")
	if !found {
		return nil, nil, false
	}
	mod = strings.TrimSpace(mod)
	names = strings.TrimSpace(names)
	names = strings.TrimPrefix(names, "(")
	names = strings.TrimSuffix(names, ")")
	for _, piece := range SplitTop(names, ',') {
		name, alias := cutAs(piece)
		if name != "" {
			froms = append(froms, FromImport{Module: mod, Name: name, As: alias})
		}
	}
	return nil, froms, true
}

// scanGuard collects the body of a top-level `if TYPE_CHECKING:` block.
func (s *scanner) scanGuard() {
	headerLine := s.i
	s.i++
	var statements []string
	for s.i < len(s.lines) {
		raw := s.lines[s.i]
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			s.i++
			continue
		}
		if indentOf(raw) == 0 {
			break
		}
		text, next := s.logical(s.i)
		statements = append(statements, text)
		s.i = next
	}
	s.mod.Guards = append(s.mod.Guards, GuardBlock{Line: headerLine + 1, Statements: statements})
}

// scanAssignment records module-level name bindings: TypeVar, ParamSpec and
// NewType declarations plus type aliases. The right-hand side stays raw;
// interpretation happens lazily so aliases may reference later definitions.
func (s *scanner) scanAssignment(text string) {
	eq := topLevelAssign(text)
	if eq < 0 {
		return
	}
	lhs := strings.TrimSpace(text[:eq])
	rhs := strings.TrimSpace(text[eq+1:])
	if rhs == "" {
		return
	}
	name := lhs
	if n, ann, hasAnn := cutTop(lhs, ':'); hasAnn {
		// Only alias-style annotated bindings introduce type names.
		if strings.TrimSpace(ann) != "TypeAlias" {
			return
		}
		name = strings.TrimSpace(n)
	}
	if !isIdent(name) {
		return
	}
	s.mod.Assignments[name] = rhs
}

func isGuardHeader(trimmed string) bool {
	cond, ok := strings.CutPrefix(trimmed, "if ")
	if !ok {
		return false
	}
	cond = strings.TrimSpace(strings.TrimSuffix(cond, ":"))
	return cond == "TYPE_CHECKING" || strings.HasSuffix(cond, ".TYPE_CHECKING")
}

// blockEnd returns the exclusive end index of the block opened at line
// start: the first subsequent non-blank line indented at or under the
// opener.
func (s *scanner) blockEnd(start, indent int) int {
	end := start + 1
	for j := start + 1; j < len(s.lines); j++ {
		trimmed := strings.TrimSpace(s.lines[j])
		if trimmed == "" {
			continue
		}
		if indentOf(s.lines[j]) <= indent {
			break
		}
		end = j + 1
	}
	return end
}

// extractDoc pulls a triple-quoted docstring from the body starting after
// the header line, cleaned the way documentation tools normalize them.
func (s *scanner) extractDoc(bodyStart, headerIndent int) []string {
	j := bodyStart
	for j < len(s.lines) && strings.TrimSpace(s.lines[j]) == "" {
		j++
	}
	if j >= len(s.lines) || indentOf(s.lines[j]) <= headerIndent {
		return nil
	}
	t := strings.TrimSpace(s.lines[j])
	for len(t) > 0 && strings.ContainsRune("rRuUbB", rune(t[0])) {
		t = t[1:]
	}
	var delim string
	switch {
	case strings.HasPrefix(t, `"""`):
		delim = `"""`
	case strings.HasPrefix(t, "'''"):
		delim = "'''"
	default:
		return nil
	}
	t = t[len(delim):]
	if idx := strings.Index(t, delim); idx >= 0 {
		return cleandoc(t[:idx])
	}
	content := []string{t}
	for j++; j < len(s.lines); j++ {
		line := s.lines[j]
		if idx := strings.Index(line, delim); idx >= 0 {
			content = append(content, line[:idx])
			return cleandoc(strings.Join(content, "\n"))
		}
		content = append(content, line)
	}
	diag.WarnAtf(s.rep, diag.ScanUnterminatedString, s.qualify("?"), s.mod.Path, bodyStart+1,
		"unterminated docstring")
	return cleandoc(strings.Join(content, "\n"))
}

// lineState carries bracket depth and open-string state across the physical
// lines of one logical line.
type lineState struct {
	depth  int
	quote  byte
	triple bool
}

// consume processes one physical line, updating bracket and string state,
// and returns the line with any trailing comment removed.
func (st *lineState) consume(line string) string {
	i := 0
	for i < len(line) {
		c := line[i]
		if st.quote != 0 {
			if c == '\\' {
				i += 2
				continue
			}
			if c == st.quote {
				if st.triple {
					if strings.HasPrefix(line[i:], strings.Repeat(string(c), 3)) {
						st.quote, st.triple = 0, false
						i += 3
						continue
					}
				} else {
					st.quote = 0
				}
			}
			i++
			continue
		}
		switch c {
		case '#':
			return line[:i]
		case '(', '[', '{':
			st.depth++
		case ')', ']', '}':
			if st.depth > 0 {
				st.depth--
			}
		case '\'', '"':
			if strings.HasPrefix(line[i:], strings.Repeat(string(c), 3)) {
				st.quote, st.triple = c, true
				i += 3
				continue
			}
			st.quote = c
		}
		i++
	}
	return line
}

// logical joins physical lines into one statement, following open brackets
// and backslash continuations, with comments stripped. It returns the
// joined text and the index of the next unread line.
func (s *scanner) logical(start int) (string, int) {
	var st lineState
	var parts []string
	i := start
	for i < len(s.lines) {
		code := st.consume(s.lines[i])
		code = strings.TrimRight(code, " \t")
		cont := strings.HasSuffix(code, "\\")
		if cont {
			code = strings.TrimSuffix(code, "\\")
		}
		parts = append(parts, strings.TrimSpace(code))
		i++
		if st.quote == 0 && st.depth == 0 && !cont {
			break
		}
	}
	return strings.Join(parts, " "), i
}

func indentOf(line string) int {
	n := 0
	for _, c := range line {
		switch c {
		case ' ':
			n++
		case '\t':
			n += 8 - n%8
		default:
			return n
		}
	}
	return n
}

func decoratorName(text string) string {
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "@"))
	if idx := strings.IndexByte(text, '('); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func cutAs(piece string) (name, alias string) {
	piece = strings.TrimSpace(piece)
	if before, after, ok := strings.Cut(piece, " as "); ok {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return piece, ""
}

// cleandoc normalizes a docstring: the first line loses its leading
// whitespace, the rest lose their common margin, and blank edges are
// trimmed.
func cleandoc(text string) []string {
	lines := strings.Split(text, "\n")
	margin := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		ind := len(line) - len(trimmed)
		if margin < 0 || ind < margin {
			margin = ind
		}
	}
	out := make([]string, 0, len(lines))
	out = append(out, strings.TrimLeft(lines[0], " \t"))
	for _, line := range lines[1:] {
		if margin > 0 && len(line) >= margin {
			line = line[margin:]
		} else {
			line = strings.TrimLeft(line, " \t")
		}
		out = append(out, strings.TrimRight(line, " \t"))
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}
