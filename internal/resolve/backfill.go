package resolve

import (
	"strings"

	"typedoc/internal/annotation"
	"typedoc/internal/diag"
	"typedoc/internal/pysrc"
)

// BackfillTypeComments recovers annotations from the type comments of an
// unannotated callable. It is a pure function over the callable's source
// text: the signature lines are scanned for `# type:` comments, which come
// in two layouts — one combined comment `# type: (int, str) -> bool`, or
// per-parameter comments with a `# type: (...) -> bool` return comment.
// Unusable comments degrade to warnings; whatever parsed is returned.
func BackfillTypeComments(source string, params []pysrc.Param, resolve annotation.Resolver, target string, rep diag.Reporter) annotation.Map {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	lines := dedent(strings.Split(source, "\n"))

	defs := 0
	defLine := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "def ") || strings.HasPrefix(line, "async def ") {
			defs++
			defLine = i
		}
	}
	if defs != 1 {
		diag.Warnf(rep, diag.CommentAmbiguousSource, target,
			"did not find exactly one function definition in the source of %q", target)
		return nil
	}

	type lineComment struct {
		code    string
		comment string
	}
	// Collect comments from the signature lines plus the leading body
	// lines: the return comment conventionally sits on the first line of
	// the body.
	var comments []lineComment
	depth := 0
	sigDone := false
	for i := defLine; i < len(lines); i++ {
		code, comment, d := splitComment(lines[i], depth)
		depth = d
		if strings.HasPrefix(comment, "type:") {
			comments = append(comments, lineComment{code: code, comment: strings.TrimSpace(comment[len("type:"):])})
		}
		if !sigDone {
			if depth == 0 && strings.HasSuffix(strings.TrimSpace(code), ":") {
				sigDone = true
			}
			continue
		}
		if strings.TrimSpace(code) != "" {
			break
		}
	}
	if len(comments) == 0 {
		return nil
	}

	hints := annotation.Map{}
	parse := func(expr, name string) {
		v, err := annotation.Parse(expr, resolve)
		if err != nil {
			diag.Warnf(rep, diag.CommentUnparseable, target,
				"cannot parse type comment %q for %q", expr, target)
			return
		}
		hints[name] = v
	}

	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.Name)
	}

	var perArg []lineComment
	for _, c := range comments {
		lhs, ret, hasRet := strings.Cut(c.comment, "->")
		if !hasRet {
			perArg = append(perArg, c)
			continue
		}
		parse(strings.TrimSpace(ret), annotation.ReturnKey)
		lhs = strings.TrimSpace(lhs)
		lhs = strings.TrimPrefix(lhs, "(")
		lhs = strings.TrimSuffix(lhs, ")")
		args := make([]string, 0, 4)
		for _, a := range pysrc.SplitTop(lhs, ',') {
			a = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(a), "*"))
			if a != "" {
				args = append(args, a)
			}
		}
		if len(args) == 0 || (len(args) == 1 && args[0] == "...") {
			continue
		}
		matched := names
		if len(args) != len(matched) && len(matched) > 0 && (matched[0] == "self" || matched[0] == "cls") {
			matched = matched[1:]
		}
		if len(args) != len(matched) {
			diag.Warnf(rep, diag.CommentArgCount, target,
				"type comment of %q names %d arguments but the signature has %d", target, len(args), len(matched))
			continue
		}
		for i, a := range args {
			parse(a, matched[i])
		}
	}

	for _, c := range perArg {
		code := c.code
		// The first parameter may share its line with the def keyword.
		if open := strings.IndexByte(code, '('); open >= 0 && strings.Contains(code[:open], "def") {
			code = code[open+1:]
		}
		name := firstIdent(code)
		if name == "" {
			continue
		}
		found := false
		for _, n := range names {
			if n == name {
				found = true
				break
			}
		}
		if !found {
			diag.Warnf(rep, diag.CommentUnparseable, target,
				"type comment attached to unknown parameter %q of %q", name, target)
			continue
		}
		parse(c.comment, name)
	}
	if len(hints) == 0 {
		return nil
	}
	return hints
}

// splitComment separates one physical line into code and a trailing
// comment, carrying bracket depth across lines.
func splitComment(line string, depth int) (code, comment string, newDepth int) {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case '#':
			return line[:i], strings.TrimSpace(line[i+1:]), depth
		}
	}
	return line, "", depth
}

func firstIdent(code string) string {
	start := -1
	for i := 0; i < len(code); i++ {
		c := code[i]
		isIdent := c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || (start >= 0 && '0' <= c && c <= '9')
		if isIdent {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return code[start:i]
		}
	}
	if start >= 0 {
		return code[start:]
	}
	return ""
}

// dedent strips the common leading whitespace of all non-blank lines.
func dedent(lines []string) []string {
	margin := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		ind := len(line) - len(trimmed)
		if margin < 0 || ind < margin {
			margin = ind
		}
	}
	if margin <= 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		if len(line) >= margin {
			out[i] = line[margin:]
		} else {
			out[i] = strings.TrimLeft(line, " \t")
		}
	}
	return out
}
