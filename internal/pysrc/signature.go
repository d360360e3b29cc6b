package pysrc

import (
	"fmt"
	"strings"
)

// parseDef decomposes a joined `def` header into its name, parameter list
// and return annotation. Both annotations stay as raw source text.
func parseDef(text string) (name string, params []Param, ret string, err error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "async ")
	body, ok := strings.CutPrefix(text, "def ")
	if !ok {
		return "", nil, "", fmt.Errorf("not a def statement")
	}
	open := strings.IndexByte(body, '(')
	if open < 0 {
		return "", nil, "", fmt.Errorf("missing parameter list")
	}
	name = strings.TrimSpace(body[:open])
	if !isIdent(name) {
		return "", nil, "", fmt.Errorf("bad function name %q", name)
	}
	inner, rest, ok := matchParen(body[open:])
	if !ok {
		return "", nil, "", fmt.Errorf("unbalanced parameter list")
	}
	params, err = parseParams(inner)
	if err != nil {
		return "", nil, "", err
	}
	rest = strings.TrimSpace(rest)
	if after, hasRet := strings.CutPrefix(rest, "->"); hasRet {
		rest = strings.TrimSpace(after)
		colon := lastTop(rest, ':')
		if colon < 0 {
			return "", nil, "", fmt.Errorf("missing colon after return annotation")
		}
		ret = strings.TrimSpace(rest[:colon])
	} else if !strings.HasPrefix(rest, ":") {
		return "", nil, "", fmt.Errorf("missing colon after parameter list")
	}
	return name, params, ret, nil
}

func parseParams(inner string) ([]Param, error) {
	var params []Param
	seenStar := false
	for _, item := range SplitTop(inner, ',') {
		item = strings.TrimSpace(item)
		switch {
		case item == "":
			continue
		case item == "/":
			for i := range params {
				if params[i].Kind == ParamPositional {
					params[i].Kind = ParamPositionalOnly
				}
			}
			continue
		case item == "*":
			seenStar = true
			continue
		}
		kind := ParamPositional
		if seenStar {
			kind = ParamKeywordOnly
		}
		if strings.HasPrefix(item, "**") {
			kind = ParamVarKeyword
			item = item[2:]
		} else if strings.HasPrefix(item, "*") {
			kind = ParamVarPositional
			seenStar = true
			item = item[1:]
		}
		p := Param{Kind: kind}
		colon := firstTop(item, ':')
		eq := topLevelAssign(item)
		// An unannotated default may contain a lambda colon; only a colon
		// ahead of the '=' introduces an annotation.
		if colon >= 0 && (eq < 0 || colon < eq) {
			p.Name = strings.TrimSpace(item[:colon])
			annPart := item[colon+1:]
			if ann, def, hasDef := cutTop(annPart, '='); hasDef {
				p.Annotation = strings.TrimSpace(ann)
				p.Default = strings.TrimSpace(def)
				p.HasDefault = true
			} else {
				p.Annotation = strings.TrimSpace(annPart)
			}
		} else if eq >= 0 {
			p.Name = strings.TrimSpace(item[:eq])
			p.Default = strings.TrimSpace(item[eq+1:])
			p.HasDefault = true
		} else {
			p.Name = strings.TrimSpace(item)
		}
		if !isIdent(p.Name) {
			return nil, fmt.Errorf("bad parameter name %q", p.Name)
		}
		params = append(params, p)
	}
	return params, nil
}

// parseClass decomposes a joined `class` header into the class name and its
// raw base list.
func parseClass(text string) (name string, bases []string, err error) {
	body, ok := strings.CutPrefix(strings.TrimSpace(text), "class ")
	if !ok {
		if rest, bare := strings.CutPrefix(strings.TrimSpace(text), "class:"); bare && rest == "" {
			return "", nil, fmt.Errorf("missing class name")
		}
		return "", nil, fmt.Errorf("not a class statement")
	}
	body = strings.TrimSpace(body)
	if open := strings.IndexByte(body, '('); open >= 0 {
		name = strings.TrimSpace(body[:open])
		inner, _, balanced := matchParen(body[open:])
		if !balanced {
			return "", nil, fmt.Errorf("unbalanced base list")
		}
		for _, b := range SplitTop(inner, ',') {
			b = strings.TrimSpace(b)
			if b != "" {
				bases = append(bases, b)
			}
		}
	} else {
		name = strings.TrimSpace(strings.TrimSuffix(body, ":"))
	}
	if !isIdent(name) {
		return "", nil, fmt.Errorf("bad class name %q", name)
	}
	return name, bases, nil
}

// matchParen takes text beginning with '(' and returns the contents of the
// balanced group plus everything after the closing parenthesis.
func matchParen(text string) (inner, rest string, ok bool) {
	if len(text) == 0 || text[0] != '(' {
		return "", "", false
	}
	depth := 0
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
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
			depth--
			if depth == 0 {
				return text[1:i], text[i+1:], true
			}
		}
	}
	return "", "", false
}

// splitTop splits on a separator at bracket depth zero, skipping string
// literals.
func SplitTop(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
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
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// cutTop splits at the first top-level occurrence of the separator.
func cutTop(s string, sep byte) (before, after string, found bool) {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
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
			depth--
		case sep:
			if depth == 0 {
				// Skip comparison and walrus operators.
				if sep == '=' {
					if i+1 < len(s) && s[i+1] == '=' {
						i++
						continue
					}
					if i > 0 && strings.ContainsRune("=!<>:", rune(s[i-1])) {
						continue
					}
				}
				return s[:i], s[i+1:], true
			}
		}
	}
	return s, "", false
}

// firstTop finds the first top-level occurrence of a separator.
func firstTop(s string, sep byte) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
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
			depth--
		case sep:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// lastTop finds the last top-level occurrence of a separator.
func lastTop(s string, sep byte) int {
	depth := 0
	var quote byte
	last := -1
	for i := 0; i < len(s); i++ {
		c := s[i]
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
			depth--
		case sep:
			if depth == 0 {
				last = i
			}
		}
	}
	return last
}

// topLevelAssign returns the index of a plain assignment's '=' sign, or -1
// when the statement is not an assignment.
func topLevelAssign(text string) int {
	depth := 0
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
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
			depth--
		case '=':
			if depth != 0 {
				continue
			}
			if i+1 < len(text) && text[i+1] == '=' {
				i++
				continue
			}
			if i > 0 && strings.ContainsRune("=!<>+-*/%&|^:@", rune(text[i-1])) {
				return -1
			}
			return i
		}
	}
	return -1
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
