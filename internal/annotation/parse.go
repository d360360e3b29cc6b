package annotation

import (
	"fmt"
	"strings"
	"unicode"
)

// Parse turns an annotation expression ("Optional[Dict[str, int]]",
// "int | None", "'MyClass'") into a Value. Names are resolved through the
// supplied resolver; a nil resolver falls back to DefaultResolver. Names
// the resolver does not know become forward references, never errors —
// an error is returned only for text that is not an annotation expression
// at all.
func Parse(expr string, resolve Resolver) (*Value, error) {
	if resolve == nil {
		resolve = DefaultResolver
	}
	p := &parser{src: expr, resolve: resolve}
	v, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, fmt.Errorf("unexpected %q at offset %d in %q", p.src[p.pos], p.pos, p.src)
	}
	return v, nil
}

type parser struct {
	src     string
	pos     int
	resolve Resolver
}

type parsedArg struct {
	val *Value
	raw string
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return
		}
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// parseExpr handles the top level of the grammar: a primary, optionally
// followed by |-joined union members.
func (p *parser) parseExpr() (*Value, error) {
	first, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() != '|' {
		return first, nil
	}
	members := []*Value{first}
	for {
		p.skipSpace()
		if p.peek() != '|' {
			break
		}
		p.pos++
		next, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		members = append(members, next)
	}
	return MakeBarUnion(members...), nil
}

func (p *parser) parsePrimary() (*Value, error) {
	p.skipSpace()
	c := p.peek()
	switch {
	case c == 0:
		return nil, fmt.Errorf("unexpected end of annotation %q", p.src)
	case c == '.':
		if strings.HasPrefix(p.src[p.pos:], "...") {
			p.pos += 3
			return MakeEllipsis(), nil
		}
		return nil, fmt.Errorf("stray %q at offset %d in %q", c, p.pos, p.src)
	case c == '\'' || c == '"':
		content, err := p.parseString()
		if err != nil {
			return nil, err
		}
		// A quoted annotation is deferred: evaluate its content if it
		// parses, otherwise keep the bare referenced name.
		if inner, err := Parse(content, p.resolve); err == nil {
			return inner, nil
		}
		return MakeForwardRef(content), nil
	case c == '(':
		return p.parseGroup()
	case c == '-' || unicode.IsDigit(rune(c)):
		start := p.pos
		p.pos++
		for p.pos < len(p.src) && (unicode.IsDigit(rune(p.src[p.pos])) || p.src[p.pos] == '.' || p.src[p.pos] == 'e' || p.src[p.pos] == '+' || p.src[p.pos] == '-') {
			p.pos++
		}
		return MakeForwardRef(p.src[start:p.pos]), nil
	case isNameStart(c):
		return p.parseReference()
	default:
		return nil, fmt.Errorf("unexpected %q at offset %d in %q", c, p.pos, p.src)
	}
}

// parseReference reads a dotted name and any trailing subscripts. When the
// name itself is unknown the whole subscripted expression stays one forward
// reference, so it round-trips to the page as written.
func (p *parser) parseReference() (*Value, error) {
	start := p.pos
	name := p.parseName()
	base, ok := p.resolve(name)
	if !ok {
		base = MakeForwardRef(name)
	}
	for {
		p.skipSpace()
		if p.peek() != '[' {
			return base, nil
		}
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		if !ok {
			base = MakeForwardRef(strings.TrimSpace(p.src[start:p.pos]))
			continue
		}
		base = applySubscript(base, args)
	}
}

func (p *parser) parseName() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if isNameStart(c) || unicode.IsDigit(rune(c)) {
			p.pos++
			continue
		}
		if c == '.' && p.pos+1 < len(p.src) && isNameStart(p.src[p.pos+1]) {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *parser) parseString() (string, error) {
	quote := p.src[p.pos]
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '\\' && p.pos+1 < len(p.src) {
			b.WriteByte(p.src[p.pos+1])
			p.pos += 2
			continue
		}
		if c == quote {
			p.pos++
			return b.String(), nil
		}
		b.WriteByte(c)
		p.pos++
	}
	return "", fmt.Errorf("unterminated string in annotation %q", p.src)
}

func (p *parser) parseGroup() (*Value, error) {
	p.pos++ // consume '('
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return MakeGroup(), nil
	}
	var members []*Value
	sawComma := false
	for {
		member, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		members = append(members, member)
		p.skipSpace()
		switch p.peek() {
		case ',':
			sawComma = true
			p.pos++
			p.skipSpace()
			if p.peek() == ')' {
				p.pos++
				return MakeGroup(members...), nil
			}
		case ')':
			p.pos++
			// (x) is just parenthesization, (x,) is a tuple of one.
			if len(members) == 1 && !sawComma {
				return members[0], nil
			}
			return MakeGroup(members...), nil
		default:
			return nil, fmt.Errorf("expected , or ) at offset %d in %q", p.pos, p.src)
		}
	}
}

// parseArgs consumes a [...] subscript. Each argument keeps both its parsed
// value and its raw source slice; Literal arguments use the raw form.
func (p *parser) parseArgs() ([]parsedArg, error) {
	p.pos++ // consume '['
	var args []parsedArg
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		return args, nil
	}
	for {
		p.skipSpace()
		start := p.pos
		var val *Value
		var err error
		if p.peek() == '[' {
			val, err = p.parseBracketList()
		} else {
			val, err = p.parseExpr()
		}
		if err != nil {
			return nil, err
		}
		args = append(args, parsedArg{val: val, raw: strings.TrimSpace(p.src[start:p.pos])})
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return args, nil
		default:
			return nil, fmt.Errorf("expected , or ] at offset %d in %q", p.pos, p.src)
		}
	}
}

// parseBracketList consumes the [arg, ...] parameter list of a Callable
// subscript. It reuses the group shape as the carrier; applySubscript
// unwraps it.
func (p *parser) parseBracketList() (*Value, error) {
	p.pos++ // consume '['
	p.skipSpace()
	if p.peek() == ']' {
		p.pos++
		v := MakeGroup()
		v.Name = "[]"
		return v, nil
	}
	var members []*Value
	for {
		member, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		members = append(members, member)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			v := MakeGroup(members...)
			v.Name = "[]"
			return v, nil
		default:
			return nil, fmt.Errorf("expected , or ] at offset %d in %q", p.pos, p.src)
		}
	}
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// applySubscript parameterizes a base annotation with subscript arguments,
// applying the per-name special cases of the typing vocabulary.
func applySubscript(base *Value, args []parsedArg) *Value {
	vals := make([]*Value, 0, len(args))
	for _, a := range args {
		vals = append(vals, a.val)
	}

	typingBase := base.Kind == KindClass && (base.Module == "typing" || base.Module == "typing_extensions")
	if typingBase && base.Name == "Literal" {
		lits := make([]string, 0, len(args))
		for _, a := range args {
			lits = append(lits, pyRepr(a.raw))
		}
		return MakeLiteral(lits...)
	}
	if base.Name == "Callable" && (typingBase || (base.Kind == KindClass && base.Module == "collections.abc")) && len(vals) > 0 {
		flat := make([]*Value, 0, len(vals))
		if vals[0].Kind == KindGroup && vals[0].Name == "[]" {
			flat = append(flat, vals[0].Args...)
		} else {
			flat = append(flat, vals[0])
		}
		flat = append(flat, vals[1:]...)
		return MakeCallable(base.Module, flat...)
	}

	// A single parenthesized argument behaves like the spread of its
	// members; a single empty tuple collapses to no arguments at all.
	if len(vals) == 1 && vals[0].Kind == KindGroup && vals[0].Name != "[]" {
		vals = vals[0].Args
	}

	if typingBase {
		switch base.Name {
		case "Optional":
			if len(vals) == 1 {
				return MakeOptional(vals[0])
			}
			return MakeUnion(append(vals, MakeNone())...)
		case "Union":
			return MakeUnion(vals...)
		case "ClassVar":
			if len(vals) == 1 {
				return MakeClassVar(vals[0])
			}
		case "Generic":
			return MakeGeneric(vals...)
		case "Tuple":
			return MakeTuple(vals...)
		}
	}
	return base.WithArgs(vals)
}

// pyRepr normalizes a literal's source text to its repr-style spelling:
// strings get single quotes, everything else stays verbatim.
func pyRepr(raw string) string {
	if raw == "" {
		return raw
	}
	if raw[0] == '\'' || raw[0] == '"' {
		content := raw[1 : len(raw)-1]
		if raw[0] == '"' {
			content = strings.ReplaceAll(content, "\\\"", "\"")
		}
		content = strings.ReplaceAll(content, "'", "\\'")
		return "'" + content + "'"
	}
	return raw
}
