// Package resolve turns the raw annotation text carried by scanned
// callables into classified annotation values. It owns the module
// namespaces: lazy interpretation of TypeVar, ParamSpec, NewType and alias
// assignments, guarded-import resolution, and the type-comment backfill
// fallback for unannotated signatures.
package resolve

import (
	"strings"
	"sync"

	"typedoc/internal/annotation"
	"typedoc/internal/diag"
	"typedoc/internal/pysrc"
)

// Options tunes resolution behavior.
type Options struct {
	// Mocks lists module names (and their submodules) whose guarded
	// imports are satisfied with synthesized stand-ins instead of a
	// missing-module warning.
	Mocks []string
}

// Context resolves names across a set of scanned modules. It is safe for
// concurrent use: all namespace reads and memoizing writes happen under one
// lock.
type Context struct {
	set  *pysrc.ModuleSet
	opts Options
	rep  diag.Reporter

	mu         sync.Mutex
	guardsDone map[string]bool
	guardsBusy map[string]bool
	interp     map[string]bool
}

func NewContext(set *pysrc.ModuleSet, opts Options, rep diag.Reporter) *Context {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	if set == nil {
		set = pysrc.NewModuleSet()
	}
	return &Context{
		set:        set,
		opts:       opts,
		rep:        rep,
		guardsDone: make(map[string]bool),
		guardsBusy: make(map[string]bool),
		interp:     make(map[string]bool),
	}
}

// ResolverFor returns the name resolver scoped to one module's namespace.
// A nil module falls back to builtins and the standard typing names.
func (ctx *Context) ResolverFor(m *pysrc.Module) annotation.Resolver {
	if m == nil {
		return annotation.DefaultResolver
	}
	return func(name string) (*annotation.Value, bool) {
		ctx.mu.Lock()
		defer ctx.mu.Unlock()
		return ctx.lookupLocked(m, name, make(map[string]bool))
	}
}

// Hints resolves the annotation map for one callable. Declared annotations
// win; when the signature carries none, type comments are backfilled from
// the source text. Classes resolve through their constructor.
func (ctx *Context) Hints(c *pysrc.Callable) annotation.Map {
	t := c.Target()
	if t.Module != nil {
		ctx.ResolveGuards(t.Module)
	}
	res := ctx.ResolverFor(t.Module)
	path := ""
	if t.Module != nil {
		path = t.Module.Path
	}

	hints := annotation.Map{}
	for _, p := range t.Params {
		if p.Annotation == "" {
			continue
		}
		v, err := annotation.Parse(p.Annotation, res)
		if err != nil {
			diag.WarnAtf(ctx.rep, diag.ResolveBadAnnotation, c.QualName, path, t.Line,
				"cannot parse annotation %q of parameter %q: %v", p.Annotation, p.Name, err)
			continue
		}
		hints[p.Name] = v
	}
	if t.Return != "" {
		v, err := annotation.Parse(t.Return, res)
		if err != nil {
			diag.WarnAtf(ctx.rep, diag.ResolveBadAnnotation, c.QualName, path, t.Line,
				"cannot parse return annotation %q: %v", t.Return, err)
		} else {
			hints[annotation.ReturnKey] = v
		}
	}
	if len(hints) == 0 {
		hints = BackfillTypeComments(t.Source, t.Params, res, c.QualName, ctx.rep)
	}
	ctx.warnForwardRefs(c, hints)
	return hints
}

// warnForwardRefs reports names that stayed unresolved after resolution,
// once per distinct name.
func (ctx *Context) warnForwardRefs(c *pysrc.Callable, hints annotation.Map) {
	seen := make(map[string]bool)
	var walk func(v *annotation.Value)
	walk = func(v *annotation.Value) {
		if v == nil {
			return
		}
		if v.Kind == annotation.KindForwardRef && !seen[v.Ref] {
			seen[v.Ref] = true
			diag.Warnf(ctx.rep, diag.ResolveForwardRef, c.QualName,
				"cannot resolve forward reference %q in type annotations of %q", v.Ref, c.QualName)
		}
		for _, a := range v.Args {
			walk(a)
		}
		for _, cst := range v.Constraints {
			walk(cst)
		}
		walk(v.Bound)
		walk(v.Super)
	}
	for _, v := range hints {
		walk(v)
	}
}

// lookupLocked resolves one possibly dotted name in a module's namespace.
// seen breaks cycles through self-referential aliases.
func (ctx *Context) lookupLocked(m *pysrc.Module, name string, seen map[string]bool) (*annotation.Value, bool) {
	key := m.Name + ":" + name
	if seen[key] {
		return nil, false
	}
	seen[key] = true

	// Direct hits first: classes keyed by their dotted qualified name,
	// plus anything guard resolution or memoization already bound.
	if v, ok := m.Names[name]; ok {
		return v, true
	}

	if !strings.Contains(name, ".") {
		if raw, ok := m.Assignments[name]; ok {
			if v, ok := ctx.interpretLocked(m, name, raw, seen); ok {
				return v, true
			}
		}
		for _, fi := range m.FromImports {
			bind := fi.As
			if bind == "" {
				bind = fi.Name
			}
			if bind == name {
				return ctx.resolveImportedLocked(fi.Module, fi.Name, seen)
			}
			if fi.Name == "*" {
				if v, ok := ctx.resolveStarLocked(fi.Module, name, seen); ok {
					return v, true
				}
			}
		}
		if v, ok := annotation.LookupBuiltin(name); ok {
			return v, true
		}
		return annotation.LookupModuleMember("typing", name)
	}

	at := strings.LastIndex(name, ".")
	prefix, attr := name[:at], name[at+1:]
	real, imported := ctx.substituteAlias(m, prefix)
	if src, ok := ctx.set.ByName(real); ok {
		ctx.resolveGuardsLocked(src)
		return ctx.lookupLocked(src, attr, seen)
	}
	if v, ok := annotation.LookupModuleMember(real, attr); ok {
		return v, true
	}
	if imported {
		// An attribute of a module outside the documented set: assume a
		// class reference, which is the common annotation case.
		return annotation.MakeClass(real, attr), true
	}
	return nil, false
}

// substituteAlias maps an attribute-access prefix through the module's
// plain imports. imported reports whether the prefix is known to name an
// imported module.
func (ctx *Context) substituteAlias(m *pysrc.Module, prefix string) (real string, imported bool) {
	head, rest, _ := strings.Cut(prefix, ".")
	for _, imp := range m.Imports {
		if imp.As != "" && imp.As == head {
			if rest == "" {
				return imp.Module, true
			}
			return imp.Module + "." + rest, true
		}
		if imp.As == "" && (imp.Module == prefix || imp.Module == head || strings.HasPrefix(imp.Module, head+".")) {
			return prefix, true
		}
	}
	return prefix, false
}

// resolveImportedLocked resolves `from module import name`. Members of
// modules outside the documented set degrade to plain class references so
// annotations against unscanned dependencies still render.
func (ctx *Context) resolveImportedLocked(module, name string, seen map[string]bool) (*annotation.Value, bool) {
	if src, ok := ctx.set.ByName(module); ok {
		ctx.resolveGuardsLocked(src)
		if v, ok := ctx.lookupLocked(src, name, seen); ok {
			return v, true
		}
		return nil, false
	}
	if v, ok := annotation.LookupModuleMember(module, name); ok {
		return v, true
	}
	return annotation.MakeClass(module, name), true
}

// resolveStarLocked handles a wildcard import: the name resolves if the
// source module defines it.
func (ctx *Context) resolveStarLocked(module, name string, seen map[string]bool) (*annotation.Value, bool) {
	if src, ok := ctx.set.ByName(module); ok {
		ctx.resolveGuardsLocked(src)
		return ctx.lookupLocked(src, name, seen)
	}
	return annotation.LookupModuleMember(module, name)
}

// interpretLocked gives meaning to a recorded module-level assignment:
// TypeVar, ParamSpec and NewType declarations construct their special
// values, anything else is treated as a type alias expression. Successful
// interpretations are memoized into the module namespace.
func (ctx *Context) interpretLocked(m *pysrc.Module, name, raw string, seen map[string]bool) (*annotation.Value, bool) {
	busy := m.Name + ":" + name
	if ctx.interp[busy] {
		return nil, false
	}
	ctx.interp[busy] = true
	defer delete(ctx.interp, busy)

	res := func(n string) (*annotation.Value, bool) {
		return ctx.lookupLocked(m, n, seen)
	}

	var v *annotation.Value
	callee, inner, isCall := splitCall(raw)
	if isCall {
		switch lastSegment(callee) {
		case "TypeVar":
			v = interpretTypeVar(name, inner, res)
		case "ParamSpec":
			v = interpretParamSpec(name, inner, res)
		case "NewType":
			v = interpretNewType(name, inner, res)
		}
	}
	if v == nil {
		parsed, err := annotation.Parse(raw, res)
		if err != nil {
			return nil, false
		}
		v = parsed
	}
	m.Names[name] = v
	return v, true
}

func interpretTypeVar(bind, inner string, res annotation.Resolver) *annotation.Value {
	name := bind
	var constraints []*annotation.Value
	var bound *annotation.Value
	covariant, contravariant := false, false
	for i, arg := range pysrc.SplitTop(inner, ',') {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		if i == 0 {
			if unquoted, ok := unquote(arg); ok {
				name = unquoted
			}
			continue
		}
		if k, val, isKw := cutKeyword(arg); isKw {
			switch k {
			case "bound":
				if b, err := annotation.Parse(val, res); err == nil {
					bound = b
				}
			case "covariant":
				covariant = val == "True"
			case "contravariant":
				contravariant = val == "True"
			}
			continue
		}
		if c, err := annotation.Parse(arg, res); err == nil {
			constraints = append(constraints, c)
		}
	}
	return annotation.MakeTypeVar(name, constraints, bound, covariant, contravariant)
}

func interpretParamSpec(bind, inner string, res annotation.Resolver) *annotation.Value {
	name := bind
	var bound *annotation.Value
	covariant, contravariant := false, false
	for i, arg := range pysrc.SplitTop(inner, ',') {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		if i == 0 {
			if unquoted, ok := unquote(arg); ok {
				name = unquoted
			}
			continue
		}
		if k, val, isKw := cutKeyword(arg); isKw {
			switch k {
			case "bound":
				if b, err := annotation.Parse(val, res); err == nil {
					bound = b
				}
			case "covariant":
				covariant = val == "True"
			case "contravariant":
				contravariant = val == "True"
			}
		}
	}
	return annotation.MakeParamSpec(name, bound, covariant, contravariant)
}

func interpretNewType(bind, inner string, res annotation.Resolver) *annotation.Value {
	name := bind
	var super *annotation.Value
	for i, arg := range pysrc.SplitTop(inner, ',') {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		switch i {
		case 0:
			if unquoted, ok := unquote(arg); ok {
				name = unquoted
			}
		case 1:
			if s, err := annotation.Parse(arg, res); err == nil {
				super = s
			}
		}
	}
	if super == nil {
		super = annotation.MakeAny()
	}
	return annotation.MakeNewType(name, super)
}

// splitCall decomposes `callee(inner)` into its parts.
func splitCall(raw string) (callee, inner string, ok bool) {
	open := strings.IndexByte(raw, '(')
	if open <= 0 || !strings.HasSuffix(raw, ")") {
		return "", "", false
	}
	callee = strings.TrimSpace(raw[:open])
	for _, c := range callee {
		if c != '.' && c != '_' && !('a' <= c && c <= 'z') && !('A' <= c && c <= 'Z') && !('0' <= c && c <= '9') {
			return "", "", false
		}
	}
	return callee, raw[open+1 : len(raw)-1], true
}

func lastSegment(dotted string) string {
	if at := strings.LastIndex(dotted, "."); at >= 0 {
		return dotted[at+1:]
	}
	return dotted
}

func cutKeyword(arg string) (key, val string, ok bool) {
	eq := strings.IndexByte(arg, '=')
	if eq <= 0 || (eq+1 < len(arg) && arg[eq+1] == '=') {
		return "", "", false
	}
	key = strings.TrimSpace(arg[:eq])
	for _, c := range key {
		if c != '_' && !('a' <= c && c <= 'z') {
			return "", "", false
		}
	}
	return key, strings.TrimSpace(arg[eq+1:]), true
}

func unquote(s string) (string, bool) {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1], true
	}
	return "", false
}
