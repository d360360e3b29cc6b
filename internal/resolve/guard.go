package resolve

import (
	"strings"

	"typedoc/internal/annotation"
	"typedoc/internal/diag"
	"typedoc/internal/pysrc"
)

// ResolveGuards interprets a module's `if TYPE_CHECKING:` blocks, binding
// the imported names into its namespace. Each module is processed at most
// once; imports of other documented modules resolve their guards first,
// with re-entrancy cut off so mutually importing modules terminate.
func (ctx *Context) ResolveGuards(m *pysrc.Module) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.resolveGuardsLocked(m)
}

func (ctx *Context) resolveGuardsLocked(m *pysrc.Module) {
	if ctx.guardsDone[m.Name] || ctx.guardsBusy[m.Name] {
		return
	}
	ctx.guardsBusy[m.Name] = true
	defer func() {
		ctx.guardsBusy[m.Name] = false
		ctx.guardsDone[m.Name] = true
	}()

	for _, g := range m.Guards {
		for _, stmt := range g.Statements {
			imports, froms, ok := pysrc.ParseImport(stmt)
			if !ok {
				// Guard bodies may hold arbitrary statements; only the
				// imports matter for annotation resolution.
				continue
			}
			m.Imports = append(m.Imports, imports...)
			for _, fi := range froms {
				ctx.bindGuardedImportLocked(m, g.Line, fi)
			}
		}
	}
}

func (ctx *Context) bindGuardedImportLocked(m *pysrc.Module, line int, fi pysrc.FromImport) {
	if fi.Name == "*" {
		m.FromImports = append(m.FromImports, fi)
		return
	}
	bind := fi.As
	if bind == "" {
		bind = fi.Name
	}
	if src, ok := ctx.set.ByName(fi.Module); ok {
		ctx.resolveGuardsLocked(src)
		if v, found := ctx.lookupLocked(src, fi.Name, make(map[string]bool)); found {
			m.Names[bind] = v
			return
		}
		diag.WarnAtf(ctx.rep, diag.ResolveGuardedImport, m.Name, m.Path, line,
			"guarded import: module %q has no attribute %q", fi.Module, fi.Name)
		m.Names[bind] = annotation.MakeClass(fi.Module, fi.Name)
		return
	}
	if v, found := annotation.LookupModuleMember(fi.Module, fi.Name); found {
		m.Names[bind] = v
		return
	}
	if !ctx.mocked(fi.Module) {
		diag.WarnAtf(ctx.rep, diag.ResolveMissingModule, m.Name, m.Path, line,
			"guarded import: cannot resolve module %q; add it to the mock list to silence this", fi.Module)
	}
	m.Names[bind] = annotation.MakeClass(fi.Module, fi.Name)
}

// mocked reports whether a module or one of its parents is on the mock
// allow-list.
func (ctx *Context) mocked(module string) bool {
	for _, mock := range ctx.opts.Mocks {
		if module == mock || strings.HasPrefix(module, mock+".") {
			return true
		}
	}
	return false
}
