// Package typedoc augments generated API documentation with type
// information. Given a documented callable it recovers parameter and
// return annotations from its signature, from type comments, or through
// guarded imports, renders each annotation to cross-reference markup, and
// splices the result into the callable's docstring.
package typedoc

import (
	"strings"

	"typedoc/internal/annotation"
	"typedoc/internal/diag"
	"typedoc/internal/docstring"
	"typedoc/internal/pysrc"
	"typedoc/internal/render"
	"typedoc/internal/resolve"
)

// Config collects every knob of the processing pipeline.
type Config struct {
	// Rendering.
	FullyQualified         bool
	SimplifyOptionalUnions bool
	AlwaysUseBarsUnion     bool
	Formatter              render.Formatter
	FixupModule            func(module string) string

	// Splicing.
	AlwaysDocumentParams bool
	DocumentRType        bool
	UseRType             bool
	Defaults             docstring.DefaultsMode

	// Signature processing.
	UseSignature       bool
	UseSignatureReturn bool

	// Resolution.
	MockImports []string
}

// DefaultConfig matches the behavior with nothing configured.
func DefaultConfig() Config {
	return Config{
		SimplifyOptionalUnions: true,
		DocumentRType:          true,
		UseRType:               true,
	}
}

func (c *Config) renderConfig() *render.Config {
	return &render.Config{
		FullyQualified:         c.FullyQualified,
		SimplifyOptionalUnions: c.SimplifyOptionalUnions,
		AlwaysUseBarsUnion:     c.AlwaysUseBarsUnion,
		Formatter:              c.Formatter,
		FixupModule:            c.FixupModule,
	}
}

func (c *Config) spliceOptions() docstring.Options {
	return docstring.Options{
		AlwaysDocumentParams: c.AlwaysDocumentParams,
		DocumentRType:        c.DocumentRType,
		UseRType:             c.UseRType,
		Defaults:             c.Defaults,
	}
}

// Extension processes documented callables against a set of scanned
// modules. One Extension serves a whole documentation build; it is safe
// for concurrent use when its reporter is.
type Extension struct {
	cfg Config
	ctx *resolve.Context
	rep diag.Reporter
}

func New(set *pysrc.ModuleSet, cfg Config, rep diag.Reporter) *Extension {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	return &Extension{
		cfg: cfg,
		ctx: resolve.NewContext(set, resolve.Options{Mocks: cfg.MockImports}, rep),
		rep: rep,
	}
}

// Hints resolves the callable's annotation map.
func (e *Extension) Hints(c *pysrc.Callable) annotation.Map {
	return e.ctx.Hints(c)
}

// ProcessSignature rewrites a callable's parameter list for display:
// annotations move into the docstring, so the signature is rendered with
// annotations stripped unless configured otherwise, with the implicit
// receiver dropped. The returned return-annotation is empty unless return
// annotations are kept in signatures. ok is false when the callable cannot
// be processed.
func (e *Extension) ProcessSignature(c *pysrc.Callable) (params, ret string, ok bool) {
	if strings.Contains(c.QualName, "<locals>") {
		diag.Warnf(e.rep, diag.ResolveLocalFunction,
			c.QualName, "cannot process signature of local callable %q", c.QualName)
		return "", "", false
	}
	t := c.Target()

	list := t.Params
	dropReceiver := false
	switch c.What {
	case pysrc.WhatClass, pysrc.WhatException:
		dropReceiver = true
	case pysrc.WhatMethod, pysrc.WhatProperty:
		dropReceiver = !t.HasDecorator("staticmethod")
	}
	if dropReceiver && len(list) > 0 {
		list = list[1:]
	}

	lastPosOnly := -1
	for i, p := range list {
		if p.Kind == pysrc.ParamPositionalOnly {
			lastPosOnly = i
		}
	}
	var parts []string
	starSeen := false
	for i, p := range list {
		if p.Kind == pysrc.ParamVarPositional {
			starSeen = true
		}
		if p.Kind == pysrc.ParamKeywordOnly && !starSeen {
			parts = append(parts, "*")
			starSeen = true
		}
		piece := p.Display()
		annotated := e.cfg.UseSignature && p.Annotation != ""
		if annotated {
			piece += ": " + p.Annotation
		}
		if p.HasDefault {
			if annotated {
				piece += " = " + p.Default
			} else {
				piece += "=" + p.Default
			}
		}
		parts = append(parts, piece)
		if i == lastPosOnly {
			parts = append(parts, "/")
		}
	}

	if e.cfg.UseSignatureReturn {
		ret = t.Return
	}
	return "(" + strings.Join(parts, ", ") + ")", ret, true
}

// ProcessDocstring splices resolved type fields into the callable's doc
// lines and returns the mutated buffer. Failures degrade to returning the
// lines with no type information added.
func (e *Extension) ProcessDocstring(c *pysrc.Callable, lines []string) []string {
	hints := e.ctx.Hints(c)
	buf := docstring.NewBuffer(lines)
	if len(hints) > 0 {
		docstring.InjectTypes(hints, c, buf, e.cfg.renderConfig(), e.cfg.spliceOptions())
	}
	return buf.Lines()
}
