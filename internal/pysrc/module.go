// Package pysrc models documented source modules for the annotation
// pipeline. It is the introspection boundary: a lightweight scanner turns
// module source into Callable and Module descriptors, which stand in for
// the host runtime's live reflection objects.
package pysrc

import (
	"fmt"

	"typedoc/internal/annotation"
)

// What tags the kind of documented object a callable descriptor represents.
type What uint8

const (
	WhatFunction What = iota
	WhatMethod
	WhatClass
	WhatException
	WhatProperty
	WhatAttribute
	WhatModule
)

func (w What) String() string {
	switch w {
	case WhatFunction:
		return "function"
	case WhatMethod:
		return "method"
	case WhatClass:
		return "class"
	case WhatException:
		return "exception"
	case WhatProperty:
		return "property"
	case WhatAttribute:
		return "attribute"
	case WhatModule:
		return "module"
	default:
		return fmt.Sprintf("What(%d)", w)
	}
}

// ParamKind distinguishes how a parameter binds its arguments.
type ParamKind uint8

const (
	ParamPositional ParamKind = iota
	ParamPositionalOnly
	ParamKeywordOnly
	ParamVarPositional
	ParamVarKeyword
)

// Param describes one declared parameter. Annotation and Default keep the
// raw source spelling; resolution happens later, against the module
// namespace.
type Param struct {
	Name       string
	Kind       ParamKind
	Annotation string
	Default    string
	HasDefault bool
}

// Display returns the parameter as it appears in a stripped signature,
// with the variadic star prefixes restored.
func (p Param) Display() string {
	switch p.Kind {
	case ParamVarPositional:
		return "*" + p.Name
	case ParamVarKeyword:
		return "**" + p.Name
	default:
		return p.Name
	}
}

// Callable describes one documented target: a function, method, class or
// property. For classes, Init points at the constructor whose parameters
// carry the class's annotations.
type Callable struct {
	QualName   string
	What       What
	Module     *Module
	Params     []Param
	Return     string
	Source     string
	Doc        []string
	Decorators []string
	Line       int
	Init       *Callable
}

// Name returns the last segment of the qualified name.
func (c *Callable) Name() string {
	for i := len(c.QualName) - 1; i >= 0; i-- {
		if c.QualName[i] == '.' {
			return c.QualName[i+1:]
		}
	}
	return c.QualName
}

// HasDecorator reports whether the named decorator is attached.
func (c *Callable) HasDecorator(name string) bool {
	for _, d := range c.Decorators {
		if d == name {
			return true
		}
	}
	return false
}

// Target resolves the descriptor annotations actually live on: the
// constructor for classes, the callable itself otherwise.
func (c *Callable) Target() *Callable {
	if (c.What == WhatClass || c.What == WhatException) && c.Init != nil {
		return c.Init
	}
	return c
}

// Import is a plain module import, optionally aliased.
type Import struct {
	Module string
	As     string
}

// FromImport is one name pulled out of a module, optionally aliased.
type FromImport struct {
	Module string
	Name   string
	As     string
}

// GuardBlock is the body of an `if TYPE_CHECKING:` conditional: statements
// that only execute for static type checkers. The resolver interprets the
// import statements inside at documentation-build time.
type GuardBlock struct {
	Line       int
	Statements []string
}

// Module is one scanned source module.
type Module struct {
	Name        string
	Path        string
	Source      string
	Imports     []Import
	FromImports []FromImport
	// Assignments holds module-level name bindings by raw right-hand
	// side: TypeVar/ParamSpec/NewType declarations and type aliases.
	// They are interpreted lazily, so aliases may reference names defined
	// further down.
	Assignments map[string]string
	Guards      []GuardBlock
	Callables   []*Callable
	// Names is the resolvable namespace. The scanner seeds it with the
	// module's classes; the resolver adds guard-imported and memoized
	// lazy names. Writes after scanning go through the resolve context's
	// lock.
	Names map[string]*annotation.Value
}

// ModuleSet indexes scanned modules by name, in insertion order.
type ModuleSet struct {
	byName map[string]*Module
	order  []string
}

func NewModuleSet() *ModuleSet {
	return &ModuleSet{byName: make(map[string]*Module)}
}

func (s *ModuleSet) Add(m *Module) {
	if _, exists := s.byName[m.Name]; !exists {
		s.order = append(s.order, m.Name)
	}
	s.byName[m.Name] = m
}

func (s *ModuleSet) ByName(name string) (*Module, bool) {
	m, ok := s.byName[name]
	return m, ok
}

// Modules returns the set in insertion order.
func (s *ModuleSet) Modules() []*Module {
	out := make([]*Module, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name])
	}
	return out
}
