package annotation

import (
	"fmt"
	"strings"
)

// Kind enumerates the shape categories an annotation value can take.
// Classification happens once, when a value is constructed; the renderer
// dispatches on the kind instead of probing attributes.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNone
	KindAny
	KindAnyStr
	KindNoReturn
	KindEllipsis
	KindClass
	KindForwardRef
	KindTypeVar
	KindParamSpec
	KindNewType
	KindLiteral
	KindUnion
	KindCallable
	KindTuple
	KindGroup
	KindGeneric
	KindClassVar
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNone:
		return "none"
	case KindAny:
		return "any"
	case KindAnyStr:
		return "anystr"
	case KindNoReturn:
		return "noreturn"
	case KindEllipsis:
		return "ellipsis"
	case KindClass:
		return "class"
	case KindForwardRef:
		return "forwardref"
	case KindTypeVar:
		return "typevar"
	case KindParamSpec:
		return "paramspec"
	case KindNewType:
		return "newtype"
	case KindLiteral:
		return "literal"
	case KindUnion:
		return "union"
	case KindCallable:
		return "callable"
	case KindTuple:
		return "tuple"
	case KindGroup:
		return "group"
	case KindGeneric:
		return "generic"
	case KindClassVar:
		return "classvar"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Value is an immutable annotation descriptor. Which fields are meaningful
// depends on Kind; everything else stays zero. Values never form reference
// cycles: recursion across definitions goes through KindForwardRef names
// that are resolved lazily.
type Value struct {
	Kind   Kind
	Module string   // originating module ("builtins", "typing", user module)
	Name   string   // display class name, possibly dotted (Outer.Inner)
	Args   []*Value // recursive argument annotations

	Ref      string   // KindForwardRef: the referenced name, verbatim
	Literals []string // KindLiteral: source-level literal representations

	// KindTypeVar / KindParamSpec
	Constraints   []*Value
	Bound         *Value
	Covariant     bool
	Contravariant bool

	Super *Value // KindNewType: the wrapped supertype

	// KindUnion
	Nullable bool // a None arm was collapsed out of Args
	Bar      bool // spelled X | Y at the source level
}

// MakeNone describes the null-value type.
func MakeNone() *Value { return &Value{Kind: KindNone, Module: "builtins", Name: "None"} }

// MakeAny describes typing.Any.
func MakeAny() *Value { return &Value{Kind: KindAny, Module: "typing", Name: "Any"} }

// MakeAnyStr describes the typing.AnyStr constrained type variable singleton.
func MakeAnyStr() *Value { return &Value{Kind: KindAnyStr, Module: "typing", Name: "AnyStr"} }

// MakeNoReturn describes typing.NoReturn.
func MakeNoReturn() *Value { return &Value{Kind: KindNoReturn, Module: "typing", Name: "NoReturn"} }

// MakeEllipsis describes the bare `...` marker.
func MakeEllipsis() *Value { return &Value{Kind: KindEllipsis, Name: "..."} }

// MakeClass describes a plain or parameterized class reference.
func MakeClass(module, name string, args ...*Value) *Value {
	return &Value{Kind: KindClass, Module: module, Name: name, Args: args}
}

// MakeForwardRef describes an unresolved string annotation.
func MakeForwardRef(name string) *Value { return &Value{Kind: KindForwardRef, Ref: name, Name: name} }

// MakeTypeVar describes a declared type variable with its constraints and
// variance flags. A nil bound and empty constraints are allowed.
func MakeTypeVar(name string, constraints []*Value, bound *Value, covariant, contravariant bool) *Value {
	return &Value{
		Kind:          KindTypeVar,
		Module:        "typing",
		Name:          name,
		Constraints:   constraints,
		Bound:         bound,
		Covariant:     covariant,
		Contravariant: contravariant,
	}
}

// MakeParamSpec describes a parameter-specification variable. ParamSpec
// carries no constraints, only an optional bound and variance.
func MakeParamSpec(name string, bound *Value, covariant, contravariant bool) *Value {
	return &Value{
		Kind:          KindParamSpec,
		Module:        "typing",
		Name:          name,
		Bound:         bound,
		Covariant:     covariant,
		Contravariant: contravariant,
	}
}

// MakeNewType describes a typing.NewType wrapper over a supertype.
func MakeNewType(name string, super *Value) *Value {
	return &Value{Kind: KindNewType, Module: "typing", Name: name, Super: super}
}

// MakeLiteral describes typing.Literal over verbatim literal values.
func MakeLiteral(values ...string) *Value {
	return &Value{Kind: KindLiteral, Module: "typing", Name: "Literal", Literals: values}
}

// MakeCallable describes a callable signature. Parameter annotations come
// first, the return annotation last, matching the flattened argument tuple
// convention. A single MakeEllipsis parameter stands for "any arguments".
func MakeCallable(module string, args ...*Value) *Value {
	if module == "" {
		module = "typing"
	}
	return &Value{Kind: KindCallable, Module: module, Name: "Callable", Args: args}
}

// MakeTuple describes typing.Tuple with the given element annotations.
func MakeTuple(args ...*Value) *Value {
	return &Value{Kind: KindTuple, Module: "typing", Name: "Tuple", Args: args}
}

// MakeGroup describes a parenthesized tuple-of-annotations, as used for
// multi-dimensional array shape parameters.
func MakeGroup(members ...*Value) *Value {
	return &Value{Kind: KindGroup, Name: "()", Args: members}
}

// MakeGeneric describes typing.Generic over its declared type parameters.
func MakeGeneric(params ...*Value) *Value {
	return &Value{Kind: KindGeneric, Module: "typing", Name: "Generic", Args: params}
}

// MakeClassVar describes typing.ClassVar over the wrapped type.
func MakeClassVar(inner *Value) *Value {
	v := &Value{Kind: KindClassVar, Module: "typing", Name: "ClassVar"}
	if inner != nil {
		v.Args = []*Value{inner}
	}
	return v
}

// MakeUnion builds a normalized union. Nested unions flatten in member
// order, a None member is collapsed into the Nullable flag, and duplicate
// members are dropped. This is what makes Union[Optional[int], str],
// Union[int, Optional[str]] and Optional[Union[int, str]] one value.
func MakeUnion(members ...*Value) *Value {
	u := &Value{Kind: KindUnion, Module: "typing", Name: "Union"}
	seen := make(map[string]bool, len(members))
	var add func(m *Value)
	add = func(m *Value) {
		if m == nil {
			return
		}
		switch m.Kind {
		case KindNone:
			u.Nullable = true
		case KindUnion:
			if m.Nullable {
				u.Nullable = true
			}
			for _, sub := range m.Args {
				add(sub)
			}
		default:
			key := m.signature()
			if seen[key] {
				return
			}
			seen[key] = true
			u.Args = append(u.Args, m)
		}
	}
	for _, m := range members {
		add(m)
	}
	return u
}

// MakeOptional builds Optional[inner], which is the nullable union of one.
func MakeOptional(inner *Value) *Value {
	return MakeUnion(inner, MakeNone())
}

// MakeBarUnion builds a union spelled with the | operator at the source.
func MakeBarUnion(members ...*Value) *Value {
	u := MakeUnion(members...)
	u.Bar = true
	return u
}

// WithArgs returns a parameterized copy of a class-like value. The receiver
// is left untouched.
func (v *Value) WithArgs(args []*Value) *Value {
	clone := *v
	clone.Args = args
	return &clone
}

// String renders the plain, markup-free textual form. It doubles as the
// last-resort fallback when classification fails.
func (v *Value) String() string {
	if v == nil {
		return "None"
	}
	switch v.Kind {
	case KindNone:
		return "None"
	case KindEllipsis:
		return "..."
	case KindForwardRef:
		return v.Ref
	case KindLiteral:
		return "Literal[" + strings.Join(v.Literals, ", ") + "]"
	case KindGroup:
		parts := make([]string, 0, len(v.Args))
		for _, a := range v.Args {
			parts = append(parts, a.String())
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ", )"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindTypeVar, KindParamSpec:
		return v.Name
	case KindNewType:
		return v.Name
	case KindUnion:
		parts := make([]string, 0, len(v.Args)+1)
		for _, a := range v.Args {
			parts = append(parts, a.String())
		}
		if v.Nullable {
			parts = append(parts, "None")
		}
		if len(parts) == 0 {
			return "None"
		}
		if v.Bar {
			return strings.Join(parts, " | ")
		}
		return "Union[" + strings.Join(parts, ", ") + "]"
	default:
		name := v.Name
		if name == "" {
			name = v.Kind.String()
		}
		if len(v.Args) == 0 {
			return name
		}
		parts := make([]string, 0, len(v.Args))
		for _, a := range v.Args {
			parts = append(parts, a.String())
		}
		return name + "[" + strings.Join(parts, ", ") + "]"
	}
}

// signature is a structural identity key used for union deduplication.
func (v *Value) signature() string {
	if v == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(v.Kind.String())
	b.WriteByte(':')
	b.WriteString(v.Module)
	b.WriteByte('.')
	b.WriteString(v.Name)
	if v.Kind == KindForwardRef {
		b.WriteString("'" + v.Ref + "'")
	}
	for _, lit := range v.Literals {
		b.WriteString("#" + lit)
	}
	if v.Nullable {
		b.WriteString("?")
	}
	if len(v.Args) > 0 {
		b.WriteByte('[')
		for i, a := range v.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(a.signature())
		}
		b.WriteByte(']')
	}
	return b.String()
}
