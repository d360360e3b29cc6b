package annotation

import "strings"

// Resolver maps a (possibly dotted) name from an annotation expression to a
// value. The second result reports whether the name was known.
type Resolver func(name string) (*Value, bool)

// builtinClasses are the builtin types usable in annotations without any
// import. They render without a module prefix.
var builtinClasses = map[string]bool{
	"bool": true, "bytearray": true, "bytes": true, "complex": true,
	"dict": true, "float": true, "frozenset": true, "int": true,
	"list": true, "memoryview": true, "object": true, "range": true,
	"set": true, "slice": true, "str": true, "tuple": true, "type": true,
}

// typingClasses are the names of the standard typing module resolvable
// through the default namespace. Special forms (Union, Optional, Literal,
// Callable, ClassVar, Generic, Tuple) are intercepted during subscript
// application; everything here resolves to a plain class-like reference.
var typingClasses = map[string]bool{
	"AbstractSet": true, "AsyncContextManager": true, "AsyncGenerator": true,
	"AsyncIterable": true, "AsyncIterator": true, "Awaitable": true,
	"BinaryIO": true, "ByteString": true, "Callable": true, "ClassVar": true,
	"Collection": true, "Container": true, "ContextManager": true,
	"Coroutine": true, "Counter": true, "DefaultDict": true, "Deque": true,
	"Dict": true, "Final": true, "FrozenSet": true, "Generator": true,
	"Generic": true, "Hashable": true, "IO": true, "ItemsView": true,
	"Iterable": true, "Iterator": true, "KeysView": true, "List": true,
	"Literal": true, "Mapping": true, "MappingView": true, "Match": true,
	"MutableMapping": true, "MutableSequence": true, "MutableSet": true,
	"Optional": true, "OrderedDict": true, "Pattern": true, "Protocol": true,
	"Reversible": true, "Sequence": true, "Set": true, "Sized": true,
	"TextIO": true, "Tuple": true, "Type": true, "TypeAlias": true,
	"Union": true, "ValuesView": true,
}

// abcClasses are the collections.abc names that double as annotation types.
var abcClasses = map[string]bool{
	"AsyncGenerator": true, "AsyncIterable": true, "AsyncIterator": true,
	"Awaitable": true, "ByteString": true, "Callable": true,
	"Collection": true, "Container": true, "Coroutine": true,
	"Generator": true, "Hashable": true, "ItemsView": true, "Iterable": true,
	"Iterator": true, "KeysView": true, "Mapping": true, "MappingView": true,
	"MutableMapping": true, "MutableSequence": true, "MutableSet": true,
	"Reversible": true, "Sequence": true, "Set": true, "Sized": true,
	"ValuesView": true,
}

// LookupBuiltin resolves a bare name against the implicit builtin scope.
func LookupBuiltin(name string) (*Value, bool) {
	if name == "None" {
		return MakeNone(), true
	}
	if builtinClasses[name] {
		return MakeClass("builtins", name), true
	}
	return nil, false
}

// LookupModuleMember resolves a member of a known standard module. Supported
// modules are typing, typing_extensions and collections.abc; anything else
// yields a plain class reference in that module so mocked imports keep
// working.
func LookupModuleMember(module, name string) (*Value, bool) {
	switch module {
	case "typing", "typing_extensions":
		switch name {
		case "Any":
			return MakeAny(), true
		case "AnyStr":
			return MakeAnyStr(), true
		case "NoReturn", "Never":
			return MakeNoReturn(), true
		case "Text":
			return MakeClass("builtins", "str"), true
		}
		if typingClasses[name] {
			return MakeClass("typing", name), true
		}
		return nil, false
	case "collections.abc":
		if abcClasses[name] {
			return MakeClass("collections.abc", name), true
		}
		return nil, false
	default:
		return nil, false
	}
}

// DefaultResolver resolves builtins plus fully-dotted names of the known
// standard modules. It backs the standalone renderer where no documented
// module namespace is available.
func DefaultResolver(name string) (*Value, bool) {
	if v, ok := LookupBuiltin(name); ok {
		return v, true
	}
	if v, ok := LookupModuleMember("typing", name); ok {
		return v, true
	}
	if at := strings.LastIndex(name, "."); at > 0 {
		if v, ok := LookupModuleMember(name[:at], name[at+1:]); ok {
			return v, true
		}
	}
	return nil, false
}
