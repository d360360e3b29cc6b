package annotation

// ReturnKey is the pseudo-parameter under which the return annotation is
// stored in a Map.
const ReturnKey = "return"

// Map associates parameter names (or ReturnKey) with annotation values.
// One Map is built per processed callable and discarded after splicing.
type Map map[string]*Value

// HasReturn reports whether a return annotation was resolved.
func (m Map) HasReturn() bool {
	_, ok := m[ReturnKey]
	return ok
}
