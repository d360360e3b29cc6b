package resolve

// Type-comment backfill tests.
//
// Coverage:
//   - Combined-form comments with and without a receiver
//   - Per-parameter comments with a separate return comment
//   - Argument-count mismatches
//   - Ambiguous sources (zero or several definitions)
//   - Unparseable comments

import (
	"testing"

	"typedoc/internal/annotation"
	"typedoc/internal/diag"
	"typedoc/internal/pysrc"
)

func params(names ...string) []pysrc.Param {
	out := make([]pysrc.Param, 0, len(names))
	for _, n := range names {
		out = append(out, pysrc.Param{Name: n})
	}
	return out
}

func TestBackfillCombinedForm(t *testing.T) {
	src := `def f(x, y):
    # type: (int, str) -> bool
    return True
`
	hints := BackfillTypeComments(src, params("x", "y"), nil, "f", nil)
	if len(hints) != 3 {
		t.Fatalf("hints = %v", hints)
	}
	if hints["x"].Name != "int" || hints["y"].Name != "str" {
		t.Fatalf("x/y = %v / %v", hints["x"], hints["y"])
	}
	if hints[annotation.ReturnKey].Name != "bool" {
		t.Fatalf("return = %v", hints[annotation.ReturnKey])
	}
}

func TestBackfillCombinedFormOnSignatureLine(t *testing.T) {
	src := `def f(x, y):  # type: (int, str) -> None
    pass
`
	hints := BackfillTypeComments(src, params("x", "y"), nil, "f", nil)
	if hints["x"] == nil || hints["y"] == nil || !hints.HasReturn() {
		t.Fatalf("hints = %v", hints)
	}
}

func TestBackfillReceiverSkipped(t *testing.T) {
	src := `def area(self, scale):
    # type: (float) -> float
    pass
`
	hints := BackfillTypeComments(src, params("self", "scale"), nil, "C.area", nil)
	if hints["scale"] == nil || hints["scale"].Name != "float" {
		t.Fatalf("scale = %v", hints["scale"])
	}
	if _, ok := hints["self"]; ok {
		t.Fatal("receiver got a hint")
	}
}

func TestBackfillReturnOnly(t *testing.T) {
	src := `def f(x):
    # type: (...) -> int
    pass
`
	hints := BackfillTypeComments(src, params("x"), nil, "f", nil)
	if len(hints) != 1 || hints[annotation.ReturnKey].Name != "int" {
		t.Fatalf("hints = %v", hints)
	}
}

func TestBackfillPerArgComments(t *testing.T) {
	src := `def f(
    x,  # type: int
    y,  # type: Mapping[str, int]
):
    # type: (...) -> bool
    pass
`
	hints := BackfillTypeComments(src, params("x", "y"), nil, "f", nil)
	if len(hints) != 3 {
		t.Fatalf("hints = %v", hints)
	}
	if hints["y"].Name != "Mapping" || len(hints["y"].Args) != 2 {
		t.Fatalf("y = %+v", hints["y"])
	}
	if hints[annotation.ReturnKey].Name != "bool" {
		t.Fatalf("return = %v", hints[annotation.ReturnKey])
	}
}

func TestBackfillFirstParamOnDefLine(t *testing.T) {
	src := `def f(x,  # type: int
      y,  # type: str
      ):
    pass
`
	hints := BackfillTypeComments(src, params("x", "y"), nil, "f", nil)
	if hints["x"] == nil || hints["x"].Name != "int" {
		t.Fatalf("x = %v", hints["x"])
	}
	if hints["y"] == nil || hints["y"].Name != "str" {
		t.Fatalf("y = %v", hints["y"])
	}
}

func TestBackfillArgCountMismatch(t *testing.T) {
	src := `def f(x, y, z):
    # type: (int, str) -> bool
    pass
`
	bag := diag.NewBag(8)
	hints := BackfillTypeComments(src, params("x", "y", "z"), nil, "f", diag.BagReporter{Bag: bag})
	// The parameter comments are discarded; the return comment survives.
	if len(hints) != 1 || !hints.HasReturn() {
		t.Fatalf("hints = %v", hints)
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.CommentArgCount {
			found = true
		}
	}
	if !found {
		t.Fatalf("no arg-count warning in %+v", bag.Items())
	}
}

func TestBackfillAmbiguousSource(t *testing.T) {
	bag := diag.NewBag(8)
	src := `def f(x):
    pass

def g(y):
    pass
`
	if hints := BackfillTypeComments(src, params("x"), nil, "f", diag.BagReporter{Bag: bag}); hints != nil {
		t.Fatalf("hints = %v", hints)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.CommentAmbiguousSource {
		t.Fatalf("diagnostics = %+v", bag.Items())
	}
}

func TestBackfillUnparseableComment(t *testing.T) {
	src := `def f(x):
    # type: (!!) -> int
    pass
`
	bag := diag.NewBag(8)
	hints := BackfillTypeComments(src, params("x"), nil, "f", diag.BagReporter{Bag: bag})
	if hints[annotation.ReturnKey] == nil {
		t.Fatalf("return missing: %v", hints)
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.CommentUnparseable {
			found = true
		}
	}
	if !found {
		t.Fatalf("no unparseable warning in %+v", bag.Items())
	}
}

func TestBackfillNoComments(t *testing.T) {
	src := `def f(x):
    return x
`
	if hints := BackfillTypeComments(src, params("x"), nil, "f", nil); hints != nil {
		t.Fatalf("hints = %v", hints)
	}
}

func TestBackfillStopsAtBody(t *testing.T) {
	// A type comment past the first body statement does not belong to the
	// signature.
	src := `def f(x):
    pass
    y = 1  # type: int
`
	if hints := BackfillTypeComments(src, params("x"), nil, "f", nil); hints != nil {
		t.Fatalf("hints = %v", hints)
	}
}
