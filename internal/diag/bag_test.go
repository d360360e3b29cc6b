package diag

import "testing"

func TestBagCap(t *testing.T) {
	bag := NewBag(2)
	if !bag.Add(Diagnostic{Code: ScanInfo}) {
		t.Fatal("first Add dropped")
	}
	if !bag.Add(Diagnostic{Code: ScanInfo}) {
		t.Fatal("second Add dropped")
	}
	if bag.Add(Diagnostic{Code: ScanInfo}) {
		t.Fatal("Add past the cap accepted")
	}
	if bag.Len() != 2 {
		t.Fatalf("Len = %d, want 2", bag.Len())
	}
}

func TestBagSeverityQueries(t *testing.T) {
	bag := NewBag(8)
	bag.Add(Diagnostic{Severity: SevInfo})
	if bag.HasWarnings() || bag.HasErrors() {
		t.Fatal("info-only bag reports warnings or errors")
	}
	bag.Add(Diagnostic{Severity: SevWarning})
	if !bag.HasWarnings() || bag.HasErrors() {
		t.Fatal("warning bag misreported")
	}
	bag.Add(Diagnostic{Severity: SevError})
	if !bag.HasErrors() {
		t.Fatal("error not detected")
	}
}

func TestBagSort(t *testing.T) {
	bag := NewBag(8)
	bag.Add(Diagnostic{Path: "b.py", Line: 1, Code: ScanInfo})
	bag.Add(Diagnostic{Path: "a.py", Line: 9, Code: ScanInfo})
	bag.Add(Diagnostic{Path: "a.py", Line: 2, Severity: SevInfo, Code: ScanInfo})
	bag.Add(Diagnostic{Path: "a.py", Line: 2, Severity: SevError, Code: ScanBadSignature})
	bag.Sort()

	items := bag.Items()
	if items[0].Path != "a.py" || items[0].Line != 2 || items[0].Severity != SevError {
		t.Fatalf("first after sort = %+v", items[0])
	}
	if items[1].Severity != SevInfo || items[2].Line != 9 || items[3].Path != "b.py" {
		t.Fatalf("sort order = %+v", items)
	}
}

func TestBagDedup(t *testing.T) {
	bag := NewBag(8)
	d := Diagnostic{Code: ResolveForwardRef, Target: "mod.f", Message: "unresolved"}
	bag.Add(d)
	bag.Add(d)
	other := d
	other.Message = "different"
	bag.Add(other)
	bag.Dedup()
	if bag.Len() != 2 {
		t.Fatalf("Len after Dedup = %d, want 2", bag.Len())
	}
}

func TestBagMergeGrowsCap(t *testing.T) {
	a := NewBag(1)
	a.Add(Diagnostic{Code: ScanInfo})
	b := NewBag(2)
	b.Add(Diagnostic{Code: ResolveInfo})
	b.Add(Diagnostic{Code: CommentInfo})
	a.Merge(b)
	if a.Len() != 3 {
		t.Fatalf("Len after Merge = %d, want 3", a.Len())
	}
	// The merged bag still accepts up to its grown cap.
	if a.Add(Diagnostic{Code: SpliceInfo}) {
		t.Fatal("Add past grown cap accepted")
	}
}

func TestCodeString(t *testing.T) {
	if got := ScanBadSignature.String(); got != "TD1001" {
		t.Fatalf("Code.String = %q", got)
	}
}

func TestWarnfNilReporter(t *testing.T) {
	// Must not panic.
	Warnf(nil, ScanInfo, "t", "msg %d", 1)

	bag := NewBag(4)
	Warnf(BagReporter{Bag: bag}, ResolveForwardRef, "mod.f", "name %q", "X")
	items := bag.Items()
	if len(items) != 1 || items[0].Severity != SevWarning {
		t.Fatalf("Warnf items = %+v", items)
	}
	if items[0].Message != `name "X"` {
		t.Fatalf("message = %q", items[0].Message)
	}
}
