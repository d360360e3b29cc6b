package driver

// Driver tests.
//
// Coverage:
//   - Module naming from paths
//   - Source-file discovery
//   - Disk-cache round trips, schema mismatch, invalidation
//   - The full annotate run over a temporary tree

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"typedoc"
	"typedoc/internal/diag"
	"typedoc/internal/pipeline"
)

func TestModuleName(t *testing.T) {
	sep := string(filepath.Separator)
	tests := []struct {
		name string
		root string
		path string
		want string
	}{
		{"bare file", "", "mod.py", "mod"},
		{"nested", "src", filepath.Join("src", "pkg", "util.py"), "pkg.util"},
		{"package marker", "src", filepath.Join("src", "pkg", "__init__.py"), "pkg"},
		{"top-level marker", "src", filepath.Join("src", "__init__.py"), "__main__"},
		{"outside root", "src", "other" + sep + "mod.py", "other.mod"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModuleName(tt.root, tt.path); got != tt.want {
				t.Fatalf("ModuleName(%q, %q) = %q, want %q", tt.root, tt.path, got, tt.want)
			}
		})
	}
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}

func TestListSourceFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"b.py":          "",
		"a.py":          "",
		"pkg/mod.py":    "",
		"pkg/notes.txt": "",
	})
	files, err := ListSourceFiles(root)
	if err != nil {
		t.Fatalf("ListSourceFiles: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("files = %v", files)
	}
	if filepath.Base(files[0]) != "a.py" || filepath.Base(files[1]) != "b.py" {
		t.Fatalf("not sorted: %v", files)
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := OpenDiskCache("typedoc-test")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}

	src := "def f(x: int) -> str:\n    pass\n"
	key := HashSource("mod\x00" + src)

	var missing DiskPayload
	if ok, err := cache.Get(key, &missing); err != nil || ok {
		t.Fatalf("Get on empty cache = %v, %v", ok, err)
	}

	rep := diag.BagReporter{Bag: diag.NewBag(8)}
	mod, err := scanFile("", writeTempSource(t, src), cache, rep)
	if err != nil {
		t.Fatalf("scanFile: %v", err)
	}
	if len(mod.Callables) != 1 {
		t.Fatalf("callables = %v", mod.Callables)
	}
}

func writeTempSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mod.py")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDiskCachePayloadRestore(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := OpenDiskCache("typedoc-test")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}

	path := writeTempSource(t, `
class Point:
    def __init__(self, x: int) -> None:
        pass
`)
	rep := diag.BagReporter{Bag: diag.NewBag(8)}
	first, err := scanFile("", path, cache, rep)
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	second, err := scanFile("", path, cache, rep)
	if err != nil {
		t.Fatalf("cached scan: %v", err)
	}
	if len(second.Callables) != len(first.Callables) {
		t.Fatalf("cached callables = %d, want %d", len(second.Callables), len(first.Callables))
	}
	for _, c := range second.Callables {
		if c.QualName == "Point" {
			if c.Init == nil || c.Init.QualName != "Point.__init__" {
				t.Fatalf("constructor link lost in cache round trip: %+v", c)
			}
		}
	}
	if _, ok := second.Names["Point"]; !ok {
		t.Fatal("class namespace not reseeded from cache")
	}
}

func TestDiskCacheSchemaMismatch(t *testing.T) {
	payload := &DiskPayload{Schema: diskCacheSchemaVersion + 1, Name: "m"}
	if m := diskPayloadToModule(payload, ""); m != nil {
		t.Fatal("stale schema accepted")
	}
}

func TestAnnotateRun(t *testing.T) {
	root := writeTree(t, map[string]string{
		"demo.py": `
def f(x: bool, y: int, z: Optional[str] = None) -> str:
    """Do the thing.

    :param x: the flag
    :param y: how many
    :param z: optional label
    :return: the result
    """
    pass
`,
	})
	files, err := ListSourceFiles(root)
	if err != nil {
		t.Fatalf("ListSourceFiles: %v", err)
	}

	events := make(chan pipeline.Event, 128)
	opts := Options{
		Config:   typedoc.DefaultConfig(),
		Jobs:     2,
		Progress: pipeline.ChannelSink{Ch: events},
	}
	result, err := Annotate(context.Background(), root, files, opts)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	close(events)

	if len(result.Files) != 1 {
		t.Fatalf("files = %+v", result.Files)
	}
	fr := result.Files[0]
	if fr.Module != "demo" || len(fr.Entries) != 1 {
		t.Fatalf("file result = %+v", fr)
	}
	doc := strings.Join(fr.Entries[0].Doc, "\n")
	for _, want := range []string{":type x: ", ":type y: ", ":type z: ", ":rtype: "} {
		if !strings.Contains(doc, want) {
			t.Fatalf("doc missing %q:\n%s", want, doc)
		}
	}
	// Types precede their parameter fields.
	if strings.Index(doc, ":type x: ") > strings.Index(doc, ":param x: ") {
		t.Fatalf("type after param:\n%s", doc)
	}

	if result.Timings.Duration(pipeline.StageScan) <= 0 || result.Timings.Duration(pipeline.StageSplice) <= 0 {
		t.Fatal("stage timings not recorded")
	}

	sawScan := false
	for ev := range events {
		if ev.Stage == pipeline.StageScan {
			sawScan = true
		}
	}
	if !sawScan {
		t.Fatal("no scan progress events emitted")
	}
}

func TestAnnotateMissingFile(t *testing.T) {
	result, err := Annotate(context.Background(), "", []string{filepath.Join(t.TempDir(), "gone.py")}, Options{})
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if len(result.Files) != 1 || !result.Files[0].Bag.HasErrors() {
		t.Fatalf("missing file not reported: %+v", result.Files)
	}
}
