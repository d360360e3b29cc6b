// Package driver runs the annotation pipeline over files and directories:
// scan sources into module descriptors, resolve and render annotations,
// splice them into docstrings, in parallel across files.
package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"typedoc"
	"typedoc/internal/diag"
	"typedoc/internal/pipeline"
	"typedoc/internal/pysrc"
)

// Options configures one annotation run.
type Options struct {
	Config         typedoc.Config
	Jobs           int
	MaxDiagnostics int
	Cache          *DiskCache
	Progress       pipeline.ProgressSink
}

// Entry is the processed documentation of one callable.
type Entry struct {
	QualName  string
	What      pysrc.What
	Signature string
	Doc       []string
}

// FileResult holds one file's processed callables and its scan
// diagnostics.
type FileResult struct {
	Path    string
	Module  string
	Entries []Entry
	Bag     *diag.Bag
}

// RunResult is the outcome of a whole run. Resolution and splice
// diagnostics are run-scoped because module namespaces are shared.
// Timings records the wall time of each pipeline stage.
type RunResult struct {
	Files   []FileResult
	Bag     *diag.Bag
	Timings pipeline.Timings
}

// ListSourceFiles returns the sorted list of all *.py files under dir.
func ListSourceFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".py") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Deterministic order.
	sort.Strings(files)
	return files, nil
}

// ModuleName derives a module name from a source path, relative to root
// when the path is under it. Package markers collapse onto the package.
func ModuleName(root, path string) string {
	rel := path
	if root != "" {
		if r, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	rel = strings.TrimSuffix(rel, ".py")
	rel = strings.TrimSuffix(rel, string(filepath.Separator)+"__init__")
	rel = strings.TrimSuffix(rel, "__init__")
	name := strings.ReplaceAll(filepath.ToSlash(rel), "/", ".")
	name = strings.Trim(name, ".")
	if name == "" {
		name = "__main__"
	}
	return name
}

// syncReporter serializes diagnostic delivery into one bag.
type syncReporter struct {
	mu  sync.Mutex
	bag *diag.Bag
}

func (r *syncReporter) Report(d diag.Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bag.Add(d)
}

// Annotate processes the given source files: every documented callable's
// docstring gains its type fields. root anchors module naming; pass "" to
// name modules by their bare file names.
func Annotate(ctx context.Context, root string, paths []string, opts Options) (*RunResult, error) {
	if len(paths) == 0 {
		return &RunResult{Bag: diag.NewBag(1)}, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	maxDiag := opts.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = 100
	}
	sink := opts.Progress
	if sink == nil {
		sink = pipeline.NopSink{}
	}

	var timings pipeline.Timings
	scanStarted := time.Now()

	// Stage 1: scan every file into a module descriptor. Indices are
	// goroutine-unique, so the slices need no locking.
	modules := make([]*pysrc.Module, len(paths))
	bags := make([]*diag.Bag, len(paths))
	for i := range bags {
		bags[i] = diag.NewBag(maxDiag)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			started := time.Now()
			sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageScan, Status: pipeline.StatusWorking})
			mod, err := scanFile(root, path, opts.Cache, diag.BagReporter{Bag: bags[i]})
			if err != nil {
				bags[i].Add(diag.Diagnostic{
					Severity: diag.SevError,
					Code:     diag.ScanInfo,
					Target:   path,
					Path:     path,
					Message:  "failed to load file: " + err.Error(),
				})
				sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageScan, Status: pipeline.StatusError, Err: err})
				return nil
			}
			modules[i] = mod
			sink.OnEvent(pipeline.Event{
				File: path, Stage: pipeline.StageScan, Status: pipeline.StatusWorking,
				Elapsed: time.Since(started),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	timings.Set(pipeline.StageScan, time.Since(scanStarted))

	set := pysrc.NewModuleSet()
	for _, m := range modules {
		if m != nil {
			set.Add(m)
		}
	}

	runBag := diag.NewBag(maxDiag * len(paths))
	ext := typedoc.New(set, opts.Config, &syncReporter{bag: runBag})

	// Stage 2: resolve, render and splice each file's callables. The
	// shared resolve context is lock-protected.
	spliceStarted := time.Now()
	results := make([]FileResult, len(paths))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res := FileResult{Path: path, Bag: bags[i]}
			mod := modules[i]
			if mod == nil {
				results[i] = res
				sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageSplice, Status: pipeline.StatusError})
				return nil
			}
			res.Module = mod.Name
			sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageResolve, Status: pipeline.StatusWorking})
			for _, c := range mod.Callables {
				sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageSplice, Status: pipeline.StatusWorking})
				entry := Entry{QualName: c.QualName, What: c.What}
				if sig, _, ok := ext.ProcessSignature(c); ok {
					entry.Signature = sig
				}
				entry.Doc = ext.ProcessDocstring(c, c.Doc)
				res.Entries = append(res.Entries, entry)
			}
			results[i] = res
			sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageSplice, Status: pipeline.StatusDone})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	timings.Set(pipeline.StageSplice, time.Since(spliceStarted))

	runBag.Sort()
	runBag.Dedup()
	return &RunResult{Files: results, Bag: runBag, Timings: timings}, nil
}

// scanFile loads and scans one source file, going through the disk cache
// when one is configured.
func scanFile(root, path string, cache *DiskCache, rep diag.Reporter) (*pysrc.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	src := string(data)
	name := ModuleName(root, path)

	key := HashSource(name + "\x00" + src)
	if cache != nil {
		var payload DiskPayload
		if ok, err := cache.Get(key, &payload); err == nil && ok {
			if m := diskPayloadToModule(&payload, src); m != nil {
				return m, nil
			}
		}
	}

	m := pysrc.Scan(name, path, src, rep)
	if cache != nil {
		// Cache write failures are not worth failing the run over.
		_ = cache.Put(key, moduleToDiskPayload(m))
	}
	return m, nil
}
