package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"typedoc/internal/annotation"
	"typedoc/internal/pysrc"
)

// Current schema version - increment when DiskPayload format changes.
const diskCacheSchemaVersion uint16 = 1

// Digest is a fixed 256-bit content hash keying the scan cache.
type Digest [32]byte

// HashSource computes the cache key for one module's source text.
func HashSource(src string) Digest {
	return sha256.Sum256([]byte(src))
}

// DiskCache persists scanned module descriptors keyed by source digest, so
// unchanged files skip the scan stage on the next run.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the cached form of one scanned module. Resolved names are
// not cached; the namespace is reseeded from the class list on load.
type DiskPayload struct {
	Schema uint16

	Name        string
	Path        string
	Imports     []ImportPayload
	FromImports []FromImportPayload
	Assignments map[string]string
	Guards      []GuardPayload
	Callables   []CallablePayload
}

type ImportPayload struct {
	Module string
	As     string
}

type FromImportPayload struct {
	Module string
	Name   string
	As     string
}

type GuardPayload struct {
	Line       int
	Statements []string
}

type CallablePayload struct {
	QualName   string
	What       uint8
	Params     []ParamPayload
	Return     string
	Source     string
	Doc        []string
	Decorators []string
	Line       int
}

type ParamPayload struct {
	Name       string
	Kind       uint8
	Annotation string
	Default    string
	HasDefault bool
}

// OpenDiskCache initializes and returns a disk cache at the standard
// location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "mods", hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err = os.Remove(f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Printf("failed to remove temp file: %v", err)
		}
	}()

	enc := msgpack.NewEncoder(f)
	err = enc.Encode(payload)
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Atomic replace.
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() {
		_ = f.Close()
	}()
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// moduleToDiskPayload converts a scanned module to its cached form.
func moduleToDiskPayload(m *pysrc.Module) *DiskPayload {
	if m == nil {
		return nil
	}
	payload := &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Name:        m.Name,
		Path:        m.Path,
		Assignments: m.Assignments,
	}
	payload.Imports = make([]ImportPayload, len(m.Imports))
	for i, imp := range m.Imports {
		payload.Imports[i] = ImportPayload{Module: imp.Module, As: imp.As}
	}
	payload.FromImports = make([]FromImportPayload, len(m.FromImports))
	for i, fi := range m.FromImports {
		payload.FromImports[i] = FromImportPayload{Module: fi.Module, Name: fi.Name, As: fi.As}
	}
	payload.Guards = make([]GuardPayload, len(m.Guards))
	for i, g := range m.Guards {
		payload.Guards[i] = GuardPayload{Line: g.Line, Statements: g.Statements}
	}
	payload.Callables = make([]CallablePayload, len(m.Callables))
	for i, c := range m.Callables {
		cp := CallablePayload{
			QualName:   c.QualName,
			What:       uint8(c.What),
			Return:     c.Return,
			Source:     c.Source,
			Doc:        c.Doc,
			Decorators: c.Decorators,
			Line:       c.Line,
		}
		cp.Params = make([]ParamPayload, len(c.Params))
		for j, p := range c.Params {
			cp.Params[j] = ParamPayload{
				Name:       p.Name,
				Kind:       uint8(p.Kind),
				Annotation: p.Annotation,
				Default:    p.Default,
				HasDefault: p.HasDefault,
			}
		}
		payload.Callables[i] = cp
	}
	return payload
}

// diskPayloadToModule restores a module descriptor from its cached form,
// reseeding the class namespace and constructor links the scanner would
// have produced.
func diskPayloadToModule(payload *DiskPayload, src string) *pysrc.Module {
	if payload == nil || payload.Schema != diskCacheSchemaVersion {
		return nil
	}
	m := &pysrc.Module{
		Name:        payload.Name,
		Path:        payload.Path,
		Source:      src,
		Assignments: payload.Assignments,
		Names:       make(map[string]*annotation.Value),
	}
	if m.Assignments == nil {
		m.Assignments = make(map[string]string)
	}
	for _, imp := range payload.Imports {
		m.Imports = append(m.Imports, pysrc.Import{Module: imp.Module, As: imp.As})
	}
	for _, fi := range payload.FromImports {
		m.FromImports = append(m.FromImports, pysrc.FromImport{Module: fi.Module, Name: fi.Name, As: fi.As})
	}
	for _, g := range payload.Guards {
		m.Guards = append(m.Guards, pysrc.GuardBlock{Line: g.Line, Statements: g.Statements})
	}
	classes := make(map[string]*pysrc.Callable)
	for _, cp := range payload.Callables {
		c := &pysrc.Callable{
			QualName:   cp.QualName,
			What:       pysrc.What(cp.What),
			Module:     m,
			Return:     cp.Return,
			Source:     cp.Source,
			Doc:        cp.Doc,
			Decorators: cp.Decorators,
			Line:       cp.Line,
		}
		for _, pp := range cp.Params {
			c.Params = append(c.Params, pysrc.Param{
				Name:       pp.Name,
				Kind:       pysrc.ParamKind(pp.Kind),
				Annotation: pp.Annotation,
				Default:    pp.Default,
				HasDefault: pp.HasDefault,
			})
		}
		m.Callables = append(m.Callables, c)
		switch c.What {
		case pysrc.WhatClass, pysrc.WhatException:
			classes[c.QualName] = c
			m.Names[c.QualName] = annotation.MakeClass(m.Name, c.QualName)
		}
	}
	for _, c := range m.Callables {
		if c.What == pysrc.WhatMethod && c.Name() == "__init__" {
			owner := c.QualName[:len(c.QualName)-len(".__init__")]
			if cls, ok := classes[owner]; ok {
				cls.Init = c
			}
		}
	}
	return m
}
