// Package docstring splices rendered type fields into documentation line
// buffers. It owns the structured-field conventions of the doc markup
// (":param x:", ":type x:", ":return:", ":rtype:") and the insertion-point
// logic that keeps injected fields structurally correct.
package docstring

import "strings"

// Buffer is one callable's documentation as an ordered line sequence. The
// splicer only inserts lines and, for the return fold and trailing default
// suffixes, extends existing ones; lines are never reordered or removed.
type Buffer struct {
	lines []string
}

func NewBuffer(lines []string) *Buffer {
	b := &Buffer{lines: make([]string, len(lines))}
	copy(b.lines, lines)
	return b
}

func (b *Buffer) Len() int { return len(b.lines) }

func (b *Buffer) At(i int) string { return b.lines[i] }

// Lines returns the buffer contents. The slice aliases internal storage.
func (b *Buffer) Lines() []string { return b.lines }

func (b *Buffer) Insert(i int, line string) {
	b.lines = append(b.lines, "")
	copy(b.lines[i+1:], b.lines[i:])
	b.lines[i] = line
}

func (b *Buffer) Append(line string) {
	b.lines = append(b.lines, line)
}

// Extend appends a suffix to an existing line in place.
func (b *Buffer) Extend(i int, suffix string) {
	b.lines[i] += suffix
}

// Replace rewrites one line. Used only by the return-description fold.
func (b *Buffer) Replace(i int, line string) {
	b.lines[i] = line
}

func (b *Buffer) String() string {
	return strings.Join(b.lines, "\n")
}
