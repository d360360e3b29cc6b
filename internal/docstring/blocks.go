package docstring

import "strings"

// blockKind classifies one top-level block of a doc buffer. The splicer
// only needs enough structure to place a return-type field: where the
// parameter field list ends, and where non-prose content (directives,
// doctest examples, lists) begins.
type blockKind uint8

const (
	blockParagraph blockKind = iota
	blockFieldList
	blockLiteral
	blockDirective
	blockDoctest
	blockBullet
	blockEnum
)

type block struct {
	kind  blockKind
	start int // first line index
	end   int // exclusive
}

// isText reports whether a return-type field may be placed after this
// block without separating prose from its related content.
func (b block) isText() bool {
	switch b.kind {
	case blockParagraph, blockFieldList, blockLiteral:
		return true
	default:
		return false
	}
}

// parseBlocks segments the buffer into top-level blocks. Continuation
// lines (indented) and interior blank lines followed by indentation stay
// attached to the block they belong to.
func parseBlocks(lines []string) []block {
	var blocks []block
	i := 0
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == "" {
			i++
			continue
		}
		start := i
		kind := classifyBlock(lines[i])
		i = consumeBlock(lines, i, kind)
		blocks = append(blocks, block{kind: kind, start: start, end: i})

		// A paragraph ending in "::" introduces a literal block: the
		// following indented region renders verbatim.
		if kind == blockParagraph && strings.HasSuffix(strings.TrimRight(lines[i-1], " \t"), "::") {
			litStart := skipBlank(lines, i)
			if litStart < len(lines) && indented(lines[litStart]) {
				j := litStart
				for j < len(lines) && (strings.TrimSpace(lines[j]) == "" || indented(lines[j])) {
					j++
				}
				for j > litStart && strings.TrimSpace(lines[j-1]) == "" {
					j--
				}
				blocks = append(blocks, block{kind: blockLiteral, start: litStart, end: j})
				i = j
			}
		}
	}
	return blocks
}

func classifyBlock(line string) blockKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, ".. "):
		return blockDirective
	case strings.HasPrefix(trimmed, ">>>"):
		return blockDoctest
	case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "), strings.HasPrefix(trimmed, "+ "):
		return blockBullet
	case isEnumItem(trimmed):
		return blockEnum
	default:
		if _, _, ok := fieldParts(line); ok {
			return blockFieldList
		}
		return blockParagraph
	}
}

func consumeBlock(lines []string, i int, kind blockKind) int {
	i++
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			// A blank line ends the block unless the content resumes
			// indented, or with another field of the same list.
			next := skipBlank(lines, i)
			if next >= len(lines) {
				return i
			}
			resumes := indented(lines[next])
			if kind == blockFieldList {
				if _, _, ok := fieldParts(lines[next]); ok {
					resumes = true
				}
			}
			if !resumes || kind == blockParagraph || kind == blockDoctest {
				return i
			}
			i = next
			continue
		}
		if indented(line) {
			i++
			continue
		}
		switch kind {
		case blockFieldList:
			if _, _, ok := fieldParts(line); !ok {
				return i
			}
		case blockParagraph:
			if _, _, ok := fieldParts(line); ok {
				return i
			}
		case blockDoctest:
			// Unindented continuation output stays in the example.
		}
		i++
	}
	return i
}

func skipBlank(lines []string, i int) int {
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	return i
}

func indented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

func isEnumItem(trimmed string) bool {
	if strings.HasPrefix(trimmed, "#.") {
		return true
	}
	digits := 0
	for digits < len(trimmed) && trimmed[digits] >= '0' && trimmed[digits] <= '9' {
		digits++
	}
	if digits == 0 || digits >= len(trimmed) {
		return false
	}
	if trimmed[digits] != '.' && trimmed[digits] != ')' {
		return false
	}
	return digits+1 >= len(trimmed) || trimmed[digits+1] == ' '
}

// afterParamFields finds the insertion point just past the first field
// list that documents a parameter. Field lists carrying only other fields
// (":meta:", ":raises:") do not anchor the return type.
func afterParamFields(blocks []block, lines []string) (int, bool) {
	for _, b := range blocks {
		if b.kind != blockFieldList {
			continue
		}
		for j := b.start; j < b.end; j++ {
			if kw, _, ok := fieldParts(lines[j]); ok && paramKeywords[kw] {
				return b.end, true
			}
		}
	}
	return 0, false
}

// beforeFirstNonText finds the first block a return-type field should not
// be pushed past: directives, examples and lists.
func beforeFirstNonText(blocks []block) (int, bool) {
	for _, b := range blocks {
		if !b.isText() {
			return b.start, true
		}
	}
	return 0, false
}
