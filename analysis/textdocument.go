// Package analysis provides the incremental document model: text buffers,
// parsed documents with debounced reparsing, the document store, and the
// symbol index consumed by the completion engine.
package analysis

import (
	"sort"
	"strings"

	"go.lsp.dev/protocol"
)

// TextDocument is a mutable text buffer with offset/position mapping.
// Positions are zero-based (line, character) pairs; characters are byte
// columns within the line.
type TextDocument struct {
	content     string
	lineOffsets []int // offset of the first character of each line
}

// NewTextDocument creates a buffer over content.
func NewTextDocument(content string) *TextDocument {
	d := &TextDocument{content: content}
	d.computeLineOffsets()

	return d
}

func (d *TextDocument) computeLineOffsets() {
	offsets := []int{0}

	for i := 0; i < len(d.content); i++ {
		if d.content[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}

	d.lineOffsets = offsets
}

// Text returns the full buffer content.
func (d *TextDocument) Text() string {
	return d.content
}

// Len returns the buffer length in bytes.
func (d *TextDocument) Len() int {
	return len(d.content)
}

// LineCount returns the number of lines in the buffer.
func (d *TextDocument) LineCount() int {
	return len(d.lineOffsets)
}

// OffsetAtPosition converts a position to a byte offset. Positions past the
// end of a line or past the last line clamp to the nearest valid offset.
func (d *TextDocument) OffsetAtPosition(pos protocol.Position) int {
	line := int(pos.Line)
	if line >= len(d.lineOffsets) {
		return len(d.content)
	}

	offset := d.lineOffsets[line] + int(pos.Character)

	end := len(d.content)
	if line+1 < len(d.lineOffsets) {
		end = d.lineOffsets[line+1]
	}

	if offset > end {
		offset = end
	}

	return offset
}

// PositionAtOffset converts a byte offset to a position. Offsets beyond the
// buffer clamp to the end position.
func (d *TextDocument) PositionAtOffset(offset int) protocol.Position {
	if offset > len(d.content) {
		offset = len(d.content)
	}

	// First line whose start is after the offset; the offset's line is the
	// one before it.
	line := sort.Search(len(d.lineOffsets), func(i int) bool {
		return d.lineOffsets[i] > offset
	}) - 1

	return protocol.Position{
		Line:      uint32(line),                         //nolint:gosec // line counts are small
		Character: uint32(offset - d.lineOffsets[line]), //nolint:gosec // column counts are small
	}
}

// TextAtOffset returns length bytes starting at offset, clamped to the
// buffer.
func (d *TextDocument) TextAtOffset(offset, length int) string {
	if offset < 0 || offset >= len(d.content) {
		return ""
	}

	end := offset + length
	if end > len(d.content) {
		end = len(d.content)
	}

	return d.content[offset:end]
}

// LineSubstring returns the text of the line containing offset, from the
// line start up to (but not including) offset.
func (d *TextDocument) LineSubstring(offset int) string {
	if offset > len(d.content) {
		offset = len(d.content)
	}

	pos := d.PositionAtOffset(offset)

	return d.content[d.lineOffsets[pos.Line]:offset]
}

// ApplyEdit replaces the text in rng with replacement. Returns false and
// leaves the buffer untouched when the range does not address the current
// buffer.
func (d *TextDocument) ApplyEdit(rng protocol.Range, replacement string) bool {
	if int(rng.Start.Line) >= len(d.lineOffsets) || int(rng.End.Line) >= len(d.lineOffsets) {
		return false
	}

	start := d.OffsetAtPosition(rng.Start)
	end := d.OffsetAtPosition(rng.End)

	if start > end {
		return false
	}

	var b strings.Builder

	b.Grow(len(d.content) - (end - start) + len(replacement))
	b.WriteString(d.content[:start])
	b.WriteString(replacement)
	b.WriteString(d.content[end:])
	d.content = b.String()
	d.computeLineOffsets()

	return true
}
