// Package position converts between rune offsets, which the scanners and
// trees use, and LSP positions, whose characters count UTF-16 code units.
package position

import (
	"sort"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Mapper maps offsets of one text. Build a new Mapper when the text changes.
type Mapper struct {
	text  []rune
	lines []int // rune offset of each line start
}

// NewMapper indexes the line starts of text. Lines end at "\n", "\r\n" or a
// lone "\r".
func NewMapper(text []rune) *Mapper {
	m := &Mapper{text: text, lines: []int{0}}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			m.lines = append(m.lines, i+1)
		case '\n':
			m.lines = append(m.lines, i+1)
		}
	}
	return m
}

// LineCount returns the number of lines, which is at least one.
func (m *Mapper) LineCount() int {
	return len(m.lines)
}

func utf16Len(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

func isLineEnd(r rune) bool {
	return r == '\n' || r == '\r'
}

// PositionAt returns the LSP position of offset. Offsets outside the text
// are clamped.
func (m *Mapper) PositionAt(offset int) protocol.Position {
	offset = max(0, min(offset, len(m.text)))
	line := sort.Search(len(m.lines), func(i int) bool { return m.lines[i] > offset }) - 1
	char := 0
	for i := m.lines[line]; i < offset && !isLineEnd(m.text[i]); i++ {
		char += utf16Len(m.text[i])
	}
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(char)}
}

// OffsetAt returns the rune offset of pos. A character past the end of its
// line maps to the line end; a line past the last maps to the end of text.
// A character inside a surrogate pair maps to the start of that rune.
func (m *Mapper) OffsetAt(pos protocol.Position) int {
	line := int(pos.Line)
	if line >= len(m.lines) {
		return len(m.text)
	}
	i := m.lines[line]
	need := int(pos.Character)
	for i < len(m.text) && !isLineEnd(m.text[i]) {
		w := utf16Len(m.text[i])
		if need < w {
			break
		}
		need -= w
		i++
	}
	return i
}

// Range returns the LSP range of the half-open offsets [start, end).
func (m *Mapper) Range(start, end int) protocol.Range {
	return protocol.Range{Start: m.PositionAt(start), End: m.PositionAt(end)}
}
