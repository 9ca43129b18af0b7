package position

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

func pos(line, char int) protocol.Position {
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(char)}
}

func TestPositionAt(t *testing.T) {
	m := NewMapper([]rune("ab\r\nc😀d\ne"))
	tests := []struct {
		offset int
		want   protocol.Position
	}{
		{0, pos(0, 0)},
		{2, pos(0, 2)},
		{3, pos(0, 2)},
		{4, pos(1, 0)},
		{5, pos(1, 1)},
		{6, pos(1, 3)},
		{8, pos(2, 0)},
		{9, pos(2, 1)},
		{-3, pos(0, 0)},
		{100, pos(2, 1)},
	}
	for _, tt := range tests {
		if got := m.PositionAt(tt.offset); got != tt.want {
			t.Errorf("PositionAt(%d) = %+v, want %+v", tt.offset, got, tt.want)
		}
	}
}

func TestOffsetAt(t *testing.T) {
	m := NewMapper([]rune("ab\r\nc😀d\ne"))
	tests := []struct {
		pos  protocol.Position
		want int
	}{
		{pos(0, 0), 0},
		{pos(0, 2), 2},
		{pos(0, 10), 2},
		{pos(1, 1), 5},
		{pos(1, 2), 5},
		{pos(1, 3), 6},
		{pos(2, 1), 9},
		{pos(5, 0), 9},
	}
	for _, tt := range tests {
		if got := m.OffsetAt(tt.pos); got != tt.want {
			t.Errorf("OffsetAt(%+v) = %d, want %d", tt.pos, got, tt.want)
		}
	}
}

func TestLineCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 1},
		{"a", 1},
		{"a\n", 2},
		{"a\rb\r\nc", 3},
	}
	for _, tt := range tests {
		if got := NewMapper([]rune(tt.text)).LineCount(); got != tt.want {
			t.Errorf("LineCount(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	text := []rune("x😀y\nz\r\n\rw")
	m := NewMapper(text)
	for off := 0; off <= len(text); off++ {
		// inside "\r\n"
		if off == 6 {
			continue
		}
		if got := m.OffsetAt(m.PositionAt(off)); got != off {
			t.Errorf("OffsetAt(PositionAt(%d)) = %d", off, got)
		}
	}
}
