package scanner

import "unicode"

// Cursor reads runes from a slice between a start and an end offset.
//
// Every multi-rune match (AdvanceIfChars, AdvanceIfString, ...) either
// consumes the whole match or leaves the cursor where it was. Callers that
// try several token shapes at one position record Pos before the attempt and
// call GoBackTo when it fails.
type Cursor struct {
	input []rune
	pos   int
	end   int
}

// NewCursor returns a cursor positioned at start that will not read at or
// past end. Out of range offsets are clamped to the input.
func NewCursor(input []rune, start, end int) Cursor {
	if end < 0 || end > len(input) {
		end = len(input)
	}
	if start < 0 {
		start = 0
	}
	if start > end {
		start = end
	}
	return Cursor{input: input, pos: start, end: end}
}

func (c *Cursor) Pos() int {
	return c.pos
}

func (c *Cursor) End() int {
	return c.end
}

func (c *Cursor) EOS() bool {
	return c.pos >= c.end
}

// Slice returns the text between two offsets of the underlying input.
func (c *Cursor) Slice(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(c.input) {
		end = len(c.input)
	}
	if start >= end {
		return ""
	}
	return string(c.input[start:end])
}

// PeekChar returns the rune n positions away from the cursor, or 0 when that
// position is outside the readable range. Negative n looks behind the cursor,
// including before the start offset.
func (c *Cursor) PeekChar(n int) rune {
	i := c.pos + n
	if i < 0 || i >= c.end {
		return 0
	}
	return c.input[i]
}

func (c *Cursor) Advance(n int) {
	c.GoBackTo(c.pos + n)
}

func (c *Cursor) GoBack(n int) {
	c.GoBackTo(c.pos - n)
}

// GoBackTo moves the cursor to pos. It is the restore half of every
// backtracking attempt.
func (c *Cursor) GoBackTo(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > c.end {
		pos = c.end
	}
	c.pos = pos
}

func (c *Cursor) AdvanceIfChar(ch rune) bool {
	if c.pos < c.end && c.input[c.pos] == ch {
		c.pos++
		return true
	}
	return false
}

// AdvanceIfAnyChar consumes one rune if it is one of chars.
func (c *Cursor) AdvanceIfAnyChar(chars ...rune) bool {
	if c.pos >= c.end {
		return false
	}
	for _, ch := range chars {
		if c.input[c.pos] == ch {
			c.pos++
			return true
		}
	}
	return false
}

// AdvanceIfChars consumes seq only if the whole sequence is present.
func (c *Cursor) AdvanceIfChars(seq ...rune) bool {
	if c.pos+len(seq) > c.end {
		return false
	}
	for i, ch := range seq {
		if c.input[c.pos+i] != ch {
			return false
		}
	}
	c.pos += len(seq)
	return true
}

func (c *Cursor) AdvanceIfString(s string) bool {
	return c.AdvanceIfChars([]rune(s)...)
}

// HasPrefix reports whether the input at the cursor starts with s.
func (c *Cursor) HasPrefix(s string) bool {
	pos := c.pos
	ok := c.AdvanceIfString(s)
	c.pos = pos
	return ok
}

// AdvanceWhileChar consumes runes while pred holds and returns how many were
// consumed.
func (c *Cursor) AdvanceWhileChar(pred func(rune) bool) int {
	start := c.pos
	for c.pos < c.end && pred(c.input[c.pos]) {
		c.pos++
	}
	return c.pos - start
}

// AdvanceUntilChar stops in front of the first rune that is one of chars.
// It returns false, with the cursor at the end, when none was found.
func (c *Cursor) AdvanceUntilChar(chars ...rune) bool {
	for c.pos < c.end {
		ch := c.input[c.pos]
		for _, stop := range chars {
			if ch == stop {
				return true
			}
		}
		c.pos++
	}
	return false
}

// AdvanceUntilString stops in front of the first occurrence of s.
func (c *Cursor) AdvanceUntilString(s string) bool {
	seq := []rune(s)
	if len(seq) == 0 {
		return true
	}
	for c.pos < c.end {
		if c.input[c.pos] == seq[0] && c.HasPrefix(s) {
			return true
		}
		c.pos++
	}
	return false
}

// SkipWhitespace consumes any Unicode white space, line breaks included.
func (c *Cursor) SkipWhitespace() bool {
	return c.AdvanceWhileChar(unicode.IsSpace) > 0
}

// SkipBlank consumes spaces and tabs only.
func (c *Cursor) SkipBlank() bool {
	return c.AdvanceWhileChar(IsBlank) > 0
}

// AtNewline reports whether the cursor is in front of a line break.
func (c *Cursor) AtNewline() bool {
	ch := c.PeekChar(0)
	return ch == '\n' || ch == '\r'
}

// AtEOL reports whether the cursor is in front of a line break or at the end.
func (c *Cursor) AtEOL() bool {
	return c.EOS() || c.AtNewline()
}

// AdvanceNewline consumes "\r\n", "\n" or a lone "\r".
func (c *Cursor) AdvanceNewline() bool {
	if c.AdvanceIfChar('\n') {
		return true
	}
	if c.AdvanceIfChar('\r') {
		c.AdvanceIfChar('\n')
		return true
	}
	return false
}

// AdvanceToEOL moves in front of the next line break or to the end.
func (c *Cursor) AdvanceToEOL() int {
	start := c.pos
	c.AdvanceUntilChar('\n', '\r')
	return c.pos - start
}

// AtLineStart reports whether the cursor sits at the beginning of a line of
// the underlying input.
func (c *Cursor) AtLineStart() bool {
	if c.pos == 0 {
		return true
	}
	prev := c.input[c.pos-1]
	return prev == '\n' || prev == '\r'
}

func IsBlank(r rune) bool {
	return r == ' ' || r == '\t'
}

func IsNewline(r rune) bool {
	return r == '\n' || r == '\r'
}
