package parser

import (
	"unicode"

	"github.com/dhamidi/quill/scanner"
)

// Scanner tokenizes AsciiDoc. Constructs that only count at the start of a
// line (titles, list markers, delimiters, attribute entries, ...) are tried
// in StateAfterNewline; everything else is inline content.
type Scanner struct {
	scanner.Base[TokenKind, State]

	inTable bool

	// delimiter of the open verbatim block, zero when there is none
	verbatimChar  rune
	verbatimCount int
}

// NewScanner scans input[start:end] beginning in state.
func NewScanner(input []rune, start, end int, state State) *Scanner {
	s := &Scanner{Base: scanner.NewBase(input, start, end, state, TokenEOS, TokenUnknown)}
	s.inTable = state == StateWithinTable
	return s
}

func (s *Scanner) Scan() TokenKind {
	return s.Next(s.step)
}

func (s *Scanner) step() TokenKind {
	if s.AdvanceNewline() {
		switch {
		case s.State() == StateWithinVerbatim || s.verbatimCount > 0:
			s.SetState(StateWithinVerbatim)
		case s.inTable:
			s.SetState(StateWithinTable)
		default:
			s.SetState(StateAfterNewline)
		}
		return TokenNewline
	}
	switch s.State() {
	case StateAfterNewline:
		return s.scanLineStart()
	case StateWithinVerbatim:
		return s.scanVerbatim()
	case StateWithinTable:
		return s.scanTable()
	}
	return s.scanInline()
}

// Verbatim delimiters: listing, literal, passthrough and comment blocks.
func isVerbatimChar(r rune) bool {
	return r == '-' || r == '.' || r == '+' || r == '/'
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isNameChar(r rune) bool {
	return isAlnum(r) || r == '-' || r == '_'
}

func (s *Scanner) scanLineStart() TokenKind {
	if s.SkipBlank() {
		return TokenWhitespace
	}
	if s.advanceTableDelimiter() {
		s.inTable = true
		s.SetState(StateWithinBlockDelimiter)
		return TokenTableDelimiter
	}
	if ch, n, ok := s.advanceBlockDelimiter(); ok {
		if isVerbatimChar(ch) {
			s.verbatimChar, s.verbatimCount = ch, n
		}
		s.SetState(StateWithinBlockDelimiter)
		return TokenBlockDelimiter
	}
	if s.advanceMarker('=', 6) {
		s.SetState(StateWithinTitle)
		return TokenTitle
	}
	if s.advanceMarker('*', 5) || s.advanceMarker('.', 5) || s.advanceMarker('-', 1) {
		s.SetState(StateWithinListItem)
		return TokenListMarker
	}
	s.SetState(StateWithinContent)
	switch {
	case s.HasPrefix("//"):
		s.AdvanceToEOL()
		return TokenLineComment
	case s.advanceWholeLine(s.advanceAttributeEntry):
		return TokenAttributeEntry
	case s.advanceWholeLine(s.advanceBlockMacro):
		return TokenBlockMacro
	case s.advanceWholeLine(s.advanceBlockAttributes):
		return TokenBlockAttributes
	case s.advanceBlockTitle():
		return TokenBlockTitle
	case s.advanceAdmonition():
		return TokenAdmonition
	}
	return s.scanInline()
}

// advanceWholeLine runs match and succeeds only if it consumed the rest of
// the line, trailing blanks aside.
func (s *Scanner) advanceWholeLine(match func() bool) bool {
	pos := s.Pos()
	if match() {
		s.SkipBlank()
		if s.AtEOL() {
			return true
		}
	}
	s.GoBackTo(pos)
	return false
}

func (s *Scanner) advanceTableDelimiter() bool {
	pos := s.Pos()
	if s.AdvanceIfString("|===") {
		s.SkipBlank()
		if s.AtEOL() {
			return true
		}
	}
	s.GoBackTo(pos)
	return false
}

// advanceBlockDelimiter matches a line made of one non-alphanumeric rune
// repeated at least four times.
func (s *Scanner) advanceBlockDelimiter() (rune, int, bool) {
	pos := s.Pos()
	ch := s.PeekChar(0)
	if ch == 0 || isAlnum(ch) || unicode.IsSpace(ch) {
		return 0, 0, false
	}
	n := s.AdvanceWhileChar(func(r rune) bool { return r == ch })
	s.SkipBlank()
	if n < 4 || !s.AtEOL() {
		s.GoBackTo(pos)
		return 0, 0, false
	}
	return ch, n, true
}

// advanceMarker matches ch repeated 1 to limit times followed by blanks. The
// blanks are part of the marker.
func (s *Scanner) advanceMarker(ch rune, limit int) bool {
	pos := s.Pos()
	n := s.AdvanceWhileChar(func(r rune) bool { return r == ch })
	if n == 0 || n > limit || !scanner.IsBlank(s.PeekChar(0)) {
		s.GoBackTo(pos)
		return false
	}
	s.SkipBlank()
	return true
}

// :name: value
func (s *Scanner) advanceAttributeEntry() bool {
	if !s.AdvanceIfChar(':') {
		return false
	}
	if s.AdvanceWhileChar(func(r rune) bool { return isNameChar(r) || r == '!' }) == 0 {
		return false
	}
	if !s.AdvanceIfChar(':') {
		return false
	}
	if !s.AtEOL() && !scanner.IsBlank(s.PeekChar(0)) {
		return false
	}
	s.AdvanceToEOL()
	return true
}

// name::target[attributes]
func (s *Scanner) advanceBlockMacro() bool {
	if !unicode.IsLetter(s.PeekChar(0)) {
		return false
	}
	s.AdvanceWhileChar(isNameChar)
	if !s.AdvanceIfChars(':', ':') {
		return false
	}
	return s.advanceMacroTail()
}

// advanceMacroTail matches "target[attributes]" on the current line.
func (s *Scanner) advanceMacroTail() bool {
	s.AdvanceWhileChar(func(r rune) bool {
		return r != '[' && !unicode.IsSpace(r)
	})
	if !s.AdvanceIfChar('[') {
		return false
	}
	return s.advanceUntilOnLine(']')
}

// advanceUntilOnLine consumes up to and including ch if it occurs before
// the end of the line (or the next cell inside a table).
func (s *Scanner) advanceUntilOnLine(ch rune) bool {
	for !s.EOS() {
		r := s.PeekChar(0)
		if scanner.IsNewline(r) || (s.inTable && r == '|' && ch != '|') {
			return false
		}
		s.Advance(1)
		if r == ch {
			return true
		}
	}
	return false
}

// [style,attributes]
func (s *Scanner) advanceBlockAttributes() bool {
	if s.PeekChar(0) != '[' || s.PeekChar(1) == '[' {
		return false
	}
	start := s.Pos()
	s.Advance(1)
	s.AdvanceToEOL()
	for s.Pos() > start+1 && scanner.IsBlank(s.PeekChar(-1)) {
		s.GoBack(1)
	}
	return s.Pos() > start+1 && s.PeekChar(-1) == ']'
}

// .Title
func (s *Scanner) advanceBlockTitle() bool {
	next := s.PeekChar(1)
	if s.PeekChar(0) != '.' || next == 0 || next == '.' || unicode.IsSpace(next) {
		return false
	}
	s.AdvanceToEOL()
	return true
}

var admonitions = []string{"NOTE", "TIP", "IMPORTANT", "CAUTION", "WARNING"}

func (s *Scanner) advanceAdmonition() bool {
	pos := s.Pos()
	for _, a := range admonitions {
		if s.AdvanceIfString(a) && s.AdvanceIfChar(':') && s.SkipBlank() {
			return true
		}
		s.GoBackTo(pos)
	}
	return false
}

// scanVerbatim returns one line of a verbatim block, or the delimiter that
// ends it.
func (s *Scanner) scanVerbatim() TokenKind {
	pos := s.Pos()
	if ch, n, ok := s.advanceBlockDelimiter(); ok {
		if (s.verbatimCount == 0 && isVerbatimChar(ch)) || (ch == s.verbatimChar && n == s.verbatimCount) {
			s.verbatimChar, s.verbatimCount = 0, 0
			s.SetState(StateWithinBlockDelimiter)
			return TokenBlockDelimiter
		}
		s.GoBackTo(pos)
	}
	s.AdvanceToEOL()
	return TokenVerbatim
}

func (s *Scanner) scanTable() TokenKind {
	if s.AtLineStart() && s.advanceTableDelimiter() {
		s.inTable = false
		s.SetState(StateWithinBlockDelimiter)
		return TokenTableDelimiter
	}
	if s.AdvanceIfChar('|') {
		return TokenCellDelimiter
	}
	return s.scanInline()
}

func (s *Scanner) textKind() TokenKind {
	if s.inTable {
		return TokenCellText
	}
	return TokenText
}

// scanInline returns one inline construct, or the longest run of text that
// does not contain one.
func (s *Scanner) scanInline() TokenKind {
	if kind, ok := s.probeInline(); ok {
		return kind
	}
	s.Advance(1)
	for !s.AtEOL() {
		ch := s.PeekChar(0)
		if s.inTable && ch == '|' {
			break
		}
		if s.mayStartInline(ch) {
			pos := s.Pos()
			if _, ok := s.probeInline(); ok {
				s.GoBackTo(pos)
				break
			}
		}
		s.Advance(1)
	}
	return s.textKind()
}

func (s *Scanner) mayStartInline(ch rune) bool {
	switch ch {
	case '[', '<', '{', '*', '_', '`', '^', '~':
		return true
	}
	return unicode.IsLetter(ch) && !isAlnum(s.PeekChar(-1))
}

// probeInline tries each inline construct at the cursor. On failure the
// cursor is left where it was.
func (s *Scanner) probeInline() (TokenKind, bool) {
	pos := s.Pos()
	ch := s.PeekChar(0)
	switch ch {
	case '[':
		if s.AdvanceIfString("[[") && s.advanceUntilOnLine(']') && s.AdvanceIfChar(']') {
			return TokenAnchor, true
		}
	case '<':
		if s.AdvanceIfString("<<") && s.advanceUntilOnLine('>') && s.AdvanceIfChar('>') {
			return TokenCrossReference, true
		}
	case '{':
		s.Advance(1)
		if s.AdvanceWhileChar(isNameChar) > 0 && s.AdvanceIfChar('}') {
			return TokenAttributeReference, true
		}
	case '*', '_', '`', '^', '~':
		if s.advanceEmphasis(ch) {
			return TokenEmphasis, true
		}
	default:
		if unicode.IsLetter(ch) && !isAlnum(s.PeekChar(-1)) {
			if s.advanceLink() {
				return TokenLink, true
			}
			s.GoBackTo(pos)
			if s.advanceInlineMacro() {
				return TokenInlineMacro, true
			}
		}
	}
	s.GoBackTo(pos)
	return TokenUnknown, false
}

// advanceEmphasis matches *strong*, _emphasis_, `monospace` (constrained,
// or doubled to work inside words), ^superscript^ and ~subscript~.
func (s *Scanner) advanceEmphasis(mark rune) bool {
	pos := s.Pos()
	if mark == '^' || mark == '~' {
		s.Advance(1)
		n := s.AdvanceWhileChar(func(r rune) bool {
			return r != mark && !unicode.IsSpace(r) && !(s.inTable && r == '|')
		})
		if n > 0 && s.AdvanceIfChar(mark) {
			return true
		}
		s.GoBackTo(pos)
		return false
	}

	if s.AdvanceIfChars(mark, mark) {
		if s.advanceDoubleClose(mark) {
			return true
		}
		s.GoBackTo(pos)
	}

	if isAlnum(s.PeekChar(-1)) {
		return false
	}
	next := s.PeekChar(1)
	if next == 0 || unicode.IsSpace(next) || next == mark {
		return false
	}
	s.Advance(1)
	for !s.EOS() {
		r := s.PeekChar(0)
		if scanner.IsNewline(r) || (s.inTable && r == '|') {
			break
		}
		if r == mark && !unicode.IsSpace(s.PeekChar(-1)) && !isAlnum(s.PeekChar(1)) {
			s.Advance(1)
			return true
		}
		s.Advance(1)
	}
	s.GoBackTo(pos)
	return false
}

func (s *Scanner) advanceDoubleClose(mark rune) bool {
	if s.PeekChar(0) == mark || s.AtEOL() {
		return false
	}
	for !s.AtEOL() {
		if s.inTable && s.PeekChar(0) == '|' {
			return false
		}
		if s.AdvanceIfChars(mark, mark) {
			return true
		}
		s.Advance(1)
	}
	return false
}

var linkSchemes = []string{"https://", "http://", "ftp://", "irc://", "mailto:", "link:"}

// advanceLink matches a bare URL, optionally followed by [text], or
// link:target[text].
func (s *Scanner) advanceLink() bool {
	for _, scheme := range linkSchemes {
		pos := s.Pos()
		if !s.AdvanceIfString(scheme) {
			continue
		}
		n := s.AdvanceWhileChar(func(r rune) bool {
			return r != '[' && !unicode.IsSpace(r) && !(s.inTable && r == '|')
		})
		if n == 0 {
			s.GoBackTo(pos)
			return false
		}
		if s.PeekChar(0) == '[' {
			s.Advance(1)
			if !s.advanceUntilOnLine(']') {
				s.GoBackTo(pos)
				return false
			}
		} else if scheme == "link:" || scheme == "mailto:" {
			s.GoBackTo(pos)
			return false
		}
		return true
	}
	return false
}

// name:target[attributes] or name::target[attributes]
func (s *Scanner) advanceInlineMacro() bool {
	if s.AdvanceWhileChar(isNameChar) == 0 || !s.AdvanceIfChar(':') {
		return false
	}
	s.AdvanceIfChar(':')
	return s.advanceMacroTail()
}
