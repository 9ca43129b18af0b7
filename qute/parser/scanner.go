package parser

import (
	"unicode"

	"github.com/dhamidi/quill/scanner"
)

// Scanner tokenizes a Qute template: literal content, {expressions},
// {#section} start tags, {/section} end tags, {! comments !}, {| cdata |}
// and {@Type alias} parameter declarations.
type Scanner struct {
	scanner.Base[TokenKind, State]
}

// NewScanner scans input[start:end] beginning in state.
func NewScanner(input []rune, start, end int, state State) *Scanner {
	return &Scanner{Base: scanner.NewBase(input, start, end, state, TokenEOS, TokenUnknown)}
}

func (s *Scanner) Scan() TokenKind {
	return s.Next(s.step)
}

func (s *Scanner) step() TokenKind {
	switch s.State() {
	case StateAfterOpeningStartTag:
		return s.scanAfterOpeningStartTag()
	case StateWithinStartTag:
		return s.scanStartTag()
	case StateAfterOpeningEndTag:
		return s.scanAfterOpeningEndTag()
	case StateWithinEndTag:
		return s.scanEndTag()
	case StateWithinExpression:
		return s.scanExpression()
	case StateWithinComment:
		if s.AdvanceIfChars('!', '}') {
			s.SetState(StateWithinContent)
			return TokenEndComment
		}
		s.AdvanceUntilString("!}")
		return TokenComment
	case StateWithinCDATA:
		if s.AdvanceIfChars('|', '}') {
			s.SetState(StateWithinContent)
			return TokenCDATATagClose
		}
		s.AdvanceUntilString("|}")
		return TokenCDATAContent
	case StateWithinParameterDeclaration:
		return s.scanParameterDeclaration()
	}
	return s.scanContent()
}

// opensConstruct reports whether the "{" under the cursor starts a template
// construct rather than literal text.
func (s *Scanner) opensConstruct() bool {
	if s.PeekChar(0) != '{' {
		return false
	}
	next := s.PeekChar(1)
	return next != 0 && next != '{' && next != '}' && !unicode.IsSpace(next)
}

func (s *Scanner) scanContent() TokenKind {
	if s.opensConstruct() {
		s.Advance(1)
		switch {
		case s.AdvanceIfChar('!'):
			s.SetState(StateWithinComment)
			return TokenStartComment
		case s.AdvanceIfChar('|'):
			s.SetState(StateWithinCDATA)
			return TokenCDATATagOpen
		case s.AdvanceIfChar('#'):
			s.SetState(StateAfterOpeningStartTag)
			return TokenStartTagOpen
		case s.AdvanceIfChar('/'):
			s.SetState(StateAfterOpeningEndTag)
			return TokenEndTagOpen
		case s.AdvanceIfChar('@'):
			s.SetState(StateWithinParameterDeclaration)
			return TokenStartParameterDeclaration
		}
		s.SetState(StateWithinExpression)
		return TokenStartExpression
	}
	s.SetState(StateWithinContent)
	for !s.EOS() {
		switch ch := s.PeekChar(0); {
		case ch == '\\' && s.PeekChar(1) == '{':
			s.Advance(2)
		case s.opensConstruct():
			return TokenContent
		default:
			s.Advance(1)
		}
	}
	return TokenContent
}

// dangling handles a "{" found inside an unterminated construct: the
// construct is abandoned and scanning continues as content.
func (s *Scanner) dangling() TokenKind {
	s.SetState(StateWithinContent)
	return s.scanContent()
}

func isTagNameChar(r rune) bool {
	return r != 0 && !unicode.IsSpace(r) && r != '}' && r != '{' && r != '/'
}

func (s *Scanner) scanAfterOpeningStartTag() TokenKind {
	s.SetState(StateWithinStartTag)
	if s.AdvanceWhileChar(isTagNameChar) > 0 {
		return TokenStartTag
	}
	return s.scanStartTag()
}

func (s *Scanner) scanStartTag() TokenKind {
	if s.SkipWhitespace() {
		return TokenWhitespace
	}
	switch {
	case s.AdvanceIfChars('/', '}'):
		s.SetState(StateWithinContent)
		return TokenStartTagSelfClose
	case s.AdvanceIfChar('}'):
		s.SetState(StateWithinContent)
		return TokenStartTagClose
	case s.PeekChar(0) == '{':
		return s.dangling()
	}
	s.advanceParameter()
	return TokenParameterContent
}

// advanceParameter consumes one start tag parameter. Quoted text and
// parenthesized arguments may contain spaces.
func (s *Scanner) advanceParameter() {
	depth := 0
	for !s.EOS() {
		ch := s.PeekChar(0)
		switch {
		case ch == '{' || ch == '}':
			return
		case ch == '/' && s.PeekChar(1) == '}':
			return
		case unicode.IsSpace(ch) && depth == 0:
			return
		case ch == '(':
			depth++
		case ch == ')' && depth > 0:
			depth--
		case ch == '\'' || ch == '"':
			s.Advance(1)
			s.advanceQuoted(ch)
			continue
		}
		s.Advance(1)
	}
}

// advanceQuoted consumes up to and including the closing quote. An
// unterminated string stops at the end of the line so one stray quote does
// not swallow the rest of the template.
func (s *Scanner) advanceQuoted(quote rune) {
	for !s.EOS() {
		ch := s.PeekChar(0)
		switch {
		case ch == quote:
			s.Advance(1)
			return
		case scanner.IsNewline(ch):
			return
		case ch == '\\':
			s.Advance(1)
		}
		s.Advance(1)
	}
}

func (s *Scanner) scanAfterOpeningEndTag() TokenKind {
	s.SetState(StateWithinEndTag)
	if s.AdvanceWhileChar(isTagNameChar) > 0 {
		return TokenEndTag
	}
	return s.scanEndTag()
}

func (s *Scanner) scanEndTag() TokenKind {
	if s.SkipWhitespace() {
		return TokenWhitespace
	}
	switch {
	case s.AdvanceIfChar('}'):
		s.SetState(StateWithinContent)
		return TokenEndTagClose
	case s.PeekChar(0) == '{':
		return s.dangling()
	}
	s.AdvanceWhileChar(func(r rune) bool {
		return r != '{' && r != '}' && !unicode.IsSpace(r)
	})
	return TokenUnknown
}

func (s *Scanner) scanExpression() TokenKind {
	switch {
	case s.AdvanceIfChar('}'):
		s.SetState(StateWithinContent)
		return TokenEndExpression
	case s.PeekChar(0) == '{':
		return s.dangling()
	}
	for !s.EOS() {
		ch := s.PeekChar(0)
		if ch == '}' || ch == '{' {
			break
		}
		s.Advance(1)
		if ch == '\'' || ch == '"' {
			s.advanceQuoted(ch)
		}
	}
	return TokenExpressionContent
}

func (s *Scanner) scanParameterDeclaration() TokenKind {
	switch {
	case s.AdvanceIfChar('}'):
		s.SetState(StateWithinContent)
		return TokenEndParameterDeclaration
	case s.PeekChar(0) == '{':
		return s.dangling()
	}
	s.AdvanceUntilChar('}', '{')
	return TokenParameterDeclaration
}
