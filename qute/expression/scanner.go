// Package expression tokenizes the expression language found between the
// braces of a Qute template: object.property.method(args) chains,
// namespace:part references, indexed access, string literals, the ternary
// and elvis operators, and the infix form used by section parameters
// ("item.age gt 10").
package expression

import (
	"unicode"

	"github.com/dhamidi/quill/scanner"
)

// Scanner tokenizes one expression. It never fails: anything it does not
// recognize becomes a TokenUnknown of at least one rune.
type Scanner struct {
	scanner.Base[TokenKind, State]

	infix bool

	// parts counts top-level whitespace separated terms seen so far.
	parts int

	depth      int
	callDepths []int

	quote       rune
	beforeQuote State
}

// New scans input[start:end] beginning in state. With infix set, terms after
// the first alternate between operator names and operands.
func New(input []rune, start, end int, state State, infix bool) *Scanner {
	return &Scanner{
		Base:        scanner.NewBase(input, start, end, state, TokenEOS, TokenUnknown),
		infix:       infix,
		beforeQuote: StateWithinParts,
	}
}

// NewString scans the whole of text from StateWithinExpression.
func NewString(text string, infix bool) *Scanner {
	r := []rune(text)
	return New(r, 0, len(r), StateWithinExpression, infix)
}

// Parts returns the number of completed top-level terms.
func (s *Scanner) Parts() int {
	return s.parts
}

func (s *Scanner) Scan() TokenKind {
	return s.Next(s.step)
}

func (s *Scanner) step() TokenKind {
	switch s.State() {
	case StateWithinString:
		return s.scanString()
	case StateWithinMethod:
		return s.scanMethod()
	case StateWithinPropertyAngleBracket:
		return s.scanAngleBracket()
	case StateAfterNamespace:
		return s.scanAfterNamespace()
	case StateWithinParts:
		return s.scanParts()
	}
	return s.scanExpression()
}

// IsPartChar reports whether r may appear inside an identifier part.
func IsPartChar(r rune) bool {
	if r == 0 || unicode.IsSpace(r) {
		return false
	}
	switch r {
	case '.', ':', '(', ')', '[', ']', '\'', '"', ',', '?':
		return false
	}
	return true
}

func isQuote(r rune) bool {
	return r == '\'' || r == '"'
}

func (s *Scanner) scanExpression() TokenKind {
	if s.SkipWhitespace() {
		return TokenWhitespace
	}
	if s.infix && s.parts > 0 {
		if s.parts%2 == 1 {
			s.AdvanceWhileChar(func(r rune) bool { return !unicode.IsSpace(r) })
			s.SetState(StateWithinParts)
			return TokenInfixMethodPart
		}
		s.advanceInfixParameter()
		s.SetState(StateWithinParts)
		return TokenInfixParameter
	}

	ch := s.PeekChar(0)
	switch {
	case isQuote(ch):
		return s.startString(StateWithinParts)
	case ch == '?' || ch == ':':
		return s.scanOperator()
	case ch == '(':
		return s.openCall()
	case ch == '.':
		s.Advance(1)
		s.SetState(StateWithinParts)
		return TokenDot
	case IsPartChar(ch):
		s.AdvanceWhileChar(IsPartChar)
		if s.PeekChar(0) == ':' {
			s.SetState(StateAfterNamespace)
			return TokenNamespacePart
		}
		s.SetState(StateWithinParts)
		return TokenObjectPart
	}
	s.Advance(1)
	return TokenUnknown
}

// advanceInfixParameter consumes one operand, keeping quoted text with
// spaces in it together.
func (s *Scanner) advanceInfixParameter() {
	for !s.EOS() {
		ch := s.PeekChar(0)
		if unicode.IsSpace(ch) {
			return
		}
		s.Advance(1)
		if isQuote(ch) {
			s.advanceUntilQuote(ch)
			s.AdvanceIfChar(ch)
		}
	}
}

// advanceUntilQuote stops in front of quote, or any quote when quote is 0.
// A backslash escapes the rune after it.
func (s *Scanner) advanceUntilQuote(quote rune) {
	for !s.EOS() {
		ch := s.PeekChar(0)
		if ch == quote || (quote == 0 && isQuote(ch)) {
			return
		}
		if ch == '\\' {
			s.Advance(1)
		}
		s.Advance(1)
	}
}

// scanOperator handles "?:", "?" and a ":" that does not follow a
// namespace.
func (s *Scanner) scanOperator() TokenKind {
	s.SetState(StateWithinExpression)
	if s.AdvanceIfChars('?', ':') {
		return TokenElvis
	}
	if s.AdvanceIfChar('?') {
		return TokenTernary
	}
	s.Advance(1)
	return TokenTernaryElse
}

func (s *Scanner) scanAfterNamespace() TokenKind {
	if s.AdvanceIfChar(':') {
		return TokenColonSpace
	}
	if IsPartChar(s.PeekChar(0)) {
		s.AdvanceWhileChar(IsPartChar)
		s.SetState(StateWithinParts)
		if s.PeekChar(0) == '(' {
			return TokenMethodPart
		}
		return TokenObjectPart
	}
	s.SetState(StateWithinParts)
	return s.scanParts()
}

func (s *Scanner) scanParts() TokenKind {
	if s.SkipWhitespace() {
		s.parts++
		s.SetState(StateWithinExpression)
		return TokenWhitespace
	}
	ch := s.PeekChar(0)
	switch {
	case ch == '.':
		s.Advance(1)
		return TokenDot
	case ch == '(':
		return s.openCall()
	case ch == '[':
		s.Advance(1)
		s.SetState(StateWithinPropertyAngleBracket)
		return TokenOpenSquareBracket
	case isQuote(ch):
		return s.startString(StateWithinParts)
	case ch == '?':
		return s.scanOperator()
	case IsPartChar(ch):
		s.AdvanceWhileChar(IsPartChar)
		if s.PeekChar(0) == '(' {
			return TokenMethodPart
		}
		return TokenPropertyPart
	}
	s.Advance(1)
	return TokenUnknown
}

// openCall consumes "(" and records the depth to return to.
func (s *Scanner) openCall() TokenKind {
	s.Advance(1)
	s.callDepths = append(s.callDepths, s.depth)
	s.depth++
	s.SetState(StateWithinMethod)
	return TokenOpenBracket
}

func (s *Scanner) scanMethod() TokenKind {
	if s.SkipWhitespace() {
		return TokenWhitespace
	}
	ch := s.PeekChar(0)
	switch {
	case ch == '(':
		s.Advance(1)
		s.depth++
		return TokenOpenBracket
	case ch == ')':
		s.Advance(1)
		if s.depth > 0 {
			s.depth--
		}
		if n := len(s.callDepths); n > 0 && s.callDepths[n-1] == s.depth {
			s.callDepths = s.callDepths[:n-1]
			if len(s.callDepths) == 0 {
				s.SetState(StateWithinParts)
			}
		}
		return TokenCloseBracket
	case ch == ',':
		s.Advance(1)
		return TokenComma
	case isQuote(ch):
		return s.startString(StateWithinMethod)
	}
	s.AdvanceWhileChar(func(r rune) bool {
		return !unicode.IsSpace(r) && r != '(' && r != ')' && r != ',' && !isQuote(r)
	})
	return TokenMethodParameter
}

func (s *Scanner) scanAngleBracket() TokenKind {
	if s.SkipWhitespace() {
		return TokenWhitespace
	}
	ch := s.PeekChar(0)
	switch {
	case ch == ']':
		s.Advance(1)
		s.SetState(StateWithinParts)
		return TokenCloseSquareBracket
	case isQuote(ch):
		return s.startString(StateWithinPropertyAngleBracket)
	}
	s.AdvanceWhileChar(func(r rune) bool {
		return !unicode.IsSpace(r) && r != ']' && !isQuote(r)
	})
	return TokenPropertyPart
}

func (s *Scanner) startString(resume State) TokenKind {
	s.quote = s.PeekChar(0)
	s.Advance(1)
	s.beforeQuote = resume
	s.SetState(StateWithinString)
	return TokenStartString
}

// scanString reads string content up to the quote that opened it. A scanner
// constructed inside a string does not know the opener and accepts either
// quote, returning to StateWithinParts.
func (s *Scanner) scanString() TokenKind {
	ch := s.PeekChar(0)
	if ch == s.quote || (s.quote == 0 && isQuote(ch)) {
		s.Advance(1)
		s.quote = 0
		s.SetState(s.beforeQuote)
		return TokenEndString
	}
	s.advanceUntilQuote(s.quote)
	return TokenString
}
