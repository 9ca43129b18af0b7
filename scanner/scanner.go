// Package scanner holds the pieces shared by the template and markup
// tokenizers: a backtracking Cursor and the Scanner contract.
package scanner

import "iter"

// Scanner produces one token per Scan call. K is the token kind type and S
// the scanner's automaton state. Once the end-of-stream kind has been
// returned, every later call returns it again without moving.
type Scanner[K, S comparable] interface {
	Scan() K
	TokenOffset() int
	TokenEnd() int
	TokenText() string
	State() S
}

// Base implements the bookkeeping half of Scanner. Concrete scanners embed
// it and implement Scan by calling Next with their own step function.
type Base[K, S comparable] struct {
	Cursor

	state   S
	eos     K
	unknown K

	kind        K
	tokenOffset int
	tokenEnd    int
	done        bool
}

// NewBase creates the shared scanner state. eos is returned at the end of the
// readable range, unknown is used when a step makes no progress.
func NewBase[K, S comparable](input []rune, start, end int, state S, eos, unknown K) Base[K, S] {
	c := NewCursor(input, start, end)
	return Base[K, S]{
		Cursor:      c,
		state:       state,
		eos:         eos,
		unknown:     unknown,
		kind:        unknown,
		tokenOffset: c.Pos(),
		tokenEnd:    c.Pos(),
	}
}

// Next runs step once and records the token it produced. The token starts
// where the cursor stood before the step and ends where the step left it.
// A step that returns a non-EOS kind without consuming anything is forced
// forward by one rune and reported as the unknown kind, so a scan loop
// always terminates.
func (b *Base[K, S]) Next(step func() K) K {
	if b.done {
		return b.eos
	}
	offset := b.Pos()
	if b.EOS() {
		return b.finishEOS(offset)
	}
	kind := step()
	if kind == b.eos && b.Pos() == offset {
		if b.EOS() {
			return b.finishEOS(offset)
		}
		kind = b.unknown
	}
	if b.Pos() <= offset {
		b.GoBackTo(offset + 1)
		kind = b.unknown
	}
	b.kind = kind
	b.tokenOffset = offset
	b.tokenEnd = b.Pos()
	return kind
}

func (b *Base[K, S]) finishEOS(offset int) K {
	b.done = true
	b.kind = b.eos
	b.tokenOffset = offset
	b.tokenEnd = offset
	return b.eos
}

func (b *Base[K, S]) TokenKind() K {
	return b.kind
}

func (b *Base[K, S]) TokenOffset() int {
	return b.tokenOffset
}

func (b *Base[K, S]) TokenEnd() int {
	return b.tokenEnd
}

func (b *Base[K, S]) TokenText() string {
	return b.Slice(b.tokenOffset, b.tokenEnd)
}

func (b *Base[K, S]) State() S {
	return b.state
}

func (b *Base[K, S]) SetState(s S) {
	b.state = s
}

// Token is a scanned token detached from its scanner.
type Token[K any] struct {
	Kind   K
	Offset int
	End    int
	Text   string
}

// All yields the tokens of s up to, but not including, the eos kind.
func All[K, S comparable](s Scanner[K, S], eos K) iter.Seq[Token[K]] {
	return func(yield func(Token[K]) bool) {
		for {
			kind := s.Scan()
			if kind == eos {
				return
			}
			tok := Token[K]{Kind: kind, Offset: s.TokenOffset(), End: s.TokenEnd(), Text: s.TokenText()}
			if !yield(tok) {
				return
			}
		}
	}
}

// Collect drains s into a slice.
func Collect[K, S comparable](s Scanner[K, S], eos K) []Token[K] {
	var tokens []Token[K]
	for tok := range All(s, eos) {
		tokens = append(tokens, tok)
	}
	return tokens
}
