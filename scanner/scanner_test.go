package scanner

import (
	"strings"
	"testing"
	"unicode"
)

type wordKind int

const (
	wordWord wordKind = iota
	wordSpace
	wordUnknown
	wordEOS
	wordStuck
)

type wordState int

const (
	stateStart wordState = iota
	stateAfterWord
)

// wordScanner splits input into letter runs and space runs. Anything else
// is returned as wordStuck without consuming input.
type wordScanner struct {
	Base[wordKind, wordState]
}

func newWordScanner(s string) *wordScanner {
	r := []rune(s)
	return &wordScanner{Base: NewBase(r, 0, len(r), stateStart, wordEOS, wordUnknown)}
}

func (s *wordScanner) Scan() wordKind {
	return s.Next(func() wordKind {
		if s.AdvanceWhileChar(unicode.IsLetter) > 0 {
			s.SetState(stateAfterWord)
			return wordWord
		}
		if s.SkipWhitespace() {
			s.SetState(stateStart)
			return wordSpace
		}
		return wordStuck
	})
}

func TestBaseEOSIsIdempotent(t *testing.T) {
	s := newWordScanner("ab")
	if k := s.Scan(); k != wordWord {
		t.Fatalf("Scan() = %v, want word", k)
	}
	for i := 0; i < 3; i++ {
		if k := s.Scan(); k != wordEOS {
			t.Fatalf("Scan() #%d after end = %v, want EOS", i, k)
		}
		if s.TokenOffset() != 2 || s.TokenEnd() != 2 {
			t.Errorf("EOS token = [%d,%d), want [2,2)", s.TokenOffset(), s.TokenEnd())
		}
		if s.State() != stateAfterWord {
			t.Errorf("State() = %v, want stateAfterWord", s.State())
		}
	}
}

func TestBaseForcesProgress(t *testing.T) {
	s := newWordScanner("a??b")
	tokens := Collect[wordKind, wordState](s, wordEOS)

	wantKinds := []wordKind{wordWord, wordUnknown, wordUnknown, wordWord}
	if len(tokens) != len(wantKinds) {
		t.Fatalf("got %d tokens, want %d: %+v", len(tokens), len(wantKinds), tokens)
	}
	for i, tok := range tokens {
		if tok.Kind != wantKinds[i] {
			t.Errorf("token %d kind = %v, want %v", i, tok.Kind, wantKinds[i])
		}
	}
}

func TestCollectRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"hello world",
		"  leading and trailing  ",
		"mixed ?! punctuation\n\tand lines",
	}
	for _, input := range inputs {
		tokens := Collect[wordKind, wordState](newWordScanner(input), wordEOS)
		var b strings.Builder
		prev := 0
		for _, tok := range tokens {
			if tok.Offset != prev {
				t.Errorf("%q: token starts at %d, want %d", input, tok.Offset, prev)
			}
			b.WriteString(tok.Text)
			prev = tok.End
		}
		if b.String() != input {
			t.Errorf("round trip = %q, want %q", b.String(), input)
		}
	}
}

func TestBaseResumesAtOffset(t *testing.T) {
	r := []rune("skip these words")
	s := &wordScanner{Base: NewBase(r, 5, 11, stateAfterWord, wordEOS, wordUnknown)}
	if s.State() != stateAfterWord {
		t.Errorf("initial State() = %v, want stateAfterWord", s.State())
	}
	tokens := Collect[wordKind, wordState](s, wordEOS)
	if len(tokens) != 2 {
		t.Fatalf("got %d tokens, want 2", len(tokens))
	}
	if tokens[0].Text != "these" || tokens[0].Offset != 5 {
		t.Errorf("first token = %q at %d, want \"these\" at 5", tokens[0].Text, tokens[0].Offset)
	}
}
