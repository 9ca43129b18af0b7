package expression

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dhamidi/quill/scanner"
)

func scanAll(s *Scanner) []string {
	var got []string
	for tok := range scanner.All[TokenKind, State](s, TokenEOS) {
		if tok.Kind == TokenWhitespace {
			got = append(got, "_")
			continue
		}
		got = append(got, fmt.Sprintf("%s(%s)", tok.Kind, tok.Text))
	}
	return got
}

func TestScanner(t *testing.T) {
	tests := []struct {
		name  string
		input string
		infix bool
		want  []string
		state State
	}{
		{
			name:  "property chain",
			input: "item.name",
			want:  []string{"ObjectPart(item)", "Dot(.)", "PropertyPart(name)"},
			state: StateWithinParts,
		},
		{
			name:  "namespace method",
			input: "config:getProp('x')",
			want: []string{
				"NamespacePart(config)", "ColonSpace(:)", "MethodPart(getProp)", "OpenBracket(()",
				"StartString(')", "String(x)", "EndString(')", "CloseBracket())",
			},
			state: StateWithinParts,
		},
		{
			name:  "namespace being typed",
			input: "inject:",
			want:  []string{"NamespacePart(inject)", "ColonSpace(:)"},
			state: StateAfterNamespace,
		},
		{
			name:  "indexed access",
			input: "item['key']",
			want: []string{
				"ObjectPart(item)", "OpenSquareBracket([)", "StartString(')", "String(key)",
				"EndString(')", "CloseSquareBracket(])",
			},
			state: StateWithinParts,
		},
		{
			name:  "indexed access by number",
			input: "items[0].name",
			want: []string{
				"ObjectPart(items)", "OpenSquareBracket([)", "PropertyPart(0)", "CloseSquareBracket(])",
				"Dot(.)", "PropertyPart(name)",
			},
			state: StateWithinParts,
		},
		{
			name:  "nested calls",
			input: `a.b(c.d(1), "x")`,
			want: []string{
				"ObjectPart(a)", "Dot(.)", "MethodPart(b)", "OpenBracket(()", "MethodParameter(c.d)",
				"OpenBracket(()", "MethodParameter(1)", "CloseBracket())", "Comma(,)", "_",
				`StartString(")`, "String(x)", `EndString(")`, "CloseBracket())",
			},
			state: StateWithinParts,
		},
		{
			name:  "unterminated call",
			input: "foo.bar(",
			want:  []string{"ObjectPart(foo)", "Dot(.)", "MethodPart(bar)", "OpenBracket(()"},
			state: StateWithinMethod,
		},
		{
			name:  "string quote must match",
			input: `'a"b'`,
			want:  []string{"StartString(')", `String(a"b)`, "EndString(')"},
			state: StateWithinParts,
		},
		{
			name:  "escaped quote",
			input: `'a\'b'`,
			want:  []string{"StartString(')", `String(a\'b)`, "EndString(')"},
			state: StateWithinParts,
		},
		{
			name:  "unterminated string",
			input: "'abc",
			want:  []string{"StartString(')", "String(abc)"},
			state: StateWithinString,
		},
		{
			name:  "elvis",
			input: "name ?: 'none'",
			want: []string{
				"ObjectPart(name)", "_", "Elvis(?:)", "_", "StartString(')", "String(none)", "EndString(')",
			},
			state: StateWithinParts,
		},
		{
			name:  "ternary",
			input: "a ? b : c",
			want: []string{
				"ObjectPart(a)", "_", "Ternary(?)", "_", "ObjectPart(b)", "_", "TernaryElse(:)", "_", "ObjectPart(c)",
			},
			state: StateWithinParts,
		},
		{
			name:  "infix operator",
			input: "item.age gt 10",
			infix: true,
			want: []string{
				"ObjectPart(item)", "Dot(.)", "PropertyPart(age)", "_", "InfixMethodPart(gt)", "_", "InfixParameter(10)",
			},
			state: StateWithinParts,
		},
		{
			name:  "infix operand with spaces in quotes",
			input: "name eq 'hello world'",
			infix: true,
			want: []string{
				"ObjectPart(name)", "_", "InfixMethodPart(eq)", "_", "InfixParameter('hello world')",
			},
			state: StateWithinParts,
		},
		{
			name:  "stray close bracket",
			input: ")",
			want:  []string{"Unknown())"},
			state: StateWithinExpression,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewString(tt.input, tt.infix)
			got := scanAll(s)
			if strings.Join(got, " ") != strings.Join(tt.want, " ") {
				t.Errorf("tokens =\n  %v\nwant\n  %v", got, tt.want)
			}
			if s.State() != tt.state {
				t.Errorf("State() = %v, want %v", s.State(), tt.state)
			}
		})
	}
}

func TestInfixParity(t *testing.T) {
	s := NewString("a or b and c", true)
	var kinds []TokenKind
	for tok := range scanner.All[TokenKind, State](s, TokenEOS) {
		if tok.Kind != TokenWhitespace {
			kinds = append(kinds, tok.Kind)
		}
	}
	want := []TokenKind{TokenObjectPart, TokenInfixMethodPart, TokenInfixParameter, TokenInfixMethodPart, TokenInfixParameter}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kind %d = %v, want %v", i, kinds[i], want[i])
		}
	}
	if s.Parts() != 4 {
		t.Errorf("Parts() = %d, want 4", s.Parts())
	}
}

func TestScannerResumesInState(t *testing.T) {
	input := []rune("{foo.bar('x')}")
	s := New(input, 10, 12, StateWithinString, false)
	got := scanAll(s)
	want := []string{"String(x)", "EndString(')"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("tokens = %v, want %v", got, want)
	}
	if s.State() != StateWithinParts {
		t.Errorf("State() = %v, want %v", s.State(), StateWithinParts)
	}
}

func FuzzScanner(f *testing.F) {
	for _, seed := range []string{
		"item.name", "config:getProp('x')", "a[", "'", "((", "a ?: b", "x.y(z, 'q", "\\'",
	} {
		f.Add(seed, false)
		f.Add(seed, true)
	}
	f.Fuzz(func(t *testing.T, input string, infix bool) {
		s := NewString(input, infix)
		var b strings.Builder
		prev := 0
		for tok := range scanner.All[TokenKind, State](s, TokenEOS) {
			if tok.Offset != prev || tok.End <= tok.Offset {
				t.Fatalf("token %v at [%d,%d) after %d", tok.Kind, tok.Offset, tok.End, prev)
			}
			prev = tok.End
			b.WriteString(tok.Text)
		}
		if b.String() != string([]rune(input)) {
			t.Fatalf("round trip = %q, want %q", b.String(), input)
		}
		if s.Scan() != TokenEOS {
			t.Fatal("Scan() after EOS did not return EOS")
		}
	})
}
