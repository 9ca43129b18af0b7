package format

import (
	"fmt"

	"github.com/dhamidi/quill/position"
	"github.com/dhamidi/quill/scanner"
	"github.com/dhamidi/quill/tree"
)

// NodeData is implemented by the payload of both parsers' tree nodes.
type NodeData interface {
	KindName() string
	Fields() map[string]any
}

// Node is the encoder-neutral form of a tree node.
type Node struct {
	Kind     string         `json:"kind" yaml:"kind"`
	Start    int            `json:"start" yaml:"start"`
	End      int            `json:"end" yaml:"end"`
	Span     *Span          `json:"span,omitempty" yaml:"span,omitempty"`
	Unclosed bool           `json:"unclosed,omitempty" yaml:"unclosed,omitempty"`
	Fields   map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
	Text     string         `json:"text,omitempty" yaml:"text,omitempty"`
	Children []*Node        `json:"children,omitempty" yaml:"children,omitempty"`
}

// Span holds zero-based line/character positions, characters in UTF-16
// code units.
type Span struct {
	Start Position `json:"start" yaml:"start"`
	End   Position `json:"end" yaml:"end"`
}

type Position struct {
	Line      int `json:"line" yaml:"line"`
	Character int `json:"character" yaml:"character"`
}

type Option func(*options)

type options struct {
	spans bool
}

// WithSpans adds line/character spans to every node.
func WithSpans(on bool) Option {
	return func(o *options) {
		o.spans = on
	}
}

// FromTree converts t, parsed from text, into a Node tree. Leaves carry
// their source text.
func FromTree[D NodeData](t *tree.Tree[D], text []rune, opts ...Option) *Node {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	var m *position.Mapper
	if o.spans {
		m = position.NewMapper(text)
	}
	return fromNode(t.Root(), text, m)
}

func fromNode[D NodeData](n tree.Node[D], text []rune, m *position.Mapper) *Node {
	data := n.Data()
	out := &Node{
		Kind:     data.KindName(),
		Start:    n.Start(),
		End:      n.End(),
		Unclosed: !n.Closed(),
		Fields:   data.Fields(),
	}
	if m != nil {
		r := m.Range(n.Start(), n.End())
		out.Span = &Span{
			Start: Position{Line: int(r.Start.Line), Character: int(r.Start.Character)},
			End:   Position{Line: int(r.End.Line), Character: int(r.End.Character)},
		}
	}
	if n.NumChildren() == 0 && n.End() <= len(text) && n.Start() < n.End() {
		out.Text = string(text[n.Start():n.End()])
	}
	for child := range n.Children() {
		out.Children = append(out.Children, fromNode(child, text, m))
	}
	return out
}

// Token is the encoder-neutral form of a scanned token.
type Token struct {
	Kind  string `json:"kind" yaml:"kind"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
	Text  string `json:"text" yaml:"text"`
}

// FromTokens converts scanner tokens.
func FromTokens[K fmt.Stringer](tokens []scanner.Token[K]) []Token {
	out := make([]Token, len(tokens))
	for i, tok := range tokens {
		out[i] = Token{Kind: tok.Kind.String(), Start: tok.Offset, End: tok.End, Text: tok.Text}
	}
	return out
}
