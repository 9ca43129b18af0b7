package format

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// TextEncoder writes one line per node, indented by depth:
//
//	Section [0,12) level=1 title="Intro"
//	  Text [2,7) "Intro"
type TextEncoder struct {
	w io.Writer
}

func NewTextEncoder(w io.Writer) *TextEncoder {
	return &TextEncoder{w: w}
}

func (e *TextEncoder) EncodeTree(root *Node) error {
	bw := bufio.NewWriter(e.w)
	writeNode(bw, root, 0)
	return bw.Flush()
}

func writeNode(w *bufio.Writer, n *Node, depth int) {
	w.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(w, "%s [%d,%d)", n.Kind, n.Start, n.End)
	if n.Span != nil {
		fmt.Fprintf(w, " %d:%d-%d:%d", n.Span.Start.Line+1, n.Span.Start.Character+1, n.Span.End.Line+1, n.Span.End.Character+1)
	}
	for _, key := range slices.Sorted(maps.Keys(n.Fields)) {
		switch v := n.Fields[key].(type) {
		case string:
			fmt.Fprintf(w, " %s=%q", key, v)
		default:
			fmt.Fprintf(w, " %s=%v", key, v)
		}
	}
	if n.Text != "" {
		fmt.Fprintf(w, " %q", n.Text)
	}
	if n.Unclosed {
		w.WriteString(" unclosed")
	}
	w.WriteString("\n")
	for _, child := range n.Children {
		writeNode(w, child, depth+1)
	}
}

func (e *TextEncoder) EncodeTokens(tokens []Token) error {
	bw := bufio.NewWriter(e.w)
	for _, tok := range tokens {
		fmt.Fprintf(bw, "%-24s [%d,%d) %q\n", tok.Kind, tok.Start, tok.End, tok.Text)
	}
	return bw.Flush()
}
