package format

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/quill/asciidoc/parser"
	"github.com/dhamidi/quill/scanner"
)

func sampleTree(t *testing.T, text string, opts ...Option) *Node {
	t.Helper()
	doc, err := parser.Parse(context.Background(), text)
	require.NoError(t, err)
	return FromTree(doc.Tree, doc.Runes(), opts...)
}

func TestFromTree(t *testing.T) {
	root := sampleTree(t, "= Title")
	assert.Equal(t, "Document", root.Kind)
	assert.False(t, root.Unclosed)
	require.Len(t, root.Children, 1)

	sec := root.Children[0]
	assert.Equal(t, "Section", sec.Kind)
	assert.Equal(t, 0, sec.Start)
	assert.Equal(t, 7, sec.End)
	assert.Equal(t, map[string]any{"level": 1, "title": "Title"}, sec.Fields)
	assert.Empty(t, sec.Text)

	require.Len(t, sec.Children, 1)
	assert.Equal(t, "Title", sec.Children[0].Text)
	assert.Nil(t, sec.Span)
}

func TestFromTreeSpans(t *testing.T) {
	root := sampleTree(t, "a\n\n----\nx", WithSpans(true))
	block := root.Children[1]
	require.Equal(t, "Block", block.Kind)
	require.NotNil(t, block.Span)
	assert.Equal(t, Position{Line: 2, Character: 0}, block.Span.Start)
	assert.Equal(t, Position{Line: 3, Character: 1}, block.Span.End)
	assert.True(t, block.Unclosed)
}

func TestTextEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextEncoder(&buf).EncodeTree(sampleTree(t, "= Title")))
	want := `Document [0,7)
  Section [0,7) level=1 title="Title"
    Text [2,7) "Title"
`
	assert.Equal(t, want, buf.String())
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONEncoder(&buf).EncodeTree(sampleTree(t, "* a")))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Document", got["kind"])
	children, ok := got["children"].([]any)
	require.True(t, ok)
	require.Len(t, children, 1)
	list := children[0].(map[string]any)
	assert.Equal(t, "List", list["kind"])
	assert.Equal(t, map[string]any{"ordered": false, "marker": "*"}, list["fields"])
}

func TestYAMLEncoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLEncoder(&buf).EncodeTree(sampleTree(t, "= Title")))

	var got Node
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Document", got.Kind)
	require.Len(t, got.Children, 1)
	assert.Equal(t, "Section", got.Children[0].Kind)
	assert.Equal(t, 7, got.Children[0].End)
	assert.Equal(t, "Title", got.Children[0].Fields["title"])
}

func TestEncodeTokens(t *testing.T) {
	r := []rune("= T")
	s := parser.NewScanner(r, 0, len(r), parser.StateAfterNewline)
	tokens := FromTokens(scanner.Collect[parser.TokenKind, parser.State](s, parser.TokenEOS))
	require.Equal(t, []Token{
		{Kind: "Title", Start: 0, End: 2, Text: "= "},
		{Kind: "Text", Start: 2, End: 3, Text: "T"},
	}, tokens)

	var buf bytes.Buffer
	require.NoError(t, NewTextEncoder(&buf).EncodeTokens(tokens))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Title "))
	assert.True(t, strings.HasSuffix(lines[1], `[2,3) "T"`))

	buf.Reset()
	require.NoError(t, NewJSONEncoder(&buf).EncodeTokens(nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestNewEncoder(t *testing.T) {
	for _, name := range Names {
		enc, err := NewEncoder(name, &bytes.Buffer{})
		require.NoError(t, err, name)
		assert.NotNil(t, enc, name)
	}
	_, err := NewEncoder("xml", &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
