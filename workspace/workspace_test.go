package workspace

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adoc "github.com/dhamidi/quill/asciidoc/parser"
	"github.com/dhamidi/quill/config"
)

type itemResolver struct{}

func (itemResolver) ResolveType(name string) (string, bool) {
	if name == "current" {
		return "org.Item", true
	}
	return "", false
}

func (itemResolver) Members(typeName string) []Member {
	switch typeName {
	case "org.Item":
		return []Member{
			{Name: "name", Type: "String"},
			{Name: "price", Type: "BigDecimal"},
			{Name: "discount", Type: "BigDecimal", Method: true},
		}
	case "String":
		return []Member{{Name: "length", Type: "int", Method: true}}
	case "BigDecimal":
		return []Member{{Name: "scale", Type: "int", Method: true}}
	}
	return nil
}

func newWorkspace(t *testing.T) *Workspace {
	t.Helper()
	ws, err := New(config.Default(), WithResolver(itemResolver{}))
	require.NoError(t, err)
	return ws
}

func open(t *testing.T, ws *Workspace, uri, text string) *Document {
	t.Helper()
	doc, err := ws.Update(context.Background(), uri, 1, text)
	require.NoError(t, err)
	return doc
}

func labels(items []Completion) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.Label)
	}
	return out
}

func TestUpdateRoutesByExtension(t *testing.T) {
	ws := newWorkspace(t)

	doc := open(t, ws, "file:///docs/index.adoc", "= Title")
	assert.Equal(t, config.LanguageAsciiDoc, doc.Language)
	assert.NotNil(t, doc.AsciiDoc)
	assert.Nil(t, doc.Qute)

	doc = open(t, ws, "file:///templates/page.html", "{name}")
	assert.Equal(t, config.LanguageQute, doc.Language)
	assert.NotNil(t, doc.Qute)

	_, err := ws.Update(context.Background(), "file:///main.go", 1, "package main")
	assert.ErrorIs(t, err, ErrUnsupported)

	assert.ElementsMatch(t, []string{"file:///docs/index.adoc", "file:///templates/page.html"}, ws.URIs())
}

func TestUpdateReplacesDocument(t *testing.T) {
	ws := newWorkspace(t)
	uri := "file:///a.adoc"
	open(t, ws, uri, "a")
	_, err := ws.Update(context.Background(), uri, 2, "b")
	require.NoError(t, err)

	doc := ws.Get(uri)
	require.NotNil(t, doc)
	assert.Equal(t, int32(2), doc.Version)
	assert.Equal(t, "b", string(doc.Text))
}

func TestCanceledUpdateIsDiscarded(t *testing.T) {
	ws := newWorkspace(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ws.Update(ctx, "file:///a.adoc", 1, "= Title")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, ws.Get("file:///a.adoc"))
}

func TestUpdateCancelsRunningParse(t *testing.T) {
	ws := newWorkspace(t)
	uri := "file:///a.adoc"
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	ws.testHookStarted = func(string) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
		}
	}

	errc := make(chan error, 1)
	go func() {
		_, err := ws.Update(context.Background(), uri, 1, "= Old")
		errc <- err
	}()
	<-started
	_, err := ws.Update(context.Background(), uri, 2, "= New")
	require.NoError(t, err)
	close(release)

	err = <-errc
	assert.ErrorIs(t, err, adoc.ErrCanceled)
	assert.ErrorIs(t, err, context.Canceled)
	doc := ws.Get(uri)
	require.NotNil(t, doc)
	assert.Equal(t, int32(2), doc.Version)
	assert.Equal(t, "= New", string(doc.Text))
}

func TestUpdateDropsSupersededResult(t *testing.T) {
	ws := newWorkspace(t)
	uri := "file:///a.adoc"
	parsed := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	ws.testHookParsed = func(string) {
		if calls.Add(1) == 1 {
			close(parsed)
			<-release
		}
	}

	errc := make(chan error, 1)
	go func() {
		_, err := ws.Update(context.Background(), uri, 1, "= Old")
		errc <- err
	}()
	<-parsed
	_, err := ws.Update(context.Background(), uri, 2, "= New")
	require.NoError(t, err)
	close(release)

	assert.ErrorIs(t, <-errc, ErrSuperseded)
	doc := ws.Get(uri)
	require.NotNil(t, doc)
	assert.Equal(t, int32(2), doc.Version)
	assert.Equal(t, "= New", string(doc.Text))
}

func TestConcurrentUpdates(t *testing.T) {
	ws := newWorkspace(t)
	uri := "file:///big.adoc"
	text := strings.Repeat("== Section\n\nSome *bold* text with {attr}.\n\n", 5000)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = ws.Update(context.Background(), uri, int32(i+1), text)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		assert.True(t, errors.Is(err, context.Canceled) || errors.Is(err, ErrSuperseded), "update %d: %v", i+1, err)
	}
	doc := ws.Get(uri)
	require.NotNil(t, doc)
	assert.Nil(t, errs[doc.Version-1], "stored version %d reported an error", doc.Version)
}

func TestParseTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.Server.ParseTimeout = time.Nanosecond
	ws, err := New(cfg, WithParseTimeout(0))
	require.NoError(t, err)

	_, err = ws.Update(context.Background(), "file:///a.adoc", 1, strings.Repeat("= Title\n", 1000))
	assert.NoError(t, err)
}

func TestClose(t *testing.T) {
	ws := newWorkspace(t)
	open(t, ws, "file:///a.adoc", "x")
	ws.Close("file:///a.adoc")
	assert.Nil(t, ws.Get("file:///a.adoc"))

	_, err := ws.Outline("file:///a.adoc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNodeAt(t *testing.T) {
	ws := newWorkspace(t)
	open(t, ws, "file:///a.adoc", "= Title")

	info, err := ws.NodeAt("file:///a.adoc", 3)
	require.NoError(t, err)
	assert.Equal(t, "Text", info.Kind)
	assert.Equal(t, 2, info.Start)
	assert.Equal(t, 7, info.End)
	assert.Equal(t, []string{"Section", "Document"}, info.Path)
}

func TestAsciiDocOutline(t *testing.T) {
	ws := newWorkspace(t)
	open(t, ws, "file:///a.adoc", "= A\n\n== B\n\n----\nx\n----\n")

	symbols, err := ws.Outline("file:///a.adoc")
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	assert.Equal(t, "A", symbols[0].Name)
	assert.Equal(t, "level 1", symbols[0].Detail)
	require.Len(t, symbols[0].Children, 1)
	b := symbols[0].Children[0]
	assert.Equal(t, "B", b.Name)
	require.Len(t, b.Children, 1)
	assert.Equal(t, "listing block", b.Children[0].Name)
	assert.Equal(t, SymbolBlock, b.Children[0].Kind)
}

func TestAsciiDocHover(t *testing.T) {
	ws := newWorkspace(t)
	open(t, ws, "file:///a.adoc", ":v: 1.0\n\nSee {v}")

	h, ok, err := ws.Hover("file:///a.adoc", 14)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "`{v}` = `1.0`", h.Markdown)
	assert.Equal(t, 13, h.Start)
	assert.Equal(t, 16, h.End)

	_, ok, err = ws.Hover("file:///a.adoc", 10)
	require.NoError(t, err)
	assert.False(t, ok, "plain text has no hover")
}

func TestAsciiDocCompletions(t *testing.T) {
	ws := newWorkspace(t)
	text := ":version: 1\n:author: me\n\n{ve"
	open(t, ws, "file:///a.adoc", text)

	items, err := ws.Completions("file:///a.adoc", len(text))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, Completion{Label: "version", Kind: CompletionAttribute, Detail: "1"}, items[0])

	text = ":version: 1\n:author: me\n:version!:\n\n{"
	open(t, ws, "file:///unset.adoc", text)
	items, err = ws.Completions("file:///unset.adoc", len(text))
	require.NoError(t, err)
	assert.Equal(t, []string{"author"}, labels(items))

	text = "== Getting Started\n\nsee <<"
	open(t, ws, "file:///b.adoc", text)
	items, err = ws.Completions("file:///b.adoc", len(text))
	require.NoError(t, err)
	assert.Equal(t, []string{"_getting_started"}, labels(items))
}

func TestAsciiDocDiagnostics(t *testing.T) {
	ws := newWorkspace(t)
	tests := []struct {
		name  string
		input string
		want  []Diagnostic
	}{
		{
			name:  "unterminated block",
			input: "----\nx",
			want: []Diagnostic{{
				Start: 0, End: 4, Severity: SeverityWarning,
				Message: "unterminated listing block, expected closing ----",
			}},
		},
		{
			name:  "unterminated table",
			input: "|===\n|a",
			want: []Diagnostic{{
				Start: 0, End: 4, Severity: SeverityWarning,
				Message: "unterminated table, expected closing |===",
			}},
		},
		{
			name:  "unknown reference",
			input: "== Intro\n\nsee <<_intro>> and <<nope>>",
			want: []Diagnostic{{
				Start: 29, End: 37, Severity: SeverityInformation,
				Message: `no anchor "nope" in this document`,
			}},
		},
		{
			name:  "clean",
			input: "= T\n\n* a\n\n....\nx\n....",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			open(t, ws, "file:///d.adoc", tt.input)
			got, err := ws.Diagnostics("file:///d.adoc")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuteCompletions(t *testing.T) {
	ws := newWorkspace(t)
	tests := []struct {
		name   string
		input  string
		offset int
		want   []string
	}{
		{"members after dot", "{@org.Item item}{item.}", 22, []string{"name", "price", "discount"}},
		{"members by prefix", "{@org.Item item}{item.na}", 24, []string{"name"}},
		{"nested member", "{@org.Item item}{item.name.}", 27, []string{"length"}},
		{"after method call", "{@org.Item item}{item.discount(1).}", 34, []string{"scale"}},
		{"unknown root", "{other.}", 7, nil},
		{"resolved root", "{current.pr}", 11, []string{"price"}},
		{"section tags", "{#fo", 4, []string{"for"}},
		{"end tag", "{#if a}{#for x in y}{/", 22, []string{"for", "if"}},
		{"loop alias", "{#for row in rows}{r}{/for}", 20, []string{"row"}},
		{"declared alias", "{@org.Item item}{it}", 19, []string{"item"}},
		{"outside expressions", "plain text", 5, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			open(t, ws, "file:///t.html", tt.input)
			items, err := ws.Completions("file:///t.html", tt.offset)
			require.NoError(t, err)
			assert.Equal(t, tt.want, labels(items))
		})
	}
}

func TestQuteHover(t *testing.T) {
	ws := newWorkspace(t)
	open(t, ws, "file:///t.html", "{@org.Item item}{item.name}{#if x}")

	h, ok, err := ws.Hover("file:///t.html", 23)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "property `name` : `String`", h.Markdown)

	h, ok, err = ws.Hover("file:///t.html", 18)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "object `item` : `org.Item`", h.Markdown)

	h, ok, err = ws.Hover("file:///t.html", 29)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "**Section** `{#if}`\n\nnot closed, expected `{/if}`", h.Markdown)
}

type anyResolver struct{}

func (anyResolver) ResolveType(string) (string, bool) { return "Object", true }

func (anyResolver) Members(string) []Member {
	return []Member{{Name: "toString", Type: "String", Method: true}}
}

func TestQuteLiterals(t *testing.T) {
	ws, err := New(config.Default(), WithResolver(anyResolver{}))
	require.NoError(t, err)
	uri := "file:///t.html"
	open(t, ws, uri, "{item}{42}{true}{-1.}")

	tests := []struct {
		offset int
		want   string
	}{
		{1, "object `item` : `Object`"},
		{7, "literal `42`"},
		{11, "literal `true`"},
		{17, "literal `-1`"},
	}
	for _, tt := range tests {
		h, ok, err := ws.Hover(uri, tt.offset)
		require.NoError(t, err)
		require.True(t, ok, "offset %d", tt.offset)
		assert.Equal(t, tt.want, h.Markdown, "offset %d", tt.offset)
	}

	items, err := ws.Completions(uri, 20)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestQuteOutline(t *testing.T) {
	ws := newWorkspace(t)
	open(t, ws, "file:///t.html", "{@org.Item item}{#for x in xs}{#if x.ok}{/if}{/for}")

	symbols, err := ws.Outline("file:///t.html")
	require.NoError(t, err)
	require.Len(t, symbols, 2)
	assert.Equal(t, Symbol{Name: "item", Detail: "org.Item", Kind: SymbolDeclaration, Start: 0, End: 16}, symbols[0])
	assert.Equal(t, "{#for}", symbols[1].Name)
	assert.Equal(t, "x in xs", symbols[1].Detail)
	require.Len(t, symbols[1].Children, 1)
	assert.Equal(t, "{#if}", symbols[1].Children[0].Name)
	assert.Equal(t, "x.ok", symbols[1].Children[0].Detail)
}

func TestQuteDiagnostics(t *testing.T) {
	ws := newWorkspace(t)
	tests := []struct {
		name  string
		input string
		want  []Diagnostic
	}{
		{
			name:  "unclosed section",
			input: "{#if a}x",
			want: []Diagnostic{{
				Start: 0, End: 4, Severity: SeverityWarning,
				Message: "section {#if} is not closed, expected {/if}",
			}},
		},
		{
			name:  "unmatched end tag",
			input: "a{/foo}",
			want: []Diagnostic{{
				Start: 1, End: 7, Severity: SeverityWarning,
				Message: "end tag {/foo} does not match an open section",
			}},
		},
		{
			name:  "unclosed expression",
			input: "{name",
			want: []Diagnostic{{
				Start: 0, End: 1, Severity: SeverityWarning,
				Message: "expression is not closed, expected }",
			}},
		},
		{
			name:  "else closes implicitly",
			input: "{#if a}1{#else}2{/if}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			open(t, ws, "file:///t.html", tt.input)
			got, err := ws.Diagnostics("file:///t.html")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
