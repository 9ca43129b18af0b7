package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

type notification struct {
	method string
	params any
}

func newTestContext(sent *[]notification) *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			*sent = append(*sent, notification{method, params})
		},
	}
}

func textDocument(uri string, line, character protocol.UInteger) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Position:     protocol.Position{Line: line, Character: character},
	}
}

func TestLSPPublishesDiagnostics(t *testing.T) {
	ls := NewLSPServer(newWorkspace(t), "quill", "test")
	var sent []notification
	ctx := newTestContext(&sent)
	uri := "file:///t.html"

	err := ls.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "qute", Version: 1, Text: "a\n{#if x}"},
	})
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, protocol.ServerTextDocumentPublishDiagnostics, sent[0].method)

	params := sent[0].params.(protocol.PublishDiagnosticsParams)
	assert.Equal(t, uri, params.URI)
	require.NotNil(t, params.Version)
	assert.Equal(t, protocol.UInteger(1), *params.Version)
	require.Len(t, params.Diagnostics, 1)
	d := params.Diagnostics[0]
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 1, Character: 0},
		End:   protocol.Position{Line: 1, Character: 4},
	}, d.Range)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *d.Severity)
	assert.Equal(t, "quill", *d.Source)

	err = ls.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "a\n{#if x}{/if}"}},
	})
	require.NoError(t, err)
	require.Len(t, sent, 2)
	params = sent[1].params.(protocol.PublishDiagnosticsParams)
	assert.Empty(t, params.Diagnostics)
	assert.Equal(t, int32(2), ls.ws.Get(uri).Version)

	err = ls.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	require.Len(t, sent, 3)
	assert.Nil(t, ls.ws.Get(uri))
}

func TestLSPIgnoresUnsupportedDocuments(t *testing.T) {
	ls := NewLSPServer(newWorkspace(t), "quill", "test")
	var sent []notification
	err := ls.textDocumentDidOpen(newTestContext(&sent), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: "file:///main.go", Version: 1, Text: "package main"},
	})
	require.NoError(t, err)
	assert.Empty(t, sent)
}

func TestLSPHoverAndCompletion(t *testing.T) {
	ls := NewLSPServer(newWorkspace(t), "quill", "test")
	var sent []notification
	ctx := newTestContext(&sent)
	uri := "file:///t.html"
	require.NoError(t, ls.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Version: 1, Text: "{@org.Item item}\n{item.name}{item.}"},
	}))

	hover, err := ls.textDocumentHover(ctx, &protocol.HoverParams{
		TextDocumentPositionParams: textDocument(uri, 1, 7),
	})
	require.NoError(t, err)
	require.NotNil(t, hover)
	content := hover.Contents.(protocol.MarkupContent)
	assert.Equal(t, "property `name` : `String`", content.Value)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 1, Character: 6},
		End:   protocol.Position{Line: 1, Character: 10},
	}, *hover.Range)

	result, err := ls.textDocumentCompletion(ctx, &protocol.CompletionParams{
		TextDocumentPositionParams: textDocument(uri, 1, 17),
	})
	require.NoError(t, err)
	items := result.([]protocol.CompletionItem)
	require.Len(t, items, 3)
	assert.Equal(t, "name", items[0].Label)
	assert.Equal(t, protocol.CompletionItemKindProperty, *items[0].Kind)
	assert.Equal(t, protocol.CompletionItemKindMethod, *items[2].Kind)

	result, err = ls.textDocumentCompletion(ctx, &protocol.CompletionParams{
		TextDocumentPositionParams: textDocument("file:///other.html", 0, 0),
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestLSPDocumentSymbols(t *testing.T) {
	ls := NewLSPServer(newWorkspace(t), "quill", "test")
	var sent []notification
	ctx := newTestContext(&sent)
	uri := "file:///a.adoc"
	require.NoError(t, ls.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Version: 1, Text: "= A\n\n== B\ntext"},
	}))

	result, err := ls.textDocumentDocumentSymbol(ctx, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	symbols := result.([]protocol.DocumentSymbol)
	require.Len(t, symbols, 1)
	assert.Equal(t, "A", symbols[0].Name)
	assert.Equal(t, protocol.SymbolKindNamespace, symbols[0].Kind)
	require.Len(t, symbols[0].Children, 1)
	b := symbols[0].Children[0]
	assert.Equal(t, "B", b.Name)
	assert.Equal(t, protocol.Position{Line: 2, Character: 0}, b.Range.Start)
	assert.Equal(t, protocol.Position{Line: 3, Character: 4}, b.Range.End)
}

func TestLSPInitialize(t *testing.T) {
	ls := NewLSPServer(newWorkspace(t), "quill", "1.2.3")
	result, err := ls.initialize(&glsp.Context{}, &protocol.InitializeParams{})
	require.NoError(t, err)

	res := result.(protocol.InitializeResult)
	assert.Equal(t, "quill", res.ServerInfo.Name)
	assert.Equal(t, "1.2.3", *res.ServerInfo.Version)
	syncOpts := res.Capabilities.TextDocumentSync.(*protocol.TextDocumentSyncOptions)
	assert.Equal(t, protocol.TextDocumentSyncKindFull, *syncOpts.Change)
	assert.Contains(t, res.Capabilities.CompletionProvider.TriggerCharacters, ".")
}
