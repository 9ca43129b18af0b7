package workspace

import (
	"context"
	"errors"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"
)

type LSPServer struct {
	ws      *Workspace
	name    string
	version string
	handler protocol.Handler
	server  *server.Server
	log     commonlog.Logger
}

func NewLSPServer(ws *Workspace, name, version string) *LSPServer {
	ls := &LSPServer{
		ws:      ws,
		name:    name,
		version: version,
		log:     commonlog.GetLogger("quill.lsp"),
	}

	ls.handler = protocol.Handler{
		Initialize:                 ls.initialize,
		Initialized:                ls.initialized,
		Shutdown:                   ls.shutdown,
		SetTrace:                   ls.setTrace,
		TextDocumentDidOpen:        ls.textDocumentDidOpen,
		TextDocumentDidChange:      ls.textDocumentDidChange,
		TextDocumentDidClose:       ls.textDocumentDidClose,
		TextDocumentHover:          ls.textDocumentHover,
		TextDocumentCompletion:     ls.textDocumentCompletion,
		TextDocumentDocumentSymbol: ls.textDocumentDocumentSymbol,
	}

	ls.server = server.NewServer(&ls.handler, name, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{".", "{", "#", "/", "<"},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    ls.name,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.update(ctx, params.TextDocument.URI, params.TextDocument.Version, params.TextDocument.Text)
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		ls.update(ctx, params.TextDocument.URI, params.TextDocument.Version, whole.Text)
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.ws.Close(params.TextDocument.URI)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// update reparses uri and publishes its diagnostics. Parse failures only
// happen on cancellation or for unsupported files; both leave the previous
// state in place.
func (ls *LSPServer) update(ctx *glsp.Context, uri string, version protocol.Integer, text string) {
	doc, err := ls.ws.Update(context.Background(), uri, int32(version), text)
	if err != nil {
		if !errors.Is(err, ErrUnsupported) {
			ls.log.Debugf("update %s: %s", uri, err)
		}
		return
	}
	diags, err := ls.ws.Diagnostics(uri)
	if err != nil {
		return
	}
	v := protocol.UInteger(version)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Version:     &v,
		Diagnostics: toProtocolDiagnostics(doc, diags, ls.name),
	})
}

func (ls *LSPServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := ls.ws.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	h, ok, err := ls.ws.Hover(doc.URI, doc.Mapper.OffsetAt(params.Position))
	if err != nil || !ok {
		return nil, nil
	}
	r := doc.Mapper.Range(h.Start, h.End)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: h.Markdown,
		},
		Range: &r,
	}, nil
}

func (ls *LSPServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc := ls.ws.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	completions, err := ls.ws.Completions(doc.URI, doc.Mapper.OffsetAt(params.Position))
	if err != nil || len(completions) == 0 {
		return nil, nil
	}

	var items []protocol.CompletionItem
	for _, c := range completions {
		kind := toProtocolKind(c.Kind)
		item := protocol.CompletionItem{
			Label: c.Label,
			Kind:  &kind,
		}
		if c.Detail != "" {
			detail := c.Detail
			item.Detail = &detail
		}
		items = append(items, item)
	}
	return items, nil
}

func (ls *LSPServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc := ls.ws.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	symbols, err := ls.ws.Outline(doc.URI)
	if err != nil {
		return nil, nil
	}
	return toProtocolSymbols(doc, symbols), nil
}

func toProtocolSymbols(doc *Document, symbols []Symbol) []protocol.DocumentSymbol {
	out := make([]protocol.DocumentSymbol, 0, len(symbols))
	for _, s := range symbols {
		r := doc.Mapper.Range(s.Start, s.End)
		sym := protocol.DocumentSymbol{
			Name:           s.Name,
			Kind:           toProtocolSymbolKind(s.Kind),
			Range:          r,
			SelectionRange: r,
			Children:       toProtocolSymbols(doc, s.Children),
		}
		if s.Detail != "" {
			detail := s.Detail
			sym.Detail = &detail
		}
		out = append(out, sym)
	}
	return out
}

func toProtocolDiagnostics(doc *Document, diags []Diagnostic, source string) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		severity := protocol.DiagnosticSeverity(d.Severity)
		out = append(out, protocol.Diagnostic{
			Range:    doc.Mapper.Range(d.Start, d.End),
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		})
	}
	return out
}

func toProtocolKind(kind CompletionKind) protocol.CompletionItemKind {
	switch kind {
	case CompletionKeyword:
		return protocol.CompletionItemKindKeyword
	case CompletionVariable:
		return protocol.CompletionItemKindVariable
	case CompletionProperty:
		return protocol.CompletionItemKindProperty
	case CompletionMethod:
		return protocol.CompletionItemKindMethod
	case CompletionAttribute:
		return protocol.CompletionItemKindConstant
	default:
		return protocol.CompletionItemKindText
	}
}

func toProtocolSymbolKind(kind SymbolKind) protocol.SymbolKind {
	switch kind {
	case SymbolSection:
		return protocol.SymbolKindNamespace
	case SymbolBlock:
		return protocol.SymbolKindStruct
	case SymbolTable:
		return protocol.SymbolKindArray
	case SymbolAttribute:
		return protocol.SymbolKindConstant
	case SymbolDeclaration:
		return protocol.SymbolKindVariable
	default:
		return protocol.SymbolKindObject
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
