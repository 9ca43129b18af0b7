package workspace

import (
	"strings"

	"github.com/dhamidi/quill/tree"
)

// analysis answers queries for one parsed document.
type analysis interface {
	nodeAt(offset int) NodeInfo
	outline() []Symbol
	hover(offset int) (Hover, bool)
	completions(offset int) []Completion
	diagnostics() []Diagnostic
}

// NodeInfo describes a tree node independent of its language.
type NodeInfo struct {
	Kind   string
	Start  int
	End    int
	Closed bool
	Fields map[string]any
	// Kinds of the ancestors, innermost first.
	Path []string
}

type describer interface {
	KindName() string
	Fields() map[string]any
}

func describe[D describer](n tree.Node[D]) NodeInfo {
	info := NodeInfo{
		Kind:   n.Data().KindName(),
		Start:  n.Start(),
		End:    n.End(),
		Closed: n.Closed(),
		Fields: n.Data().Fields(),
	}
	for a := range n.Ancestors() {
		info.Path = append(info.Path, a.Data().KindName())
	}
	return info
}

type SymbolKind int

const (
	SymbolSection SymbolKind = iota
	SymbolBlock
	SymbolTable
	SymbolAttribute
	SymbolDeclaration
)

// Symbol is an outline entry.
type Symbol struct {
	Name     string
	Detail   string
	Kind     SymbolKind
	Start    int
	End      int
	Children []Symbol
}

// Hover is the description of the node under the cursor, in Markdown.
type Hover struct {
	Markdown string
	Start    int
	End      int
}

type CompletionKind int

const (
	CompletionKeyword CompletionKind = iota
	CompletionVariable
	CompletionProperty
	CompletionMethod
	CompletionAttribute
)

type Completion struct {
	Label  string
	Kind   CompletionKind
	Detail string
}

type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

type Diagnostic struct {
	Start    int
	End      int
	Severity Severity
	Message  string
}

// NodeAt returns the innermost node of uri containing offset.
func (w *Workspace) NodeAt(uri string, offset int) (NodeInfo, error) {
	doc, err := w.document(uri)
	if err != nil {
		return NodeInfo{}, err
	}
	return doc.a.nodeAt(offset), nil
}

// Outline returns the section structure of uri.
func (w *Workspace) Outline(uri string) ([]Symbol, error) {
	doc, err := w.document(uri)
	if err != nil {
		return nil, err
	}
	return doc.a.outline(), nil
}

// Hover describes the node at offset. ok is false when there is nothing
// worth describing there.
func (w *Workspace) Hover(uri string, offset int) (h Hover, ok bool, err error) {
	doc, err := w.document(uri)
	if err != nil {
		return Hover{}, false, err
	}
	h, ok = doc.a.hover(offset)
	return h, ok, nil
}

// Completions proposes what may be typed at offset.
func (w *Workspace) Completions(uri string, offset int) ([]Completion, error) {
	doc, err := w.document(uri)
	if err != nil {
		return nil, err
	}
	return doc.a.completions(offset), nil
}

// Diagnostics reports constructs of uri that were never terminated.
func (w *Workspace) Diagnostics(uri string) ([]Diagnostic, error) {
	doc, err := w.document(uri)
	if err != nil {
		return nil, err
	}
	return doc.a.diagnostics(), nil
}

// wordBefore returns the run of characters satisfying ok that ends at
// offset, and where it starts.
func wordBefore(text []rune, offset int, ok func(rune) bool) (string, int) {
	offset = min(offset, len(text))
	start := offset
	for start > 0 && ok(text[start-1]) {
		start--
	}
	return string(text[start:offset]), start
}

func filterPrefix(items []Completion, prefix string) []Completion {
	if prefix == "" {
		return items
	}
	var out []Completion
	for _, it := range items {
		if strings.HasPrefix(it.Label, prefix) {
			out = append(out, it)
		}
	}
	return out
}
