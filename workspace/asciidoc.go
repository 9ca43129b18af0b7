package workspace

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	adoc "github.com/dhamidi/quill/asciidoc/parser"
)

type asciidocAnalysis struct {
	doc *adoc.Document
}

func (a *asciidocAnalysis) nodeAt(offset int) NodeInfo {
	return describe(a.doc.FindNodeAt(offset))
}

func (a *asciidocAnalysis) outline() []Symbol {
	return a.symbols(a.doc.Root())
}

func (a *asciidocAnalysis) symbols(n adoc.Node) []Symbol {
	var out []Symbol
	for c := range n.Children() {
		d := c.Data()
		switch d.Kind {
		case adoc.KindSection:
			name := d.Title
			if name == "" {
				name = "(untitled)"
			}
			out = append(out, Symbol{
				Name:     name,
				Detail:   fmt.Sprintf("level %d", d.Level),
				Kind:     SymbolSection,
				Start:    c.Start(),
				End:      c.End(),
				Children: a.symbols(c),
			})
		case adoc.KindBlock:
			name := d.Title
			if name == "" {
				name = d.BlockType + " block"
			}
			out = append(out, Symbol{
				Name:     name,
				Detail:   d.Style,
				Kind:     SymbolBlock,
				Start:    c.Start(),
				End:      c.End(),
				Children: a.symbols(c),
			})
		case adoc.KindTable:
			name := d.Title
			if name == "" {
				name = "table"
			}
			out = append(out, Symbol{Name: name, Kind: SymbolTable, Start: c.Start(), End: c.End()})
		case adoc.KindAttributeEntry:
			out = append(out, Symbol{
				Name:   ":" + d.Name + ":",
				Detail: d.Value,
				Kind:   SymbolAttribute,
				Start:  c.Start(),
				End:    c.End(),
			})
		default:
			out = append(out, a.symbols(c)...)
		}
	}
	return out
}

// attributes returns the document attributes defined so far, in order of
// first definition. ":name!:" unsets.
func (a *asciidocAnalysis) attributes() (names []string, values map[string]string) {
	values = map[string]string{}
	for n := range a.doc.All() {
		d := n.Data()
		if d.Kind != adoc.KindAttributeEntry {
			continue
		}
		if name, ok := strings.CutSuffix(d.Name, "!"); ok {
			delete(values, name)
			continue
		}
		if !slices.Contains(names, d.Name) {
			names = append(names, d.Name)
		}
		values[d.Name] = d.Value
	}
	names = slices.DeleteFunc(names, func(name string) bool {
		_, ok := values[name]
		return !ok
	})
	return names, values
}

// anchors returns the ids that cross references may point at: explicit
// anchors and the generated ids of sections.
func (a *asciidocAnalysis) anchors() []string {
	var ids []string
	for n := range a.doc.All() {
		d := n.Data()
		switch d.Kind {
		case adoc.KindAnchor:
			ids = append(ids, d.Name)
		case adoc.KindSection:
			if d.Title != "" {
				ids = append(ids, sectionID(d.Title))
			}
		}
	}
	return ids
}

// sectionID derives the id generated for a section title:
// "Getting Started" becomes "_getting_started".
func sectionID(title string) string {
	var b strings.Builder
	b.WriteByte('_')
	sep := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if sep && b.Len() > 1 {
				b.WriteByte('_')
			}
			sep = false
			b.WriteRune(r)
			continue
		}
		sep = true
	}
	return b.String()
}

var emphasisNames = map[string]string{
	"*": "strong",
	"_": "emphasis",
	"`": "monospace",
	"^": "superscript",
	"~": "subscript",
}

func (a *asciidocAnalysis) hover(offset int) (Hover, bool) {
	n := a.doc.FindNodeAt(offset)
	d := n.Data()
	var md string
	switch d.Kind {
	case adoc.KindAttributeReference:
		_, values := a.attributes()
		if v, ok := values[d.Name]; ok {
			md = fmt.Sprintf("`{%s}` = `%s`", d.Name, v)
		} else {
			md = fmt.Sprintf("`{%s}` is not defined in this document", d.Name)
		}
	case adoc.KindAttributeEntry:
		md = fmt.Sprintf("Attribute `%s` = `%s`", d.Name, d.Value)
	case adoc.KindSection:
		md = fmt.Sprintf("**Section** level %d", d.Level)
		if d.Title != "" {
			md += ": " + d.Title
		}
	case adoc.KindBlock:
		md = fmt.Sprintf("**%s block**", d.BlockType)
		if d.Style != "" {
			md += fmt.Sprintf(" `[%s]`", d.Style)
		}
		if !n.Closed() {
			md += fmt.Sprintf("\n\nnot terminated, expected `%s`", d.Delimiter)
		}
	case adoc.KindCrossReference:
		md = fmt.Sprintf("Reference to `%s`", d.Name)
		if !slices.Contains(a.anchors(), d.Name) {
			md += " (no such anchor)"
		}
	case adoc.KindAnchor:
		md = fmt.Sprintf("Anchor `%s`", d.Name)
	case adoc.KindLink:
		md = "Link to " + d.Target
	case adoc.KindMacro:
		md = fmt.Sprintf("`%s` macro", d.Name)
		if d.Target != "" {
			md += fmt.Sprintf(", target `%s`", d.Target)
		}
	case adoc.KindEmphasis:
		md = emphasisNames[d.Mark[:1]] + " text"
	default:
		return Hover{}, false
	}
	return Hover{Markdown: md, Start: n.Start(), End: n.End()}, true
}

func isAttributeNameChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
}

func (a *asciidocAnalysis) completions(offset int) []Completion {
	text := a.doc.Runes()
	prefix, start := wordBefore(text, offset, isAttributeNameChar)
	switch {
	case start > 0 && text[start-1] == '{':
		names, values := a.attributes()
		items := make([]Completion, 0, len(names))
		for _, name := range names {
			items = append(items, Completion{Label: name, Kind: CompletionAttribute, Detail: values[name]})
		}
		return filterPrefix(items, prefix)
	case start > 1 && text[start-1] == '<' && text[start-2] == '<':
		var items []Completion
		for _, id := range a.anchors() {
			items = append(items, Completion{Label: id, Kind: CompletionVariable})
		}
		return filterPrefix(items, prefix)
	}
	return nil
}

func (a *asciidocAnalysis) diagnostics() []Diagnostic {
	var out []Diagnostic
	anchors := a.anchors()
	for n := range a.doc.All() {
		d := n.Data()
		switch d.Kind {
		case adoc.KindBlock:
			if !n.Closed() {
				out = append(out, Diagnostic{
					Start:    n.Start(),
					End:      n.Start() + len([]rune(d.Delimiter)),
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("unterminated %s block, expected closing %s", d.BlockType, d.Delimiter),
				})
			}
		case adoc.KindTable:
			if !n.Closed() {
				out = append(out, Diagnostic{
					Start:    n.Start(),
					End:      n.Start() + len("|==="),
					Severity: SeverityWarning,
					Message:  "unterminated table, expected closing |===",
				})
			}
		case adoc.KindCrossReference:
			if !slices.Contains(anchors, d.Name) {
				out = append(out, Diagnostic{
					Start:    n.Start(),
					End:      n.End(),
					Severity: SeverityInformation,
					Message:  fmt.Sprintf("no anchor %q in this document", d.Name),
				})
			}
		}
	}
	return out
}
