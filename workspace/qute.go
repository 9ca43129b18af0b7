package workspace

import (
	"fmt"
	"strings"
	"unicode"

	qute "github.com/dhamidi/quill/qute/parser"
)

// Sections offered after "{#".
var sectionTags = []string{
	"case", "each", "else", "eval", "for", "fragment", "if", "include",
	"insert", "is", "let", "set", "switch", "when", "with",
}

type quteAnalysis struct {
	doc      *qute.Document
	resolver Resolver
}

func (a *quteAnalysis) nodeAt(offset int) NodeInfo {
	return describe(a.doc.FindNodeAt(offset))
}

func (a *quteAnalysis) outline() []Symbol {
	return a.symbols(a.doc.Root())
}

func (a *quteAnalysis) symbols(n qute.Node) []Symbol {
	var out []Symbol
	for c := range n.Children() {
		d := c.Data()
		switch d.Kind {
		case qute.KindSection:
			out = append(out, Symbol{
				Name:     "{#" + d.Section.Tag + "}",
				Detail:   a.sectionParameters(c),
				Kind:     SymbolSection,
				Start:    c.Start(),
				End:      c.End(),
				Children: a.symbols(c),
			})
		case qute.KindParameterDeclaration:
			out = append(out, Symbol{
				Name:   d.Alias,
				Detail: d.JavaType,
				Kind:   SymbolDeclaration,
				Start:  c.Start(),
				End:    c.End(),
			})
		case qute.KindExpression, qute.KindText, qute.KindComment, qute.KindCData, qute.KindParameter:
		default:
			out = append(out, a.symbols(c)...)
		}
	}
	return out
}

// sectionParameters returns the start tag text after the tag name.
func (a *quteAnalysis) sectionParameters(n qute.Node) string {
	tag := n.Data().Section
	text := a.doc.Runes()
	start := tag.StartTagOpen + 2 + len([]rune(tag.Tag))
	end := tag.StartTagClose
	if end < 0 {
		end = n.End()
	}
	start, end = max(0, start), min(end, len(text))
	if start >= end {
		return ""
	}
	return strings.TrimSpace(string(text[start:end]))
}

// declarations maps the aliases of {@Type alias} declarations to types.
func (a *quteAnalysis) declarations() map[string]string {
	decls := map[string]string{}
	for n := range a.doc.All() {
		if d := n.Data(); d.Kind == qute.KindParameterDeclaration && d.Alias != "" {
			decls[d.Alias] = d.JavaType
		}
	}
	return decls
}

func isChainPart(p qute.PartKind) bool {
	return p == qute.PartObject || p == qute.PartProperty || p == qute.PartMethod || p == qute.PartNamespace
}

// chainAt finds the part chain that a member typed at offset belongs to.
// For "{item.name.fo|}" the chain is [item, name] and the prefix "fo".
// member reports whether a "." precedes the prefix; in that case a nil
// chain means it could not be followed back to an object. inExpr is false
// when offset is not inside an expression or section parameter.
func (a *quteAnalysis) chainAt(offset int) (chain []qute.Node, prefix string, member, inExpr bool) {
	text := a.doc.Runes()
	n := a.doc.FindNodeBefore(offset)
	for n.Valid() {
		if k := n.Data().Kind; k == qute.KindExpression || k == qute.KindParameter {
			break
		}
		n = n.Parent()
	}
	if !n.Valid() {
		return nil, "", false, false
	}

	var parts []qute.Node
	for c := range n.Children() {
		if d := c.Data(); c.End() <= offset && d.Kind == qute.KindPart && isChainPart(d.Part) {
			parts = append(parts, c)
		}
	}
	end := offset
	if k := len(parts); k > 0 && parts[k-1].End() == offset {
		prefix = parts[k-1].Data().Name
		end = parts[k-1].Start()
		parts = parts[:k-1]
	}
	if end == 0 || text[end-1] != '.' {
		return nil, prefix, false, true
	}

	for i := len(parts) - 1; i >= 0; i-- {
		p := parts[i]
		gap := string(text[p.End():end])
		if !strings.HasSuffix(gap, ".") || (gap != "." && !strings.HasPrefix(gap, "(") && !strings.HasPrefix(gap, "[")) {
			return nil, prefix, true, true
		}
		chain = append([]qute.Node{p}, chain...)
		switch p.Data().Part {
		case qute.PartObject:
			return chain, prefix, true, true
		case qute.PartNamespace:
			return nil, prefix, true, true
		}
		end = p.Start()
	}
	return nil, prefix, true, true
}

// isLiteral reports whether an object part is a number, boolean or null
// rather than a name to resolve.
func isLiteral(name string) bool {
	switch name {
	case "true", "false", "null":
		return true
	}
	name = strings.TrimPrefix(name, "-")
	return name != "" && unicode.IsDigit([]rune(name)[0])
}

// typeOf follows chain through declarations and the resolver.
func (a *quteAnalysis) typeOf(chain []qute.Node) (string, bool) {
	if len(chain) == 0 {
		return "", false
	}
	root := chain[0].Data().Name
	if isLiteral(root) {
		return "", false
	}
	typ, ok := a.declarations()[root]
	if !ok {
		typ, ok = a.resolver.ResolveType(root)
	}
	if !ok {
		return "", false
	}
	for _, p := range chain[1:] {
		m, found := findMember(a.resolver.Members(typ), p.Data().Name)
		if !found {
			return "", false
		}
		typ = m.Type
	}
	return typ, true
}

// aliases returns the names bound at offset by declarations and by the
// enclosing for, each, let, set and with sections.
func (a *quteAnalysis) aliases(offset int) []Completion {
	var items []Completion
	for alias, typ := range a.declarations() {
		items = append(items, Completion{Label: alias, Kind: CompletionVariable, Detail: typ})
	}
	for s := a.doc.FindNodeBefore(offset); s.Valid(); s = s.Parent() {
		d := s.Data()
		if d.Kind != qute.KindSection {
			continue
		}
		switch d.Section.Tag {
		case "for", "each", "let", "set", "with":
		default:
			continue
		}
		for p := range s.Children() {
			if pd := p.Data(); pd.Kind == qute.KindParameter && pd.Name != "" {
				items = append(items, Completion{Label: pd.Name, Kind: CompletionVariable, Detail: pd.Value})
			}
		}
	}
	return items
}

func isTagChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
}

func (a *quteAnalysis) completions(offset int) []Completion {
	text := a.doc.Runes()
	prefix, start := wordBefore(text, offset, isTagChar)
	if start >= 2 && text[start-2] == '{' {
		switch text[start-1] {
		case '#':
			items := make([]Completion, len(sectionTags))
			for i, tag := range sectionTags {
				items[i] = Completion{Label: tag, Kind: CompletionKeyword}
			}
			return filterPrefix(items, prefix)
		case '/':
			var items []Completion
			for s := a.doc.FindNodeBefore(start - 2); s.Valid(); s = s.Parent() {
				if d := s.Data(); d.Kind == qute.KindSection && !qute.IsInnerBlock(d.Section.Tag) {
					items = append(items, Completion{Label: d.Section.Tag, Kind: CompletionKeyword})
				}
			}
			return filterPrefix(items, prefix)
		}
	}

	chain, prefix, member, inExpr := a.chainAt(offset)
	if !inExpr {
		return nil
	}
	if !member {
		return filterPrefix(a.aliases(offset), prefix)
	}
	typ, ok := a.typeOf(chain)
	if !ok {
		return nil
	}
	var items []Completion
	for _, m := range a.resolver.Members(typ) {
		kind := CompletionProperty
		if m.Method {
			kind = CompletionMethod
		}
		items = append(items, Completion{Label: m.Name, Kind: kind, Detail: m.Type})
	}
	return filterPrefix(items, prefix)
}

func (a *quteAnalysis) hover(offset int) (Hover, bool) {
	n := a.doc.FindNodeAt(offset)
	d := n.Data()
	var md string
	switch d.Kind {
	case qute.KindPart:
		switch d.Part {
		case qute.PartObject, qute.PartProperty, qute.PartMethod:
			if d.Part == qute.PartObject && isLiteral(d.Name) {
				md = fmt.Sprintf("literal `%s`", d.Name)
				break
			}
			md = fmt.Sprintf("%s `%s`", strings.ToLower(d.Part.String()), d.Name)
			chain, _, member, _ := a.chainAt(n.End())
			if !member {
				chain = nil
			}
			if member && chain == nil {
				break
			}
			if typ, ok := a.typeOf(append(chain, n)); ok {
				md += fmt.Sprintf(" : `%s`", typ)
			}
		case qute.PartNamespace:
			md = fmt.Sprintf("namespace `%s`", d.Name)
		default:
			return Hover{}, false
		}
	case qute.KindSection:
		md = fmt.Sprintf("**Section** `{#%s}`", d.Section.Tag)
		if !n.Closed() {
			md += fmt.Sprintf("\n\nnot closed, expected `{/%s}`", d.Section.Tag)
		}
	case qute.KindParameterDeclaration:
		md = fmt.Sprintf("`%s` : `%s`", d.Alias, d.JavaType)
	case qute.KindParameter:
		if d.Name != "" {
			md = fmt.Sprintf("parameter `%s` = `%s`", d.Name, d.Value)
		} else {
			md = fmt.Sprintf("parameter `%s`", d.Value)
		}
	default:
		return Hover{}, false
	}
	return Hover{Markdown: md, Start: n.Start(), End: n.End()}, true
}

func (a *quteAnalysis) diagnostics() []Diagnostic {
	var out []Diagnostic
	text := a.doc.Runes()
	unclosed := func(n qute.Node, width int, msg string) {
		out = append(out, Diagnostic{
			Start:    n.Start(),
			End:      min(n.Start()+width, n.End()),
			Severity: SeverityWarning,
			Message:  msg,
		})
	}
	for n := range a.doc.All() {
		d := n.Data()
		switch d.Kind {
		case qute.KindSection:
			if !n.Closed() && !qute.IsInnerBlock(d.Section.Tag) {
				width := 2 + len([]rune(d.Section.Tag))
				if d.Section.StartTagClose < 0 {
					unclosed(n, width, fmt.Sprintf("start tag {#%s is not terminated, expected }", d.Section.Tag))
				} else {
					unclosed(n, width, fmt.Sprintf("section {#%s} is not closed, expected {/%s}", d.Section.Tag, d.Section.Tag))
				}
			}
		case qute.KindExpression:
			if !n.Closed() {
				unclosed(n, 1, "expression is not closed, expected }")
			}
		case qute.KindComment:
			if !n.Closed() {
				unclosed(n, 2, "comment is not closed, expected !}")
			}
		case qute.KindCData:
			if !n.Closed() {
				unclosed(n, 2, "unparsed character data is not closed, expected |}")
			}
		case qute.KindParameterDeclaration:
			if !n.Closed() {
				unclosed(n, 2, "parameter declaration is not closed, expected }")
			}
		case qute.KindText:
			if n.End()-n.Start() > 2 && text[n.Start()] == '{' && text[n.Start()+1] == '/' {
				out = append(out, Diagnostic{
					Start:    n.Start(),
					End:      n.End(),
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("end tag %s does not match an open section", string(text[n.Start():n.End()])),
				})
			}
		}
	}
	return out
}
