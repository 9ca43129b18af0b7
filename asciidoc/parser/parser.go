package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dhamidi/quill/tree"
)

// ErrCanceled is wrapped, together with the context's error, by Parse when
// the context is done before parsing finishes.
var ErrCanceled = errors.New("document parse canceled")

type Option func(*Parser)

// WithURI names the document being parsed.
func WithURI(uri string) Option {
	return func(p *Parser) {
		p.uri = uri
	}
}

// WithRange restricts parsing to text[start:end].
func WithRange(start, end int) Option {
	return func(p *Parser) {
		p.start = start
		p.end = end
	}
}

// WithState starts the scanner in state instead of StateAfterNewline.
func WithState(state State) Option {
	return func(p *Parser) {
		p.state = state
	}
}

// Document is a parsed AsciiDoc document.
type Document struct {
	URI string
	*tree.Tree[Data]
	text []rune
}

// Runes returns the text the document was parsed from.
func (d *Document) Runes() []rune {
	return d.text
}

// Text returns the source text covered by n.
func (d *Document) Text(n Node) string {
	start, end := n.Start(), n.End()
	if start < 0 || end > len(d.text) || start >= end {
		return ""
	}
	return string(d.text[start:end])
}

func (d *Document) String() string {
	var b strings.Builder
	d.Walk(func(n Node, entering bool) bool {
		if !entering {
			return true
		}
		depth := 0
		for range n.Ancestors() {
			depth++
		}
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(d.label(n))
		if !n.Closed() {
			b.WriteString(" (unclosed)")
		}
		b.WriteString("\n")
		return true
	})
	return b.String()
}

func (d *Document) label(n Node) string {
	data := n.Data()
	switch data.Kind {
	case KindSection:
		return fmt.Sprintf("Section %d %s", data.Level, data.Title)
	case KindList:
		return "List " + data.Marker
	case KindBlock:
		label := "Block " + data.BlockType
		if data.Style != "" {
			label += " [" + data.Style + "]"
		}
		return label
	case KindParagraph:
		if data.Admonition != "" {
			return "Paragraph " + data.Admonition
		}
	case KindText:
		return fmt.Sprintf("Text %q", d.Text(n))
	case KindEmphasis:
		return fmt.Sprintf("Emphasis %s %q", data.Mark, d.Text(n))
	case KindAttributeEntry:
		return "AttributeEntry " + data.Name + "=" + data.Value
	case KindMacro:
		return "Macro " + data.Name + " " + data.Target
	case KindLink:
		return "Link " + data.Target
	case KindBlockTitle:
		return "BlockTitle " + data.Title
	case KindAttributeReference, KindAnchor, KindCrossReference:
		return data.Kind.String() + " " + data.Name
	}
	return data.Kind.String()
}

// Parser drives a Scanner and builds the document tree. Use Parse.
type Parser struct {
	uri   string
	start int
	end   int
	state State

	text []rune
	s    *Scanner
	b    *tree.Builder[Data]

	lastContentEnd int
	lineHasContent bool

	// section whose title line is being read
	titleSection tree.ID
	titleStart   int

	// from a preceding [style] or .Title line
	pendingStyle string
	pendingTitle string
}

// Parse parses text into a document tree. Malformed input never fails; the
// only error is cancellation of ctx.
func Parse(ctx context.Context, text string, opts ...Option) (*Document, error) {
	p := &Parser{
		end:          -1,
		titleSection: tree.NoID,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.text = []rune(text)
	if p.end < 0 || p.end > len(p.text) {
		p.end = len(p.text)
	}
	if p.start < 0 || p.start > p.end {
		p.start = 0
	}
	return p.parse(ctx)
}

func (p *Parser) parse(ctx context.Context) (*Document, error) {
	p.s = NewScanner(p.text, p.start, p.end, p.state)
	p.b = tree.NewBuilder(Data{Kind: KindDocument}, p.start)
	p.lastContentEnd = p.start
	switch p.state {
	case StateWithinTable:
		p.b.Open(Data{Kind: KindTable}, p.start)
	case StateWithinVerbatim:
		p.b.Open(Data{Kind: KindBlock}, p.start)
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCanceled, err)
		}
		kind := p.s.Scan()
		if kind == TokenEOS {
			break
		}
		p.handle(kind, p.s.TokenOffset(), p.s.TokenEnd())
	}
	p.finish()
	return &Document{URI: p.uri, Tree: p.b.Finish(p.end), text: p.text}, nil
}

func (p *Parser) handle(kind TokenKind, start, end int) {
	switch kind {
	case TokenNewline:
		p.endLine(start)
		if !p.lineHasContent {
			p.closeFlow()
		}
		p.lineHasContent = false
		return
	case TokenWhitespace:
		return
	}
	p.lineHasContent = true
	text := string(p.text[start:end])

	switch kind {
	case TokenTitle:
		p.title(strings.Count(text, "="), start, end)
	case TokenListMarker:
		p.listItem(strings.TrimSpace(text), start)
	case TokenBlockDelimiter:
		p.delimiter(strings.TrimRight(text, " \t"), start, end)
	case TokenTableDelimiter:
		p.table(start, end)
	case TokenCellDelimiter:
		p.cell(start, end)
	case TokenVerbatim:
		p.b.Leaf(Data{Kind: KindText}, start, end)
	case TokenLineComment:
		p.b.Leaf(Data{Kind: KindComment}, start, end)
	case TokenAttributeEntry:
		p.closeFlow()
		name, value := parseAttributeEntry(text)
		p.b.Leaf(Data{Kind: KindAttributeEntry, Name: name, Value: value}, start, end)
	case TokenBlockMacro:
		p.closeFlow()
		name, target, attrs := parseMacro(text)
		p.b.Leaf(Data{Kind: KindMacro, Name: name, Target: target, Value: attrs}, start, end)
	case TokenBlockAttributes:
		p.closeFlow()
		style, inner := parseBlockAttributes(text)
		p.b.Leaf(Data{Kind: KindBlockAttributes, Style: style, Value: inner}, start, end)
		p.pendingStyle = style
	case TokenBlockTitle:
		p.closeFlow()
		title := strings.TrimSpace(text[1:])
		p.b.Leaf(Data{Kind: KindBlockTitle, Title: title}, start, end)
		p.pendingTitle = title
	case TokenAdmonition:
		p.closeParagraph()
		p.openParagraph(strings.TrimRight(text, ": \t"), start)
	default:
		p.inline(kind, text, start, end)
	}
	p.lastContentEnd = end
}

// endLine finishes a title line by recording the title text.
func (p *Parser) endLine(at int) {
	if p.titleSection == tree.NoID {
		return
	}
	title := strings.TrimSpace(string(p.text[p.titleStart:at]))
	p.b.Update(p.titleSection, func(d *Data) { d.Title = title })
	p.titleSection = tree.NoID
}

func isFlow(k NodeKind) bool {
	return k == KindParagraph || k == KindList || k == KindListItem
}

// closeFlow ends open paragraphs and lists at the last content seen.
func (p *Parser) closeFlow() {
	for isFlow(p.b.Data(p.b.Top()).Kind) {
		p.b.Close(p.lastContentEnd, true)
	}
}

func (p *Parser) closeParagraph() {
	if p.b.Data(p.b.Top()).Kind == KindParagraph {
		p.b.Close(p.lastContentEnd, true)
	}
}

// closeUntil pops open nodes above id. Sections and flow content end
// normally; delimited blocks, tables and cells end unterminated.
func (p *Parser) closeUntil(id tree.ID, at int) {
	for p.b.Top() != id && p.b.Depth() > 1 {
		switch k := p.b.Data(p.b.Top()).Kind; {
		case isFlow(k):
			p.b.Close(p.lastContentEnd, true)
		case k == KindSection:
			p.b.Close(at, true)
		default:
			p.b.Close(at, false)
		}
	}
}

func (p *Parser) takePending() (style, title string) {
	style, title = p.pendingStyle, p.pendingTitle
	p.pendingStyle, p.pendingTitle = "", ""
	return style, title
}

// title opens a section of level. Open sections of the same or a deeper
// level end where the title starts; the walk stops at the first node that
// is not a section, so titles inside a delimited block nest in it.
func (p *Parser) title(level, start, end int) {
	p.closeFlow()
	for {
		d := p.b.Data(p.b.Top())
		if d.Kind != KindSection || d.Level < level {
			break
		}
		p.b.Close(start, true)
	}
	p.titleSection = p.b.Open(Data{Kind: KindSection, Level: level}, start)
	p.titleStart = end
}

// listItem adds an item to the open list with the same marker, or starts a
// new list, nested in the current item when there is one.
func (p *Parser) listItem(marker string, start int) {
	p.closeParagraph()
	for i := 0; i < p.b.Depth(); i++ {
		id := p.b.At(i)
		d := p.b.Data(id)
		if d.Kind == KindListItem {
			continue
		}
		if d.Kind != KindList {
			break
		}
		if d.Marker == marker {
			for p.b.Top() != id {
				p.b.Close(p.lastContentEnd, true)
			}
			p.b.Open(Data{Kind: KindListItem}, start)
			return
		}
	}
	style, title := p.takePending()
	p.b.Open(Data{
		Kind:    KindList,
		Ordered: strings.HasPrefix(marker, "."),
		Marker:  marker,
		Style:   style,
		Title:   title,
	}, start)
	p.b.Open(Data{Kind: KindListItem}, start)
}

// delimiter closes the nearest open block with the same delimiter or opens
// a new one. Same-type blocks therefore never nest.
func (p *Parser) delimiter(delim string, start, end int) {
	p.closeFlow()
	for i := 0; i < p.b.Depth(); i++ {
		id := p.b.At(i)
		d := p.b.Data(id)
		if d.Kind == KindBlock && (d.Delimiter == delim || d.Delimiter == "") {
			p.closeUntil(id, start)
			p.b.Close(end, true)
			return
		}
	}
	style, title := p.takePending()
	p.b.Open(Data{
		Kind:      KindBlock,
		BlockType: BlockType([]rune(delim)[0]),
		Delimiter: delim,
		Style:     style,
		Title:     title,
	}, start)
}

func (p *Parser) openTable() tree.ID {
	for i := 0; i < p.b.Depth(); i++ {
		id := p.b.At(i)
		if p.b.Data(id).Kind == KindTable {
			return id
		}
	}
	return tree.NoID
}

func (p *Parser) table(start, end int) {
	p.closeFlow()
	if id := p.openTable(); id != tree.NoID {
		if p.b.Data(p.b.Top()).Kind == KindTableCell {
			p.b.Close(p.lastContentEnd, true)
		}
		p.closeUntil(id, start)
		p.b.Close(end, true)
		return
	}
	style, title := p.takePending()
	p.b.Open(Data{Kind: KindTable, Style: style, Title: title}, start)
}

// cell ends the current cell and starts the next one at "|".
func (p *Parser) cell(start, end int) {
	if p.b.Data(p.b.Top()).Kind == KindTableCell {
		p.b.Close(p.lastContentEnd, true)
	}
	if p.b.Data(p.b.Top()).Kind == KindTable {
		p.b.Open(Data{Kind: KindTableCell}, start)
		return
	}
	p.inline(TokenText, "|", start, end)
}

func (p *Parser) openParagraph(admonition string, start int) {
	style, title := p.takePending()
	p.b.Open(Data{Kind: KindParagraph, Admonition: admonition, Style: style, Title: title}, start)
}

// inline adds an inline construct to the current paragraph, list item,
// cell or title, opening a paragraph when none of those is open.
func (p *Parser) inline(kind TokenKind, text string, start, end int) {
	top := p.b.Top()
	switch k := p.b.Data(top).Kind; {
	case k == KindParagraph, k == KindListItem, k == KindTableCell, k == KindTable:
	case k == KindSection && top == p.titleSection:
	default:
		p.openParagraph("", start)
	}
	p.b.Leaf(inlineData(kind, text), start, end)
}

func inlineData(kind TokenKind, text string) Data {
	switch kind {
	case TokenEmphasis:
		mark := text[:1]
		if len(text) >= 4 && text[1] == text[0] && strings.HasSuffix(text, text[:2]) {
			mark = text[:2]
		}
		return Data{Kind: KindEmphasis, Mark: mark}
	case TokenAttributeReference:
		return Data{Kind: KindAttributeReference, Name: strings.Trim(text, "{}")}
	case TokenAnchor:
		id, _, _ := strings.Cut(strings.TrimSuffix(strings.TrimPrefix(text, "[["), "]]"), ",")
		return Data{Kind: KindAnchor, Name: strings.TrimSpace(id)}
	case TokenCrossReference:
		id, label, _ := strings.Cut(strings.TrimSuffix(strings.TrimPrefix(text, "<<"), ">>"), ",")
		return Data{Kind: KindCrossReference, Name: strings.TrimSpace(id), Value: strings.TrimSpace(label)}
	case TokenLink:
		target, label := parseLink(text)
		return Data{Kind: KindLink, Target: target, Value: label}
	case TokenInlineMacro:
		name, target, attrs := parseMacro(text)
		return Data{Kind: KindMacro, Name: name, Target: target, Value: attrs}
	}
	return Data{Kind: KindText}
}

// finish closes what is still open at the end of input. Sections and flow
// content may legitimately end there; delimited blocks and tables may not.
func (p *Parser) finish() {
	p.endLine(p.end)
	for p.b.Depth() > 1 {
		switch k := p.b.Data(p.b.Top()).Kind; {
		case isFlow(k):
			p.b.Close(p.lastContentEnd, true)
		case k == KindSection:
			p.b.Close(p.end, true)
		default:
			p.b.Close(p.end, false)
		}
	}
}

// parseAttributeEntry splits ":name: value".
func parseAttributeEntry(text string) (name, value string) {
	rest := strings.TrimPrefix(text, ":")
	name, value, _ = strings.Cut(rest, ":")
	return name, strings.TrimSpace(value)
}

// parseMacro splits "name:target[attrs]" and "name::target[attrs]".
func parseMacro(text string) (name, target, attrs string) {
	name, rest, _ := strings.Cut(text, ":")
	rest = strings.TrimPrefix(rest, ":")
	target, attrs, _ = strings.Cut(rest, "[")
	if i := strings.LastIndex(attrs, "]"); i >= 0 {
		attrs = attrs[:i]
	}
	return name, target, attrs
}

// parseLink splits "https://host/path[text]" or "link:target[text]".
func parseLink(text string) (target, label string) {
	text = strings.TrimPrefix(text, "link:")
	target, label, _ = strings.Cut(text, "[")
	if i := strings.LastIndex(label, "]"); i >= 0 {
		label = label[:i]
	}
	return target, label
}

// parseBlockAttributes returns the style of "[style,attr=value]" and the
// text between the brackets. Shorthand ids, roles and options
// ("[source#id.role%opt]") are not part of the style.
func parseBlockAttributes(text string) (style, inner string) {
	inner = strings.TrimSpace(text)
	inner = strings.TrimSuffix(strings.TrimPrefix(inner, "["), "]")
	first, _, _ := strings.Cut(inner, ",")
	first = strings.TrimSpace(first)
	if strings.Contains(first, "=") {
		return "", inner
	}
	if i := strings.IndexAny(first, "#.%"); i >= 0 {
		first = first[:i]
	}
	return first, inner
}
