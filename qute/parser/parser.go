package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dhamidi/quill/qute/expression"
	"github.com/dhamidi/quill/tree"
)

// ErrCanceled is wrapped, together with the context's error, by Parse when
// the context is done before parsing finishes.
var ErrCanceled = errors.New("template parse canceled")

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

// WithState starts the scanner in state instead of StateWithinContent.
func WithState(state State) Option {
	return func(p *Parser) {
		p.state = state
	}
}

// WithInfix scans {expressions} in infix mode, so "{name or 'n/a'}" yields
// infix parts. Section parameters of {#if} are always infix.
func WithInfix(infix bool) Option {
	return func(p *Parser) {
		p.infix = infix
	}
}

// Document is a parsed template.
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
		return "Section " + data.Section.Tag
	case KindText:
		return fmt.Sprintf("Text %q", d.Text(n))
	case KindPart:
		return "Part " + data.Part.String() + " " + data.Name
	case KindParameter:
		if data.Name != "" {
			return "Parameter " + data.Name + "=" + data.Value
		}
		return "Parameter " + data.Value
	case KindParameterDeclaration:
		return "ParameterDeclaration " + data.JavaType + " " + data.Alias
	}
	return data.Kind.String()
}

// Parser turns the token stream of a template into a tree. Use Parse.
type Parser struct {
	uri   string
	start int
	end   int
	state State
	infix bool

	text []rune
	s    *Scanner
	b    *tree.Builder[Data]

	// open expression, declaration, comment or cdata node
	construct tree.ID

	inStartTag bool
	tagOpen    int
	section    tree.ID
	params     [][2]int

	inEndTag   bool
	endTagOpen int
	endTag     string
}

// Parse parses text into a template tree. Malformed input never fails; the
// only error is cancellation of ctx.
func Parse(ctx context.Context, text string, opts ...Option) (*Document, error) {
	p := &Parser{
		start:     0,
		end:       -1,
		construct: tree.NoID,
		section:   tree.NoID,
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
	p.b = tree.NewBuilder(Data{Kind: KindTemplate}, p.start)
	p.resume()
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
	p.abandon(p.end)
	return &Document{URI: p.uri, Tree: p.b.Finish(p.end), text: p.text}, nil
}

// resume sets up the construct a scan starting mid-template is inside of.
func (p *Parser) resume() {
	switch p.state {
	case StateAfterOpeningStartTag, StateWithinStartTag:
		p.inStartTag = true
		p.tagOpen = p.start
	case StateAfterOpeningEndTag, StateWithinEndTag:
		p.inEndTag = true
		p.endTagOpen = p.start
	case StateWithinExpression:
		p.construct = p.b.Open(Data{Kind: KindExpression}, p.start)
	case StateWithinComment:
		p.construct = p.b.Open(Data{Kind: KindComment}, p.start)
	case StateWithinCDATA:
		p.construct = p.b.Open(Data{Kind: KindCData}, p.start)
	case StateWithinParameterDeclaration:
		p.construct = p.b.Open(Data{Kind: KindParameterDeclaration}, p.start)
	}
}

func (p *Parser) handle(kind TokenKind, start, end int) {
	switch kind {
	case TokenContent:
		p.abandon(start)
		p.b.Leaf(Data{Kind: KindText}, start, end)

	case TokenStartExpression:
		p.abandon(start)
		p.construct = p.b.Open(Data{Kind: KindExpression}, start)
	case TokenExpressionContent:
		if p.construct != tree.NoID {
			p.addParts(start, end, p.infix)
		}
	case TokenEndExpression, TokenEndComment, TokenCDATATagClose, TokenEndParameterDeclaration:
		if p.construct != tree.NoID {
			p.b.CloseTo(p.construct, end, true)
			p.construct = tree.NoID
		}

	case TokenStartComment:
		p.abandon(start)
		p.construct = p.b.Open(Data{Kind: KindComment}, start)
	case TokenCDATATagOpen:
		p.abandon(start)
		p.construct = p.b.Open(Data{Kind: KindCData}, start)
	case TokenStartParameterDeclaration:
		p.abandon(start)
		p.construct = p.b.Open(Data{Kind: KindParameterDeclaration}, start)
	case TokenParameterDeclaration:
		if p.construct != tree.NoID {
			javaType, alias := splitDeclaration(string(p.text[start:end]))
			p.b.Update(p.construct, func(d *Data) {
				d.JavaType = javaType
				d.Alias = alias
			})
		}

	case TokenStartTagOpen:
		p.abandon(start)
		p.inStartTag = true
		p.tagOpen = start
		p.params = p.params[:0]
	case TokenStartTag:
		p.openSection(string(p.text[start:end]))
	case TokenParameterContent:
		p.openSection("")
		p.params = append(p.params, [2]int{start, end})
	case TokenStartTagClose:
		p.endStartTag(start)
	case TokenStartTagSelfClose:
		id := p.endStartTag(start)
		p.b.Update(id, func(d *Data) { d.Section.SelfClosed = true })
		p.b.CloseTo(id, end, true)

	case TokenEndTagOpen:
		p.abandon(start)
		p.inEndTag = true
		p.endTagOpen = start
		p.endTag = ""
	case TokenEndTag:
		p.endTag = string(p.text[start:end])
	case TokenEndTagClose:
		p.closeSection(start, end)
	}
}

// abandon closes whatever construct is still open in front of at: an
// expression, comment or declaration without its closing brace, a start tag
// without "}", or an end tag without "}".
func (p *Parser) abandon(at int) {
	if p.construct != tree.NoID {
		p.b.CloseTo(p.construct, at, false)
		p.construct = tree.NoID
	}
	if p.inStartTag {
		p.openSection("")
		p.materializeParameters()
		p.inStartTag = false
	}
	if p.inEndTag {
		p.b.Leaf(Data{Kind: KindText}, p.endTagOpen, at)
		p.inEndTag = false
	}
}

// openSection opens the section for the current start tag once its name is
// known. An inner block first ends the inner block before it.
func (p *Parser) openSection(tag string) {
	if p.section != tree.NoID && p.b.IsOpen(p.section) {
		if d := p.b.Data(p.section); d.Section.StartTagOpen == p.tagOpen {
			return
		}
	}
	if IsInnerBlock(tag) {
		top := p.b.Top()
		if d := p.b.Data(top); d.Kind == KindSection && IsInnerBlock(d.Section.Tag) {
			p.b.Close(p.tagOpen, true)
		}
	}
	p.section = p.b.Open(Data{Kind: KindSection, Section: newSectionTag(tag, p.tagOpen)}, p.tagOpen)
}

func (p *Parser) endStartTag(closeAt int) tree.ID {
	p.openSection("")
	id := p.section
	p.b.Update(id, func(d *Data) { d.Section.StartTagClose = closeAt })
	p.materializeParameters()
	p.inStartTag = false
	return id
}

// closeSection resolves "{/tag}" against the open sections. Inner blocks
// between the end tag and its section end normally; other sections left
// open in between end unterminated.
func (p *Parser) closeSection(closeAt, end int) {
	p.inEndTag = false
	target := tree.NoID
	for i := 0; i < p.b.Depth(); i++ {
		id := p.b.At(i)
		d := p.b.Data(id)
		if d.Kind != KindSection || IsInnerBlock(d.Section.Tag) {
			continue
		}
		if p.endTag == "" || d.Section.Tag == p.endTag {
			target = id
			break
		}
	}
	if target == tree.NoID {
		p.b.Leaf(Data{Kind: KindText}, p.endTagOpen, end)
		return
	}
	for p.b.Top() != target {
		d := p.b.Data(p.b.Top())
		p.b.Close(p.endTagOpen, d.Kind == KindSection && IsInnerBlock(d.Section.Tag))
	}
	p.b.Update(target, func(d *Data) {
		d.Section.EndTagOpen = p.endTagOpen
		d.Section.EndTagClose = closeAt
	})
	p.b.Close(end, true)
}

func (p *Parser) materializeParameters() {
	if p.section == tree.NoID || len(p.params) == 0 {
		return
	}
	tag := p.b.Data(p.section).Section.Tag
	params := p.params
	p.params = p.params[:0]

	text := func(r [2]int) string { return string(p.text[r[0]:r[1]]) }

	switch tag {
	case "if":
		p.addParameter("", params[0][0], params[len(params)-1][1], true)
	case "else":
		if text(params[0]) == "if" {
			params = params[1:]
		}
		if len(params) > 0 {
			p.addParameter("", params[0][0], params[len(params)-1][1], true)
		}
	case "for", "each":
		if len(params) >= 3 && text(params[1]) == "in" {
			id := p.b.Open(Data{Kind: KindParameter, Name: text(params[0])}, params[0][0])
			last := params[len(params)-1][1]
			p.b.Update(id, func(d *Data) { d.Value = string(p.text[params[2][0]:last]) })
			p.addParts(params[2][0], last, false)
			p.b.Close(last, true)
			return
		}
		fallthrough
	default:
		for _, r := range params {
			if eq := assignment(p.text[r[0]:r[1]]); eq > 0 {
				p.addNamedParameter(string(p.text[r[0]:r[0]+eq]), r[0], r[0]+eq+1, r[1])
				continue
			}
			p.addParameter("", r[0], r[1], false)
		}
	}
}

func (p *Parser) addParameter(name string, start, end int, infix bool) {
	p.b.Open(Data{Kind: KindParameter, Name: name, Value: string(p.text[start:end])}, start)
	p.addParts(start, end, infix)
	p.b.Close(end, true)
}

func (p *Parser) addNamedParameter(name string, start, valueStart, end int) {
	id := p.b.Open(Data{Kind: KindParameter, Name: name}, start)
	p.b.Update(id, func(d *Data) { d.Value = string(p.text[valueStart:end]) })
	p.addParts(valueStart, end, false)
	p.b.Close(end, true)
}

// assignment returns the index of the "=" in "name=value", or -1. Operators
// such as "==" and "!=" are not assignments.
func assignment(param []rune) int {
	for i, r := range param {
		switch {
		case r == '\'' || r == '"' || r == '(':
			return -1
		case r == '=':
			if i == 0 || (i+1 < len(param) && param[i+1] == '=') {
				return -1
			}
			switch param[i-1] {
			case '!', '<', '>', '=':
				return -1
			}
			return i
		}
	}
	return -1
}

// addParts scans text[start:end] as an expression and adds its parts as
// leaves of the innermost open node.
func (p *Parser) addParts(start, end int, infix bool) {
	s := expression.New(p.text, start, end, expression.StateWithinExpression, infix)
	stringStart := -1
	for {
		kind := s.Scan()
		if kind == expression.TokenEOS {
			break
		}
		off, tokEnd := s.TokenOffset(), s.TokenEnd()
		switch kind {
		case expression.TokenStartString:
			stringStart = off
		case expression.TokenEndString:
			if stringStart >= 0 {
				p.addPart(PartString, stringStart, tokEnd)
				stringStart = -1
			}
		case expression.TokenObjectPart:
			p.addPart(PartObject, off, tokEnd)
		case expression.TokenPropertyPart:
			p.addPart(PartProperty, off, tokEnd)
		case expression.TokenMethodPart:
			p.addPart(PartMethod, off, tokEnd)
		case expression.TokenNamespacePart:
			p.addPart(PartNamespace, off, tokEnd)
		case expression.TokenInfixMethodPart:
			p.addPart(PartInfixMethod, off, tokEnd)
		case expression.TokenInfixParameter:
			p.addPart(PartInfixParameter, off, tokEnd)
		}
	}
	if stringStart >= 0 {
		p.addPart(PartString, stringStart, end)
	}
}

func (p *Parser) addPart(kind PartKind, start, end int) {
	p.b.Leaf(Data{Kind: KindPart, Part: kind, Name: string(p.text[start:end])}, start, end)
}

// splitDeclaration splits "java.util.List<Item> items" into its type and
// alias. Spaces inside type arguments do not split.
func splitDeclaration(decl string) (javaType, alias string) {
	decl = strings.TrimSpace(decl)
	depth := 0
	split := -1
	for i, r := range decl {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
		case (r == ' ' || r == '\t' || r == '\n' || r == '\r') && depth == 0:
			split = i
		}
	}
	if split < 0 {
		return decl, ""
	}
	return strings.TrimSpace(decl[:split]), strings.TrimSpace(decl[split+1:])
}
