package parser

import (
	"github.com/dhamidi/quill/tree"
)

// NodeKind is the tag of a markup tree node.
type NodeKind int

const (
	KindDocument NodeKind = iota
	KindSection
	KindParagraph
	KindList
	KindListItem
	KindBlock
	KindTable
	KindTableCell
	KindText
	KindComment
	KindAttributeEntry
	KindAttributeReference
	KindAnchor
	KindCrossReference
	KindLink
	KindMacro
	KindEmphasis
	KindBlockTitle
	KindBlockAttributes
)

var nodeKindNames = map[NodeKind]string{
	KindDocument:           "Document",
	KindSection:            "Section",
	KindParagraph:          "Paragraph",
	KindList:               "List",
	KindListItem:           "ListItem",
	KindBlock:              "Block",
	KindTable:              "Table",
	KindTableCell:          "TableCell",
	KindText:               "Text",
	KindComment:            "Comment",
	KindAttributeEntry:     "AttributeEntry",
	KindAttributeReference: "AttributeReference",
	KindAnchor:             "Anchor",
	KindCrossReference:     "CrossReference",
	KindLink:               "Link",
	KindMacro:              "Macro",
	KindEmphasis:           "Emphasis",
	KindBlockTitle:         "BlockTitle",
	KindBlockAttributes:    "BlockAttributes",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Block types, derived from the delimiter character.
const (
	BlockListing = "listing"
	BlockExample = "example"
	BlockSidebar = "sidebar"
	BlockQuote   = "quote"
	BlockLiteral = "literal"
	BlockPass    = "pass"
	BlockComment = "comment"
	BlockOpen    = "open"
)

// BlockType names the block opened by a delimiter made of ch.
func BlockType(ch rune) string {
	switch ch {
	case '-':
		return BlockListing
	case '=':
		return BlockExample
	case '*':
		return BlockSidebar
	case '_':
		return BlockQuote
	case '.':
		return BlockLiteral
	case '+':
		return BlockPass
	case '/':
		return BlockComment
	}
	return BlockOpen
}

// Data is the payload of a markup node. Fields not listed for a kind are
// empty:
//
//	Section             Level, Title
//	Paragraph           Admonition, Title, Style
//	List                Ordered, Marker
//	Block               BlockType, Delimiter, Style, Title
//	Table               Style, Title
//	AttributeEntry      Name, Value
//	AttributeReference  Name
//	Anchor              Name
//	CrossReference      Name, Value (link text)
//	Link                Target, Value (link text)
//	Macro               Name, Target, Value (attributes)
//	Emphasis            Mark
//	BlockTitle          Title
//	BlockAttributes     Style, Value
type Data struct {
	Kind NodeKind

	Level int
	Title string

	Ordered bool
	Marker  string

	BlockType string
	Delimiter string
	Style     string

	Admonition string

	Name   string
	Target string
	Value  string
	Mark   string
}

// Node is a node of a parsed document.
type Node = tree.Node[Data]

// KindName implements the format package's node description.
func (d Data) KindName() string {
	return d.Kind.String()
}

func (d Data) Fields() map[string]any {
	f := map[string]any{}
	set := func(key, value string) {
		if value != "" {
			f[key] = value
		}
	}
	switch d.Kind {
	case KindSection:
		f["level"] = d.Level
	case KindList:
		f["ordered"] = d.Ordered
	}
	set("title", d.Title)
	set("marker", d.Marker)
	set("blockType", d.BlockType)
	set("delimiter", d.Delimiter)
	set("style", d.Style)
	set("admonition", d.Admonition)
	set("name", d.Name)
	set("target", d.Target)
	set("value", d.Value)
	set("mark", d.Mark)
	if len(f) == 0 {
		return nil
	}
	return f
}
