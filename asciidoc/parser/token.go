package parser

// TokenKind classifies a token of an AsciiDoc document.
type TokenKind int

const (
	TokenText TokenKind = iota
	TokenNewline
	TokenWhitespace
	TokenTitle
	TokenListMarker
	TokenBlockDelimiter
	TokenTableDelimiter
	TokenCellDelimiter
	TokenCellText
	TokenLineComment
	TokenAttributeEntry
	TokenBlockMacro
	TokenBlockAttributes
	TokenBlockTitle
	TokenAdmonition
	TokenEmphasis
	TokenAttributeReference
	TokenAnchor
	TokenCrossReference
	TokenLink
	TokenInlineMacro
	TokenVerbatim
	TokenUnknown
	TokenEOS
)

var tokenKindNames = map[TokenKind]string{
	TokenText:               "Text",
	TokenNewline:            "Newline",
	TokenWhitespace:         "Whitespace",
	TokenTitle:              "Title",
	TokenListMarker:         "ListMarker",
	TokenBlockDelimiter:     "BlockDelimiter",
	TokenTableDelimiter:     "TableDelimiter",
	TokenCellDelimiter:      "CellDelimiter",
	TokenCellText:           "CellText",
	TokenLineComment:        "LineComment",
	TokenAttributeEntry:     "AttributeEntry",
	TokenBlockMacro:         "BlockMacro",
	TokenBlockAttributes:    "BlockAttributes",
	TokenBlockTitle:         "BlockTitle",
	TokenAdmonition:         "Admonition",
	TokenEmphasis:           "Emphasis",
	TokenAttributeReference: "AttributeReference",
	TokenAnchor:             "Anchor",
	TokenCrossReference:     "CrossReference",
	TokenLink:               "Link",
	TokenInlineMacro:        "InlineMacro",
	TokenVerbatim:           "Verbatim",
	TokenUnknown:            "Unknown",
	TokenEOS:                "EOS",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// State is the markup scanner's automaton state.
type State int

const (
	StateAfterNewline State = iota
	StateWithinContent
	StateWithinTitle
	StateWithinListItem
	StateWithinTable
	StateWithinBlockDelimiter
	StateWithinVerbatim
)

var stateNames = map[State]string{
	StateAfterNewline:         "AfterNewline",
	StateWithinContent:        "WithinContent",
	StateWithinTitle:          "WithinTitle",
	StateWithinListItem:       "WithinListItem",
	StateWithinTable:          "WithinTable",
	StateWithinBlockDelimiter: "WithinBlockDelimiter",
	StateWithinVerbatim:       "WithinVerbatim",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}
