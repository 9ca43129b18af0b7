package parser

// TokenKind classifies a token of a Qute template.
type TokenKind int

const (
	TokenContent TokenKind = iota
	TokenStartExpression
	TokenExpressionContent
	TokenEndExpression
	TokenStartTagOpen
	TokenStartTag
	TokenParameterContent
	TokenStartTagSelfClose
	TokenStartTagClose
	TokenEndTagOpen
	TokenEndTag
	TokenEndTagClose
	TokenStartComment
	TokenComment
	TokenEndComment
	TokenCDATATagOpen
	TokenCDATAContent
	TokenCDATATagClose
	TokenStartParameterDeclaration
	TokenParameterDeclaration
	TokenEndParameterDeclaration
	TokenWhitespace
	TokenUnknown
	TokenEOS
)

var tokenKindNames = map[TokenKind]string{
	TokenContent:                   "Content",
	TokenStartExpression:           "StartExpression",
	TokenExpressionContent:         "ExpressionContent",
	TokenEndExpression:             "EndExpression",
	TokenStartTagOpen:              "StartTagOpen",
	TokenStartTag:                  "StartTag",
	TokenParameterContent:          "ParameterContent",
	TokenStartTagSelfClose:         "StartTagSelfClose",
	TokenStartTagClose:             "StartTagClose",
	TokenEndTagOpen:                "EndTagOpen",
	TokenEndTag:                    "EndTag",
	TokenEndTagClose:               "EndTagClose",
	TokenStartComment:              "StartComment",
	TokenComment:                   "Comment",
	TokenEndComment:                "EndComment",
	TokenCDATATagOpen:              "CDATATagOpen",
	TokenCDATAContent:              "CDATAContent",
	TokenCDATATagClose:             "CDATATagClose",
	TokenStartParameterDeclaration: "StartParameterDeclaration",
	TokenParameterDeclaration:      "ParameterDeclaration",
	TokenEndParameterDeclaration:   "EndParameterDeclaration",
	TokenWhitespace:                "Whitespace",
	TokenUnknown:                   "Unknown",
	TokenEOS:                       "EOS",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// State is the template scanner's automaton state.
type State int

const (
	StateWithinContent State = iota
	StateAfterOpeningStartTag
	StateWithinStartTag
	StateAfterOpeningEndTag
	StateWithinEndTag
	StateWithinExpression
	StateWithinComment
	StateWithinCDATA
	StateWithinParameterDeclaration
)

var stateNames = map[State]string{
	StateWithinContent:              "WithinContent",
	StateAfterOpeningStartTag:       "AfterOpeningStartTag",
	StateWithinStartTag:             "WithinStartTag",
	StateAfterOpeningEndTag:         "AfterOpeningEndTag",
	StateWithinEndTag:               "WithinEndTag",
	StateWithinExpression:           "WithinExpression",
	StateWithinComment:              "WithinComment",
	StateWithinCDATA:                "WithinCDATA",
	StateWithinParameterDeclaration: "WithinParameterDeclaration",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}
