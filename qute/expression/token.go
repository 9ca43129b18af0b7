package expression

// TokenKind classifies a token of a template expression.
type TokenKind int

const (
	TokenObjectPart TokenKind = iota
	TokenPropertyPart
	TokenMethodPart
	TokenNamespacePart
	TokenColonSpace
	TokenDot
	TokenOpenBracket
	TokenCloseBracket
	TokenOpenSquareBracket
	TokenCloseSquareBracket
	TokenStartString
	TokenString
	TokenEndString
	TokenComma
	TokenMethodParameter
	TokenTernary
	TokenTernaryElse
	TokenElvis
	TokenInfixMethodPart
	TokenInfixParameter
	TokenWhitespace
	TokenUnknown
	TokenEOS
)

var tokenKindNames = map[TokenKind]string{
	TokenObjectPart:         "ObjectPart",
	TokenPropertyPart:       "PropertyPart",
	TokenMethodPart:         "MethodPart",
	TokenNamespacePart:      "NamespacePart",
	TokenColonSpace:         "ColonSpace",
	TokenDot:                "Dot",
	TokenOpenBracket:        "OpenBracket",
	TokenCloseBracket:       "CloseBracket",
	TokenOpenSquareBracket:  "OpenSquareBracket",
	TokenCloseSquareBracket: "CloseSquareBracket",
	TokenStartString:        "StartString",
	TokenString:             "String",
	TokenEndString:          "EndString",
	TokenComma:              "Comma",
	TokenMethodParameter:    "MethodParameter",
	TokenTernary:            "Ternary",
	TokenTernaryElse:        "TernaryElse",
	TokenElvis:              "Elvis",
	TokenInfixMethodPart:    "InfixMethodPart",
	TokenInfixParameter:     "InfixParameter",
	TokenWhitespace:         "Whitespace",
	TokenUnknown:            "Unknown",
	TokenEOS:                "EOS",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsPart reports whether k names one segment of an object/property/method
// chain.
func (k TokenKind) IsPart() bool {
	switch k {
	case TokenObjectPart, TokenPropertyPart, TokenMethodPart, TokenNamespacePart,
		TokenInfixMethodPart, TokenInfixParameter:
		return true
	}
	return false
}

// State is the expression scanner's automaton state.
type State int

const (
	StateWithinExpression State = iota
	StateWithinParts
	StateAfterNamespace
	StateWithinMethod
	StateWithinString
	StateWithinPropertyAngleBracket
)

var stateNames = map[State]string{
	StateWithinExpression:           "WithinExpression",
	StateWithinParts:                "WithinParts",
	StateAfterNamespace:             "AfterNamespace",
	StateWithinMethod:               "WithinMethod",
	StateWithinString:               "WithinString",
	StateWithinPropertyAngleBracket: "WithinPropertyAngleBracket",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}
