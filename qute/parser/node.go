package parser

import (
	"github.com/dhamidi/quill/tree"
)

// NodeKind is the tag of a template tree node.
type NodeKind int

const (
	KindTemplate NodeKind = iota
	KindText
	KindExpression
	KindSection
	KindParameter
	KindComment
	KindCData
	KindParameterDeclaration
	KindPart
)

var nodeKindNames = map[NodeKind]string{
	KindTemplate:             "Template",
	KindText:                 "Text",
	KindExpression:           "Expression",
	KindSection:              "Section",
	KindParameter:            "Parameter",
	KindComment:              "Comment",
	KindCData:                "CData",
	KindParameterDeclaration: "ParameterDeclaration",
	KindPart:                 "Part",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// PartKind classifies a Part node.
type PartKind int

const (
	PartObject PartKind = iota
	PartProperty
	PartMethod
	PartNamespace
	PartInfixMethod
	PartInfixParameter
	PartString
)

var partKindNames = map[PartKind]string{
	PartObject:         "Object",
	PartProperty:       "Property",
	PartMethod:         "Method",
	PartNamespace:      "Namespace",
	PartInfixMethod:    "InfixMethod",
	PartInfixParameter: "InfixParameter",
	PartString:         "String",
}

func (k PartKind) String() string {
	if name, ok := partKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Data is the payload of a template node. Which fields are meaningful
// depends on Kind:
//
//	KindSection               Section
//	KindParameter             Name (empty for bare values), Value
//	KindParameterDeclaration  JavaType, Alias
//	KindPart                  Part, Name
type Data struct {
	Kind NodeKind

	Section SectionTag

	Part  PartKind
	Name  string
	Value string

	JavaType string
	Alias    string
}

// Node is a node of a parsed template.
type Node = tree.Node[Data]

// KindName implements the format package's node description.
func (d Data) KindName() string {
	return d.Kind.String()
}

func (d Data) Fields() map[string]any {
	switch d.Kind {
	case KindSection:
		return map[string]any{
			"tag":           d.Section.Tag,
			"startTagOpen":  d.Section.StartTagOpen,
			"startTagClose": d.Section.StartTagClose,
			"endTagOpen":    d.Section.EndTagOpen,
			"endTagClose":   d.Section.EndTagClose,
			"selfClosed":    d.Section.SelfClosed,
		}
	case KindParameter:
		f := map[string]any{"value": d.Value}
		if d.Name != "" {
			f["name"] = d.Name
		}
		return f
	case KindParameterDeclaration:
		return map[string]any{"javaType": d.JavaType, "alias": d.Alias}
	case KindPart:
		return map[string]any{"part": d.Part.String(), "name": d.Name}
	}
	return nil
}

// Inner block tags continue their parent section instead of nesting.
var innerBlocks = map[string]bool{
	"else": true,
	"case": true,
	"is":   true,
}

// IsInnerBlock reports whether tag is an inner block such as {#else}.
func IsInnerBlock(tag string) bool {
	return innerBlocks[tag]
}

// SectionTag records where the tags of a section sit in the source. Offsets
// point at the "{" that opens a tag and at the "}" (or the "/" of "/}")
// that closes it; -1 means the tag, or its end, was not found.
type SectionTag struct {
	Tag           string
	StartTagOpen  int
	StartTagClose int
	EndTagOpen    int
	EndTagClose   int
	SelfClosed    bool
}

func newSectionTag(tag string, open int) SectionTag {
	return SectionTag{
		Tag:           tag,
		StartTagOpen:  open,
		StartTagClose: -1,
		EndTagOpen:    -1,
		EndTagClose:   -1,
	}
}

// InStartTag reports whether a cursor at offset is inside "{#tag ...}",
// after the opening brace and up to the closing one.
func (s SectionTag) InStartTag(offset int) bool {
	if s.StartTagOpen < 0 || offset <= s.StartTagOpen {
		return false
	}
	return s.StartTagClose < 0 || offset <= s.StartTagClose
}

// InEndTag reports whether a cursor at offset is inside "{/tag}".
func (s SectionTag) InEndTag(offset int) bool {
	if s.EndTagOpen < 0 || offset <= s.EndTagOpen {
		return false
	}
	return s.EndTagClose < 0 || offset <= s.EndTagClose
}

// InParameters reports whether offset is in the start tag past the tag name.
func (s SectionTag) InParameters(offset int) bool {
	return s.InStartTag(offset) && offset > s.StartTagOpen+2+len([]rune(s.Tag))
}
