// Package format renders parse trees and token streams as JSON, YAML or
// indented text.
package format

import (
	"errors"
	"fmt"
	"io"
)

// Encoder writes trees and token lists to an underlying writer.
type Encoder interface {
	EncodeTree(root *Node) error
	EncodeTokens(tokens []Token) error
}

var ErrUnknownFormat = errors.New("unknown output format")

// Names lists the formats NewEncoder accepts.
var Names = []string{"text", "json", "yaml"}

// NewEncoder returns the encoder called name.
func NewEncoder(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "text", "":
		return NewTextEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "yaml", "yml":
		return NewYAMLEncoder(w), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}
