package format

import (
	"io"

	"gopkg.in/yaml.v3"
)

type YAMLEncoder struct {
	w io.Writer
}

func NewYAMLEncoder(w io.Writer) *YAMLEncoder {
	return &YAMLEncoder{w: w}
}

func (e *YAMLEncoder) EncodeTree(root *Node) error {
	return e.write(root)
}

func (e *YAMLEncoder) EncodeTokens(tokens []Token) error {
	return e.write(tokens)
}

func (e *YAMLEncoder) write(v any) error {
	enc := yaml.NewEncoder(e.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
