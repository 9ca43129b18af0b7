package format

import (
	"encoding/json"
	"io"
)

type JSONEncoder struct {
	w io.Writer
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) EncodeTree(root *Node) error {
	return e.write(root)
}

func (e *JSONEncoder) EncodeTokens(tokens []Token) error {
	if tokens == nil {
		tokens = []Token{}
	}
	return e.write(tokens)
}

func (e *JSONEncoder) write(v any) error {
	text, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}
