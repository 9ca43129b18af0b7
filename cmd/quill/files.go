package main

import (
	"context"
	"fmt"
	"os"

	adoc "github.com/dhamidi/quill/asciidoc/parser"
	"github.com/dhamidi/quill/config"
	"github.com/dhamidi/quill/format"
	qute "github.com/dhamidi/quill/qute/parser"
)

// source is one input file with the language it is parsed as.
type source struct {
	path string
	lang string
	text string
}

// readSource reads path. An empty lang picks the language from the file
// extension.
func (a *app) readSource(path, lang string) (*source, error) {
	if lang == "" {
		lang = a.cfg.Language(path)
	}
	switch lang {
	case config.LanguageAsciiDoc, config.LanguageQute:
	case "":
		return nil, fmt.Errorf("%s: unknown file type, use --lang", path)
	default:
		return nil, fmt.Errorf("unknown language %q (expected %s or %s)", lang, config.LanguageAsciiDoc, config.LanguageQute)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &source{path: path, lang: lang, text: string(data)}, nil
}

// parseTree parses src and converts the result for encoding.
func (a *app) parseTree(ctx context.Context, src *source, infix bool, opts ...format.Option) (*format.Node, error) {
	switch src.lang {
	case config.LanguageAsciiDoc:
		doc, err := adoc.Parse(ctx, src.text, adoc.WithURI(src.path))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", src.path, err)
		}
		return format.FromTree(doc.Tree, doc.Runes(), opts...), nil
	default:
		doc, err := qute.Parse(ctx, src.text, qute.WithURI(src.path), qute.WithInfix(infix))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", src.path, err)
		}
		return format.FromTree(doc.Tree, doc.Runes(), opts...), nil
	}
}
