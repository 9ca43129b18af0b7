package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	adoc "github.com/dhamidi/quill/asciidoc/parser"
	"github.com/dhamidi/quill/config"
	"github.com/dhamidi/quill/format"
	"github.com/dhamidi/quill/qute/expression"
	qute "github.com/dhamidi/quill/qute/parser"
	"github.com/dhamidi/quill/scanner"
)

func newScanCmd(a *app) *cobra.Command {
	var outputFormat string
	var lang string
	var expr string
	var infix bool

	cmd := &cobra.Command{
		Use:   "scan [file]",
		Short: "Dump the tokens of a file, or of a template expression given with --expr",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := format.NewEncoder(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("expr") {
				s := expression.NewString(expr, infix)
				tokens := scanner.Collect[expression.TokenKind, expression.State](s, expression.TokenEOS)
				return enc.EncodeTokens(format.FromTokens(tokens))
			}
			if len(args) == 0 {
				return errors.New("scan needs a file or --expr")
			}

			src, err := a.readSource(args[0], lang)
			if err != nil {
				return err
			}
			text := []rune(src.text)
			var tokens []format.Token
			switch src.lang {
			case config.LanguageAsciiDoc:
				s := adoc.NewScanner(text, 0, len(text), adoc.StateAfterNewline)
				tokens = format.FromTokens(scanner.Collect[adoc.TokenKind, adoc.State](s, adoc.TokenEOS))
			default:
				s := qute.NewScanner(text, 0, len(text), qute.StateWithinContent)
				tokens = format.FromTokens(scanner.Collect[qute.TokenKind, qute.State](s, qute.TokenEOS))
			}
			if err := enc.EncodeTokens(tokens); err != nil {
				return fmt.Errorf("encode %s: %w", src.path, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format ("+strings.Join(format.Names, ", ")+")")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "scan as this language instead of guessing from the extension (asciidoc, qute)")
	cmd.Flags().StringVarP(&expr, "expr", "e", "", "scan this template expression instead of a file")
	cmd.Flags().BoolVar(&infix, "infix", false, "scan --expr in infix mode")

	return cmd
}
