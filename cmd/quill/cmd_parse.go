package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/quill/format"
)

func newParseCmd(a *app) *cobra.Command {
	var outputFormat string
	var lang string
	var spans bool
	var infix bool

	cmd := &cobra.Command{
		Use:   "parse <file>...",
		Short: "Parse Qute templates or AsciiDoc files and dump their trees",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("infix") {
				infix = a.cfg.Qute.Infix
			}
			// fail on a bad format before parsing anything
			if _, err := format.NewEncoder(outputFormat, &bytes.Buffer{}); err != nil {
				return err
			}

			outputs := make([]bytes.Buffer, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(a.cfg.Parse.Workers)
			for i, path := range args {
				g.Go(func() error {
					return a.parseOne(ctx, &outputs[i], path, lang, outputFormat, infix, spans)
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			for i := range outputs {
				if len(args) > 1 && outputFormat == "text" {
					fmt.Fprintf(cmd.OutOrStdout(), "==> %s <==\n", args[i])
				}
				if _, err := outputs[i].WriteTo(cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format ("+strings.Join(format.Names, ", ")+")")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "parse as this language instead of guessing from the extension (asciidoc, qute)")
	cmd.Flags().BoolVar(&spans, "spans", false, "add line:character spans to every node")
	cmd.Flags().BoolVar(&infix, "infix", false, "scan template expressions in infix mode")

	return cmd
}

func (a *app) parseOne(ctx context.Context, out *bytes.Buffer, path, lang, outputFormat string, infix, spans bool) error {
	src, err := a.readSource(path, lang)
	if err != nil {
		return err
	}
	a.log.Debugf("parsing %s as %s", path, src.lang)
	root, err := a.parseTree(ctx, src, infix, format.WithSpans(spans))
	if err != nil {
		return err
	}
	enc, err := format.NewEncoder(outputFormat, out)
	if err != nil {
		return err
	}
	if err := enc.EncodeTree(root); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
