package main

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/quill/workspace"
)

func newAtCmd(a *app) *cobra.Command {
	var useOffset bool

	cmd := &cobra.Command{
		Use:   "at <file> <line:column>",
		Short: "Show the node at a position, with its ancestors and hover text",
		Long: `Show the innermost node at a position. Lines and columns count from 1,
columns in UTF-16 code units as editors do. With --offset the position is a
character offset from 0.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			src, err := a.readSource(path, "")
			if err != nil {
				return err
			}
			ws, err := workspace.New(a.cfg, workspace.WithParseTimeout(0))
			if err != nil {
				return err
			}
			doc, err := ws.Update(cmd.Context(), path, 0, src.text)
			if err != nil {
				return err
			}

			var offset int
			if useOffset {
				offset, err = strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid offset %q: %w", args[1], err)
				}
			} else {
				pos, err := parseLineColumn(args[1])
				if err != nil {
					return err
				}
				offset = doc.Mapper.OffsetAt(pos)
			}

			info, err := ws.NodeAt(path, offset)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			start, end := doc.Mapper.PositionAt(info.Start), doc.Mapper.PositionAt(info.End)
			fmt.Fprintf(out, "%s [%d,%d) %d:%d-%d:%d", info.Kind, info.Start, info.End,
				start.Line+1, start.Character+1, end.Line+1, end.Character+1)
			if !info.Closed {
				fmt.Fprint(out, " unclosed")
			}
			fmt.Fprintln(out)
			for _, k := range slices.Sorted(maps.Keys(info.Fields)) {
				fmt.Fprintf(out, "  %s: %v\n", k, info.Fields[k])
			}
			if len(info.Path) > 0 {
				fmt.Fprintf(out, "in %s\n", strings.Join(info.Path, " < "))
			}

			h, ok, err := ws.Hover(path, offset)
			if err != nil {
				return err
			}
			if ok {
				fmt.Fprintf(out, "\n%s\n", h.Markdown)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&useOffset, "offset", false, "read the position as a character offset")

	return cmd
}

// parseLineColumn reads a 1-based "line:column" position.
func parseLineColumn(s string) (protocol.Position, error) {
	l, c, ok := strings.Cut(s, ":")
	if !ok {
		c = "1"
	}
	line, err := strconv.Atoi(l)
	if err != nil || line < 1 {
		return protocol.Position{}, fmt.Errorf("invalid line in %q", s)
	}
	col, err := strconv.Atoi(c)
	if err != nil || col < 1 {
		return protocol.Position{}, fmt.Errorf("invalid column in %q", s)
	}
	return protocol.Position{Line: protocol.UInteger(line - 1), Character: protocol.UInteger(col - 1)}, nil
}
