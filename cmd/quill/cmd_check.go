package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/quill/workspace"
)

var severityNames = map[workspace.Severity]string{
	workspace.SeverityError:       "error",
	workspace.SeverityWarning:     "warning",
	workspace.SeverityInformation: "info",
	workspace.SeverityHint:        "hint",
}

func newCheckCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Report unterminated constructs and dangling references",
		Long: `Report unterminated constructs and dangling references. Files named more
than once are checked once. Unlike the language server, check does not apply
server.parse_timeout.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := workspace.New(a.cfg, workspace.WithParseTimeout(0))
			if err != nil {
				return err
			}
			args = uniquePaths(args)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(a.cfg.Parse.Workers)
			for _, path := range args {
				g.Go(func() error {
					src, err := a.readSource(path, "")
					if err != nil {
						return err
					}
					_, err = ws.Update(ctx, path, 0, src.text)
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			problems := 0
			for _, path := range args {
				doc := ws.Get(path)
				diags, err := ws.Diagnostics(path)
				if err != nil {
					return err
				}
				for _, d := range diags {
					pos := doc.Mapper.PositionAt(d.Start)
					fmt.Fprintf(out, "%s:%d:%d: %s: %s\n", path, pos.Line+1, pos.Character+1, severityNames[d.Severity], d.Message)
					if d.Severity <= workspace.SeverityWarning {
						problems++
					}
				}
			}
			a.log.Debugf("checked %d files", len(args))
			if strict && problems > 0 {
				return fmt.Errorf("%d problems found", problems)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when warnings are reported")

	return cmd
}

// uniquePaths drops repeated paths, keeping the first of each.
func uniquePaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}
