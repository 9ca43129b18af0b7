package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/quill/workspace"
)

func newLSPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := workspace.New(a.cfg)
			if err != nil {
				return err
			}
			a.log.Infof("starting %s %s", a.cfg.Server.Name, version)
			server := workspace.NewLSPServer(ws, a.cfg.Server.Name, version)
			return server.RunStdio()
		},
	}
}
