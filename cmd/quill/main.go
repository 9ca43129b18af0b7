package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/quill/config"

	_ "github.com/tliron/commonlog/simple"
)

var version = "0.1.0"

// app carries the global flags and the configuration they resolve to.
type app struct {
	configPath string
	logLevel   string
	logFile    string

	cfg *config.Config
	log commonlog.Logger
}

func (a *app) load() error {
	v, err := config.NewViper(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		v.Set("log.level", a.logLevel)
	}
	if a.logFile != "" {
		v.Set("log.path", a.logFile)
	}
	cfg, err := config.New(v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	commonlog.Configure(cfg.Verbosity(), cfg.LogPath())
	a.log = commonlog.GetLogger("quill.cli")
	return nil
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "quill",
		Short:         "Tolerant parsers for Qute templates and AsciiDoc",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default ./quill.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (error, warn, info, debug)")
	rootCmd.PersistentFlags().StringVar(&a.logFile, "log-file", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newParseCmd(a))
	rootCmd.AddCommand(newScanCmd(a))
	rootCmd.AddCommand(newAtCmd(a))
	rootCmd.AddCommand(newCheckCmd(a))
	rootCmd.AddCommand(newLSPCmd(a))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "quill:", err)
		os.Exit(1)
	}
}
