package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/tinovyatkin/vcoder/internal/version"
)

// NewApp creates the CLI application
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "vcoder",
		Usage:   "A mock development environment",
		Version: version.Version(),
		Description: `vcoder is a mock development environment: an editor workspace with tabs,
cursor tracking and canned diagnostics, completions, terminal and assistant.

Examples:
  vcoder ui
  vcoder ui ./my-app
  vcoder lsp --stdio
  vcoder tree --watch .
  vcoder term "git status"
  vcoder generate "un contador en react"`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the configuration file (default: ./.vcoder.toml if present)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: trace, debug, info, warn, error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format: text, json",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "Colored output: auto, on, off",
				Value: "auto",
			},
		},
		Commands: []*cli.Command{
			lspCommand(),
			uiCommand(),
			treeCommand(),
			termCommand(),
			chatCommand(),
			generateCommand(),
			versionCommand(),
		},
	}
}

// Execute runs the CLI application
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewApp().Run(ctx, os.Args)
}
