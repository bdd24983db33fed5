package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/tinovyatkin/vcoder/internal/lspserver"
)

func lspCommand() *cli.Command {
	return &cli.Command{
		Name:  "lsp",
		Usage: "Start the language server",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "stdio",
				Usage: "Communicate over stdin/stdout",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file instead of stderr",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if !cmd.Bool("stdio") {
				return errors.New("only --stdio transport is supported")
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var w io.Writer = os.Stderr
			if p := cmd.String("log-file"); p != "" {
				f, err := os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			log, err := newLogger(cmd, cfg, w)
			if err != nil {
				return err
			}

			srv := lspserver.New(lspserver.Options{
				Diagnostics: diagnosticsProvider(cfg),
				Completion:  completionProvider(cfg),
				Generator:   codeGenerator(cfg),
				Chat:        chatResponder(cfg),
				Logger:      log,
			})
			log.Info("lsp: serving on stdio")
			return srv.RunStdio(ctx)
		},
	}
}
