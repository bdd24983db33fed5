package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tinovyatkin/vcoder/internal/terminal"
)

func termCommand() *cli.Command {
	return &cli.Command{
		Name:      "term",
		Usage:     "Run commands through the simulated terminal",
		ArgsUsage: "[COMMAND...]",
		Description: `Each argument is submitted as one command line. Without arguments,
lines are read from stdin until EOF.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			term, err := terminal.New(cfg.Terminal.Scrollback)
			if err != nil {
				return err
			}

			lines := cmd.Args().Slice()
			if len(lines) == 0 {
				sc := bufio.NewScanner(cmd.Root().Reader)
				for sc.Scan() {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					lines = append(lines, sc.Text())
				}
				if err := sc.Err(); err != nil {
					return err
				}
			}
			for _, line := range lines {
				term.Submit(line)
			}

			_, err = fmt.Fprintln(cmd.Root().Writer, strings.Join(term.History().Lines(), "\n"))
			return err
		},
	}
}
