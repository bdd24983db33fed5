package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tinovyatkin/vcoder/internal/assistant"
	"github.com/tinovyatkin/vcoder/internal/config"
)

func chatCommand() *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "Send a message to the assistant",
		ArgsUsage: "MESSAGE...",
		Flags:     renderFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return respond(ctx, cmd, chatResponder(cfg))
		},
	}
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "Generate a code snippet from a request",
		ArgsUsage: "REQUEST...",
		Flags: append(renderFlags(), &cli.BoolFlag{
			Name:  "code-only",
			Usage: "Print only the generated code",
		}),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Bool("code-only") {
				resp, err := codeGenerator(cfg).Respond(ctx, strings.Join(cmd.Args().Slice(), " "))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.Root().Writer, resp.Code)
				return err
			}
			return respond(ctx, cmd, codeGenerator(cfg))
		},
	}
}

func renderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "width",
			Usage: "Wrap rendered output at this width",
			Value: 80,
		},
	}
}

// respond sends the command arguments to p and renders the reply.
func respond(ctx context.Context, cmd *cli.Command, p assistant.ResponseProvider) error {
	input := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(input) == "" {
		return errors.New("a message is required")
	}
	resp, err := p.Respond(ctx, input)
	if err != nil {
		return err
	}

	style := "notty"
	if config.ColorEnabled(cmd.String("color")) {
		style = ""
	}
	out, err := assistant.Render(resp, int(cmd.Int("width")), style)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.Root().Writer, out)
	return err
}
