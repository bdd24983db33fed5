package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/tinovyatkin/vcoder/internal/config"
	"github.com/tinovyatkin/vcoder/internal/fstree"
	"github.com/tinovyatkin/vcoder/internal/terminal"
	"github.com/tinovyatkin/vcoder/internal/ui"
)

func uiCommand() *cli.Command {
	return &cli.Command{
		Name:      "ui",
		Usage:     "Open the terminal workbench",
		ArgsUsage: "[DIR]",
		Description: `Opens the workbench on DIR, on workspace.root, or on the built-in sample
project. A real directory is watched and the explorer follows its changes.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file (logs are discarded otherwise)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var w io.Writer = io.Discard
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

			dir := cmd.Args().First()
			if dir == "" {
				dir = cfg.Workspace.Root
			}
			tree, err := loadTree(ctx, cfg, dir)
			if err != nil {
				return err
			}
			term, err := terminal.New(cfg.Terminal.Scrollback)
			if err != nil {
				return err
			}

			styles := ui.DetectStyles(config.ColorEnabled(cmd.String("color")))
			model, err := ui.New(ui.Options{
				Tree:        tree,
				Diagnostics: diagnosticsProvider(cfg),
				Completion:  completionProvider(cfg),
				Terminal:    term,
				Styles:      &styles,
				Logger:      log,
				Context:     ctx,
			})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

			g, gctx := errgroup.WithContext(ctx)
			if dir != "" {
				watcher, err := fstree.NewWatcher(dir, cfg.Workspace.Exclude, fstree.WithWatchLogger(log))
				if err != nil {
					return err
				}
				g.Go(func() error {
					return watcher.Run(gctx, func(_, _ []string) {
						tree, err := reloadTree(gctx, cfg, dir)
						if err != nil {
							log.WithError(err).Warn("ui: reload tree")
							return
						}
						p.Send(ui.TreeMsg{Tree: tree})
					})
				})
			}
			g.Go(func() error {
				defer cancel()
				_, err := p.Run()
				if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
					return nil
				}
				return err
			})
			return g.Wait()
		},
	}
}
