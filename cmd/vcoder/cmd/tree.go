package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tinovyatkin/vcoder/internal/fstree"
)

func treeCommand() *cli.Command {
	return &cli.Command{
		Name:      "tree",
		Usage:     "Print the project tree",
		ArgsUsage: "[DIR]",
		Description: `Prints the project tree of DIR, or of workspace.root, or of the
built-in sample project when neither is given.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Keep running and reprint the tree when files change",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dir := cmd.Args().First()
			out := cmd.Root().Writer

			tree, err := loadTree(ctx, cfg, dir)
			if err != nil {
				return err
			}
			if err := tree.Format(out); err != nil {
				return err
			}
			if !cmd.Bool("watch") {
				return nil
			}

			if dir == "" {
				dir = cfg.Workspace.Root
			}
			if dir == "" {
				return fmt.Errorf("--watch needs a directory")
			}
			log, err := newLogger(cmd, cfg, cmd.Root().ErrWriter)
			if err != nil {
				return err
			}
			w, err := fstree.NewWatcher(dir, cfg.Workspace.Exclude, fstree.WithWatchLogger(log))
			if err != nil {
				return err
			}
			return w.Run(ctx, func(changed, removed []string) {
				printChanges(out, changed, removed)
				if tree, err := reloadTree(ctx, cfg, dir); err == nil {
					_ = tree.Format(out)
				} else {
					log.WithError(err).Warn("tree: reload failed")
				}
			})
		},
	}
}

func printChanges(w io.Writer, changed, removed []string) {
	var sb strings.Builder
	for _, p := range changed {
		fmt.Fprintf(&sb, "~ %s\n", p)
	}
	for _, p := range removed {
		fmt.Fprintf(&sb, "- %s\n", p)
	}
	fmt.Fprint(w, sb.String())
}
