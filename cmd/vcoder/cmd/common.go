package cmd

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/tinovyatkin/vcoder/internal/assistant"
	"github.com/tinovyatkin/vcoder/internal/config"
	"github.com/tinovyatkin/vcoder/internal/fstree"
	"github.com/tinovyatkin/vcoder/internal/logging"
	"github.com/tinovyatkin/vcoder/internal/provider"
)

// loadConfig loads the layered configuration, applying global flags last.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	overrides := map[string]any{}
	if cmd.IsSet("log-level") {
		overrides["log.level"] = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		overrides["log.format"] = cmd.String("log-format")
	}
	return config.Load(config.LoadOptions{
		File:      cmd.String("config"),
		Overrides: overrides,
	})
}

// newLogger builds the process logger writing to w.
func newLogger(cmd *cli.Command, cfg *config.Config, w io.Writer) (*logrus.Entry, error) {
	log, err := logging.New(cfg.Log, w, cmd.String("color"))
	if err != nil {
		return nil, err
	}
	entry := logrus.NewEntry(log)
	if ci := config.CIName(); ci != "" {
		entry = entry.WithField("ci", ci)
	}
	return entry, nil
}

// diagnosticsProvider returns the configured diagnostics provider.
func diagnosticsProvider(cfg *config.Config) provider.DiagnosticsProvider {
	canned := provider.CannedDiagnostics{Delay: cfg.Providers.DiagnosticsDelay}
	if !cfg.Providers.Secrets {
		return canned
	}
	return provider.Combine(canned, provider.Secrets{})
}

func completionProvider(cfg *config.Config) provider.CompletionProvider {
	return provider.CannedCompletions{Delay: cfg.Providers.CompletionDelay}
}

func chatResponder(cfg *config.Config) *assistant.Chat {
	return &assistant.Chat{
		Locale: assistant.Locale(cfg.Assistant.Locale),
		Delay:  cfg.Assistant.TypingDelay,
	}
}

func codeGenerator(cfg *config.Config) assistant.CodeGenerator {
	return assistant.CodeGenerator{Delay: cfg.Assistant.TypingDelay}
}

// loadTree returns the tree at dir, or at workspace.root when dir is empty,
// or the sample project when neither is set.
func loadTree(ctx context.Context, cfg *config.Config, dir string) (*fstree.Tree, error) {
	if dir == "" {
		dir = cfg.Workspace.Root
	}
	if dir == "" {
		return fstree.Sample()
	}
	return fstree.LoadDir(ctx, dir, fstree.Options{
		Exclude:     cfg.Workspace.Exclude,
		MaxFileSize: cfg.Workspace.MaxFileSize,
	})
}

// reloadTree reloads dir after a change, retrying while files are mid-write.
func reloadTree(ctx context.Context, cfg *config.Config, dir string) (*fstree.Tree, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	return backoff.Retry(ctx, func() (*fstree.Tree, error) {
		if _, err := os.Stat(dir); err != nil {
			return nil, backoff.Permanent(err)
		}
		return loadTree(ctx, cfg, dir)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(3))
}
