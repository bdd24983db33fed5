// Package config loads vcoder's layered configuration: built-in defaults, a
// TOML file, VCODER_* environment variables, then command-line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".vcoder.toml"

// EnvPrefix prefixes environment variables. Nested keys are separated by a
// double underscore and dashes are written as underscores, so
// VCODER_WORKSPACE__MAX_FILE_SIZE sets workspace.max-file-size.
const EnvPrefix = "VCODER_"

type Config struct {
	Log       LogConfig       `koanf:"log"`
	Workspace WorkspaceConfig `koanf:"workspace"`
	Providers ProvidersConfig `koanf:"providers"`
	Terminal  TerminalConfig  `koanf:"terminal"`
	Assistant AssistantConfig `koanf:"assistant"`

	// File is the configuration file that was loaded, if any.
	File string `koanf:"-"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type WorkspaceConfig struct {
	// Root is the directory shown in the explorer. Empty means the built-in
	// sample project.
	Root        string   `koanf:"root"`
	Exclude     []string `koanf:"exclude"`
	MaxFileSize int64    `koanf:"max-file-size"`
}

type ProvidersConfig struct {
	DiagnosticsDelay time.Duration `koanf:"diagnostics-delay"`
	CompletionDelay  time.Duration `koanf:"completion-delay"`

	// Secrets adds the secret scanner to the diagnostics providers.
	Secrets bool `koanf:"secrets"`
}

type TerminalConfig struct {
	Scrollback int64 `koanf:"scrollback"`
}

type AssistantConfig struct {
	TypingDelay time.Duration `koanf:"typing-delay"`
	Locale      string        `koanf:"locale"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Workspace: WorkspaceConfig{
			MaxFileSize: 1 << 20,
		},
		Providers: ProvidersConfig{
			DiagnosticsDelay: time.Second,
			CompletionDelay:  500 * time.Millisecond,
		},
		Terminal:  TerminalConfig{Scrollback: 64 * 1024},
		Assistant: AssistantConfig{TypingDelay: 1500 * time.Millisecond, Locale: "en"},
	}
}

// LoadOptions select the layers Load reads.
type LoadOptions struct {
	// File is an explicit configuration file. It must exist.
	File string

	// Dir is searched for FileName when File is empty.
	Dir string

	// Environ supplies the environment; os.Environ when nil.
	Environ func() []string

	// Overrides are applied last, keyed by dotted path.
	Overrides map[string]any
}

// Load merges the configuration layers.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	path, err := discover(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	environ := opts.Environ
	if environ == nil {
		environ = os.Environ
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
		EnvironFunc:   environ,
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("load overrides: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	cfg.File = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func discover(opts LoadOptions) (string, error) {
	if opts.File != "" {
		if _, err := os.Stat(opts.File); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return opts.File, nil
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	p := filepath.Join(dir, FileName)
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config file: %w", err)
	}
	return p, nil
}

// envKey maps VCODER_WORKSPACE__MAX_FILE_SIZE to workspace.max-file-size.
// Comma separated values become lists.
func envKey(k, v string) (string, any) {
	k = strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
	k = strings.ReplaceAll(k, "__", ".")
	k = strings.ReplaceAll(k, "_", "-")
	if k == "workspace.exclude" {
		return k, strings.Split(v, ",")
	}
	return k, v
}

// Validate checks values that cannot be expressed by types alone.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if c.Providers.DiagnosticsDelay < 0 || c.Providers.CompletionDelay < 0 || c.Assistant.TypingDelay < 0 {
		errs = append(errs, errors.New("providers: delays must not be negative"))
	}
	switch c.Assistant.Locale {
	case "en", "es":
	default:
		errs = append(errs, fmt.Errorf("assistant.locale: unsupported locale %q", c.Assistant.Locale))
	}
	return errors.Join(errs...)
}
