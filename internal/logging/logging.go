// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/tinovyatkin/vcoder/internal/config"
)

// New returns a logger writing to w at the configured level. Text output is
// colored only when color is "on", or when it is "auto" outside CI.
func New(cfg config.LogConfig, w io.Writer, color string) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(level)

	switch cfg.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		enabled := config.ColorEnabled(color)
		log.SetFormatter(&logrus.TextFormatter{
			ForceColors:   enabled && color == "on",
			DisableColors: !enabled,
			FullTimestamp: true,
		})
	default:
		return nil, fmt.Errorf("log format: unknown format %q", cfg.Format)
	}
	return log, nil
}
