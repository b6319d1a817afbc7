package cmd

import (
	"github.com/ethpandaops/query-validator/internal/config"
	"github.com/ethpandaops/query-validator/internal/logging"
)

// newLogger creates the process logger from configuration. The --log-level
// flag takes precedence over LOG_LEVEL.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}

	opts := logging.Options{
		Level:    level,
		Console:  cfg.LogToConsole,
		File:     cfg.LogToFile,
		FilePath: cfg.LogFilePath,
	}

	if cfg.LokiHost != "" {
		opts.Loki = &logging.LokiConfig{
			Host:     cfg.LokiHost,
			Username: cfg.LokiUsername,
			Password: cfg.LokiPassword,
			Tags:     cfg.LokiTags,
		}
	}

	return logging.New(opts)
}
