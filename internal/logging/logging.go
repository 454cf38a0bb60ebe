// Package logging builds the zap loggers used by the CLI.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	// Verbose lowers the level from warn to debug.
	Verbose bool
	// File redirects output away from stderr, for the full-screen UI.
	File string
	// JSON selects the production encoder.
	JSON bool
}

func New(opts Options) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if opts.JSON {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if opts.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = !opts.Verbose
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("creating log dir: %w", err)
		}
		cfg.OutputPaths = []string{opts.File}
		cfg.ErrorOutputPaths = []string{opts.File}
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		if opts.Verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}
