// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap logger shared by every orb command.
//
// The TUI owns the terminal, so logs go to a file (~/.orb/orb.log by
// default) as JSON lines.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects where and how verbosely to log.
type Options struct {
	// Level is "debug", "info", "warn" or "error".
	Level string
	// Path is the log file. "-" logs to stderr; "" disables logging.
	Path string
	// Verbose forces debug level.
	Verbose bool
}

// ParseLevel converts a level name to a zapcore.Level.
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

// DefaultPath returns the log file inside dir.
func DefaultPath(dir string) string {
	return filepath.Join(dir, "orb.log")
}

// New builds a production logger from opts.
func New(opts Options) (*zap.Logger, error) {
	if opts.Path == "" {
		return zap.NewNop(), nil
	}

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.Sampling = nil
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if opts.Path == "-" {
		config.OutputPaths = []string{"stderr"}
		config.ErrorOutputPaths = []string{"stderr"}
	} else {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		config.OutputPaths = []string{opts.Path}
		config.ErrorOutputPaths = []string{opts.Path}
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
