// File: internal/logging/logging.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// zap logger construction. File output goes through a buffered write syncer
// so logging never blocks request handling on disk I/O.

package logging

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects level and outputs.
type Config struct {
	Level   string // debug, info, warn, error
	File    string // append-only log file; empty disables file output
	Console bool   // also write human-readable lines to stderr

	// Dynamic, when set, is used as the level enabler so callers can
	// change the level after construction.
	Dynamic *zap.AtomicLevel
}

// New builds the process logger. The returned flush func stops the buffer
// and syncs pending entries; call it once on shutdown.
func New(cfg Config) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	enabler := zap.NewAtomicLevelAt(level)
	if cfg.Dynamic != nil {
		cfg.Dynamic.SetLevel(level)
		enabler = *cfg.Dynamic
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core
	var buffered *zapcore.BufferedWriteSyncer
	var file *os.File

	if cfg.File != "" {
		file, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		buffered = &zapcore.BufferedWriteSyncer{
			WS:            zapcore.AddSync(file),
			FlushInterval: time.Second,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), buffered, enabler))
	}
	if cfg.Console {
		consoleCfg := encCfg
		consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), enabler))
	}
	if len(cores) == 0 {
		return zap.NewNop(), func() {}, nil
	}

	log := zap.New(zapcore.NewTee(cores...), zap.ErrorOutput(zapcore.Lock(os.Stderr)))
	flush := func() {
		_ = log.Sync()
		if buffered != nil {
			_ = buffered.Stop()
		}
		if file != nil {
			_ = file.Close()
		}
	}
	return log, flush, nil
}

// SetLevel parses name and applies it to al.
func SetLevel(al zap.AtomicLevel, name string) error {
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	al.SetLevel(level)
	return nil
}
