// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

// Package logsink implements the engine's fan-out logging sink: a
// console writer and an optional file writer, each filtered independently
// by verbosity, plus an optional caller-supplied Logger that receives
// every message unfiltered.
//
// Output formatting is delegated to hashicorp/go-hclog, following the
// console/file writer split used by ternarybob-iter's internal/logger
// package; filtering against the engine's own 7-level ordering (§6,
// finer-grained than hclog's 5 levels) is done here, not by hclog.
package logsink

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Level is the engine's verbosity ordering, ascending from least to
// most verbose: Error < Warn < Message < Command < Normal < Verbose <
// Chatty.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelMessage
	LevelCommand
	LevelNormal
	LevelVerbose
	LevelChatty
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelMessage:
		return "message"
	case LevelCommand:
		return "command"
	case LevelNormal:
		return "normal"
	case LevelVerbose:
		return "verbose"
	case LevelChatty:
		return "chatty"
	default:
		return "unknown"
	}
}

// hclogLevel maps the engine's 7-level ordering onto hclog's 5 levels
// for output formatting only. Error/Warn map directly; everything more
// verbose than Warn collapses toward Info/Debug/Trace since hclog has
// no equivalent granularity.
func (l Level) hclogLevel() hclog.Level {
	switch l {
	case LevelError:
		return hclog.Error
	case LevelWarn:
		return hclog.Warn
	case LevelMessage, LevelCommand, LevelNormal:
		return hclog.Info
	case LevelVerbose:
		return hclog.Debug
	default:
		return hclog.Trace
	}
}

// Logger is the sink interface the core engine depends on. A host
// program may supply its own implementation via Options.CustomLogger.
type Logger interface {
	Log(level Level, format string, args ...any)
}

// Options configures the default aggregate sink.
type Options struct {
	ConsoleLevel Level
	FileLevel    Level
	FileLogPath  string // empty disables the file sink
	Custom       Logger // optional extra destination, always receiving every message
}

// sink fans a single Log call out to the console writer and the optional
// file writer, each independently filtered by its own configured level,
// and to the optional custom logger, which is not filtered.
type sink struct {
	mu      sync.Mutex
	console hclog.Logger
	consoleLvl Level
	file    hclog.Logger
	fileLvl Level
	fileHandle io.Closer
	custom  Logger
}

// New builds the aggregate logger described by opts. The console writer
// is always present; the file writer is created only when FileLogPath
// is non-empty.
func New(opts Options) (Logger, error) {
	s := &sink{
		console:    hclog.New(&hclog.LoggerOptions{Name: "buildgraph", Output: os.Stderr, Level: hclog.Trace}),
		consoleLvl: opts.ConsoleLevel,
		custom:     opts.Custom,
	}
	if opts.FileLogPath != "" {
		f, err := os.OpenFile(opts.FileLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file %q: %w", opts.FileLogPath, err)
		}
		s.file = hclog.New(&hclog.LoggerOptions{Name: "buildgraph", Output: f, Level: hclog.Trace})
		s.fileLvl = opts.FileLevel
		s.fileHandle = f
	}
	return s, nil
}

// Log writes a message to the console and file writers whose configured
// level is at least as verbose as level, and always to the custom
// logger if one is set. Writes are serialized per sink instance
// so concurrent rule actions may log safely.
func (s *sink) Log(level Level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	s.mu.Lock()
	defer s.mu.Unlock()

	if level <= s.consoleLvl {
		emit(s.console, level, msg)
	}
	if s.file != nil && level <= s.fileLvl {
		emit(s.file, level, msg)
	}
	if s.custom != nil {
		s.custom.Log(level, "%s", msg)
	}
}

// Close releases the file handle, if any. Safe to call on a sink with
// no file writer.
func (s *sink) Close() error {
	if s.fileHandle != nil {
		return s.fileHandle.Close()
	}
	return nil
}

// Close releases l's file handle if it is a sink with one. Logger
// implementations supplied by a host program are left untouched.
func Close(l Logger) error {
	if s, ok := l.(*sink); ok {
		return s.Close()
	}
	return nil
}

func emit(lg hclog.Logger, level Level, msg string) {
	switch level.hclogLevel() {
	case hclog.Error:
		lg.Error(msg)
	case hclog.Warn:
		lg.Warn(msg)
	case hclog.Info:
		lg.Info(msg)
	case hclog.Debug:
		lg.Debug(msg)
	default:
		lg.Trace(msg)
	}
}
