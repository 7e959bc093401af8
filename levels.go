// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

package buildgraph

import "github.com/marcelocantos/buildgraph/internal/logsink"

// Level is the engine's logging verbosity, ascending from least to most
// verbose (§6): Error < Warn < Message < Command < Normal < Verbose <
// Chatty.
type Level = logsink.Level

const (
	LevelError   = logsink.LevelError
	LevelWarn    = logsink.LevelWarn
	LevelMessage = logsink.LevelMessage
	LevelCommand = logsink.LevelCommand
	LevelNormal  = logsink.LevelNormal
	LevelVerbose = logsink.LevelVerbose
	LevelChatty  = logsink.LevelChatty
)

// Logger is the sink interface the core depends on (§3 Options.custom_logger,
// §6). A host program may supply its own implementation to receive every
// message the engine emits, in addition to the built-in console/file sinks.
type Logger = logsink.Logger
