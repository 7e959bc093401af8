// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

package logsink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	calls []string
}

func (r *recordingLogger) Log(level Level, format string, args ...any) {
	r.calls = append(r.calls, level.String())
}

func TestLevelOrdering(t *testing.T) {
	assert.Less(t, int(LevelError), int(LevelWarn))
	assert.Less(t, int(LevelWarn), int(LevelMessage))
	assert.Less(t, int(LevelMessage), int(LevelCommand))
	assert.Less(t, int(LevelCommand), int(LevelNormal))
	assert.Less(t, int(LevelNormal), int(LevelVerbose))
	assert.Less(t, int(LevelVerbose), int(LevelChatty))
}

func TestNewWithoutFileLogPathHasNoFileSink(t *testing.T) {
	logger, err := New(Options{ConsoleLevel: LevelChatty})
	require.NoError(t, err)
	defer Close(logger)

	s := logger.(*sink)
	assert.Nil(t, s.file)
}

func TestCustomLoggerReceivesEveryMessage(t *testing.T) {
	custom := &recordingLogger{}
	logger, err := New(Options{ConsoleLevel: LevelError, Custom: custom})
	require.NoError(t, err)
	defer Close(logger)

	logger.Log(LevelChatty, "hello %s", "world")
	logger.Log(LevelError, "boom")

	require.Len(t, custom.calls, 2, "custom logger bypasses the console's own level filter")
}

func TestNewWithFileLogPathOpensFile(t *testing.T) {
	path := t.TempDir() + "/build.log"
	logger, err := New(Options{ConsoleLevel: LevelMessage, FileLevel: LevelVerbose, FileLogPath: path})
	require.NoError(t, err)

	logger.Log(LevelVerbose, "detail")
	require.NoError(t, Close(logger))
}
