// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

package buildgraph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsNonPositiveThreads(t *testing.T) {
	opts := DefaultOptions()
	opts.Threads = 0
	err := opts.Validate()
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "threads", cfgErr.Field)
}

func TestValidateRejectsEmptyProjectRoot(t *testing.T) {
	opts := DefaultOptions()
	opts.ProjectRoot = ""
	err := opts.Validate()
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "project_root", cfgErr.Field)
}

func TestLoadOptionsAppliesTOMLThenEnvThenOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "buildgraph.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
threads = 2
console_level = "warn"
fail_on_error = true
`), 0o644))

	t.Setenv("BUILDGRAPH_THREADS", "3")

	opts, err := LoadOptions(cfgPath, Options{ConsoleLevel: LevelChatty})
	require.NoError(t, err)

	assert.Equal(t, 3, opts.Threads, "env overrides the file")
	assert.Equal(t, LevelChatty, opts.ConsoleLevel, "an explicit override beats both file and env")
	assert.True(t, opts.FailOnError, "file-only fields still apply when nothing overrides them")
}

func TestLoadOptionsWithNoConfigFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	opts, err := LoadOptions("", Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, opts.Threads)
}

func TestParseLevelRoundTrip(t *testing.T) {
	for _, name := range []string{"error", "warn", "message", "command", "normal", "verbose", "chatty"} {
		lvl, ok := parseLevel(name)
		assert.True(t, ok)
		assert.Equal(t, name, lvl.String())
	}
	_, ok := parseLevel("bogus")
	assert.False(t, ok)
}
