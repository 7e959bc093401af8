// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

package buildgraph

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSucceedsWhenEveryWantBuilds(t *testing.T) {
	root := t.TempDir()
	b := NewBuilder(Options{ProjectRoot: root, Threads: 2, ConsoleLevel: LevelChatty})
	b.AddRule("a.o", func(*Context, Target) error { return nil })
	b.Want("a.o")

	require.NoError(t, b.Run())
}

func TestRunReturnsAggregateErrorWhenFailOnErrorIsTrue(t *testing.T) {
	root := t.TempDir()
	b := NewBuilder(Options{ProjectRoot: root, Threads: 1, FailOnError: true})
	b.AddRule("a.o", func(*Context, Target) error { return errors.New("nope") })
	b.Want("a.o")

	err := b.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestRunSwallowsErrorWhenFailOnErrorIsFalse(t *testing.T) {
	root := t.TempDir()
	b := NewBuilder(Options{ProjectRoot: root, Threads: 1, FailOnError: false})
	b.AddRule("a.o", func(*Context, Target) error { return errors.New("nope") })
	b.Want("a.o")

	assert.NoError(t, b.Run(), "a reported but non-fatal failure still returns nil")
}

func TestRunResolvesPhonyWant(t *testing.T) {
	root := t.TempDir()
	built := false
	b := NewBuilder(Options{ProjectRoot: root, Threads: 1})
	b.AddRule("a.o", func(*Context, Target) error { built = true; return nil })
	b.Phony("all", func(ctx *Context, _ Target) error {
		return ctx.Need(FileTarget(filepath.Join(root, "a.o")))
	})
	b.Want("all")

	require.NoError(t, b.Run())
	assert.True(t, built)
}

func TestTwoIndependentRunsDoNotShareState(t *testing.T) {
	root := t.TempDir()
	calls := 0

	opts := Options{ProjectRoot: root, Threads: 1}
	run := func() error {
		b := NewBuilder(opts)
		b.AddRule("a.o", func(*Context, Target) error { calls++; return nil })
		b.Want("a.o")
		return b.Run()
	}

	require.NoError(t, run())
	require.NoError(t, run())
	assert.Equal(t, 2, calls, "each Run gets a fresh worker pool, so a.o is rebuilt both times")
}
