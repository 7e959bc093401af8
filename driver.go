// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

package buildgraph

import (
	"time"

	"github.com/marcelocantos/buildgraph/internal/logsink"
	"github.com/marcelocantos/buildgraph/internal/pool"
)

// Run executes one build (§4.6): it builds the run's aggregate logger and
// worker pool, resolves the effective want list against reg, submits
// every want concurrently, and waits for all of them.
//
// want is the effective list of target names to build: the caller (the
// Builder, typically) has already applied §4.1's precedence between
// Options.Want and any script-declared default.
//
// On success, Run logs the elapsed wall time at LevelMessage and returns
// nil. On failure, every leaf error is logged individually at LevelError
// before the aggregate is returned; if opts.FailOnError is false the
// failure is logged but Run still returns nil, matching a build tool
// that reports but does not abort its caller.
func Run(opts Options, reg *RuleRegistry, want []string) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	logger, err := logsink.New(logsink.Options{
		ConsoleLevel: opts.ConsoleLevel,
		FileLevel:    opts.FileLevel,
		FileLogPath:  opts.FileLogPath,
		Custom:       opts.CustomLogger,
	})
	if err != nil {
		return err
	}
	defer logsink.Close(logger)

	p := pool.New(opts.Threads)
	ctx := newContext(opts, reg, logger, p)

	targets := make([]Target, len(want))
	for i, name := range want {
		targets[i] = MakeTarget(reg, opts, name)
	}

	start := timeNow()
	buildErr := ctx.awaitAll(targets)
	elapsed := timeNow().Sub(start)

	if buildErr == nil {
		ctx.WriteLog(LevelMessage, "build succeeded in %s", elapsed)
		return nil
	}

	for _, leaf := range flattenErrors(buildErr) {
		ctx.WriteLog(LevelError, "%v", leaf)
	}
	ctx.WriteLog(LevelMessage, "build failed in %s", elapsed)

	if opts.FailOnError {
		return buildErr
	}
	return nil
}

// timeNow is the single point of access to wall-clock time so Run stays
// easy to exercise deterministically in tests that stub it.
var timeNow = time.Now
