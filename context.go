// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

package buildgraph

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/marcelocantos/buildgraph/internal/fileset"
	"github.com/marcelocantos/buildgraph/internal/pool"
)

// rebuildStatus is a placeholder for the not-yet-implemented incremental
// -build system's staleness verdict (§4.4, §9 open question). Valid is
// the only value this version ever produces; the type stays unexported
// so a future version can add statuses without an API break.
type rebuildStatus int

// Valid is the only rebuildStatus this version of the engine produces.
const Valid rebuildStatus = 0

// Context is the ambient state carried by reference through every rule
// action in a single Run (§4.4): options, the frozen rule registry, the
// logger, and the worker pool backing Need. One Context is created per
// Run and shared across all of that run's tasks — never one per task.
type Context struct {
	options  Options
	registry *RuleRegistry
	logger   Logger
	pool     *pool.Pool
}

func newContext(opts Options, reg *RuleRegistry, logger Logger, p *pool.Pool) *Context {
	return &Context{options: opts, registry: reg, logger: logger, pool: p}
}

// GetCtxOptions returns the Options this run was started with.
func (ctx *Context) GetCtxOptions() Options { return ctx.options }

// Status always returns Valid in this version (§4.4, §9).
func (ctx *Context) Status() rebuildStatus { return Valid }

// WriteLog emits a formatted message at the given verbosity through the
// run's aggregate logger.
func (ctx *Context) WriteLog(level Level, format string, args ...any) {
	ctx.logger.Log(level, format, args...)
}

// Need is the dependency-declaring primitive (§4.5): it releases the
// caller's worker permit, submits every target to the pool (deduping
// against already-running or -completed builds), awaits them all in
// parallel, and re-acquires a permit before returning.
//
// need([]) is a no-op that does not touch the permit count (§4.5 edge
// case, §8 idempotence property).
//
// If any target fails, Need returns the first target's error (by its
// position in targets, not completion order — see DESIGN.md's Open
// Question resolution on deterministic error ordering) joined with the
// rest via errors.Join, so every failure is attached, not just the
// first one observed (§8 scenario 5).
func (ctx *Context) Need(targets ...Target) error {
	if len(targets) == 0 {
		return nil
	}

	ctx.pool.ReleaseSlot()
	err := ctx.awaitAll(targets)

	if aerr := ctx.pool.AcquireSlot(context.Background()); aerr != nil {
		return aerr
	}
	return err
}

// awaitAll submits every target and waits for all of them, without
// touching the worker-permit count — the top-level driver uses this
// directly (it holds no permit to release), while Need wraps it with
// the release/reacquire dance required of a running rule body.
func (ctx *Context) awaitAll(targets []Target) error {
	futures := make([]*pool.Future, len(targets))
	for i, t := range targets {
		futures[i] = ctx.pool.Submit(t.Name(), ctx.compileAction(t))
	}

	errs := make([]error, len(targets))
	var g errgroup.Group
	for i := range targets {
		i := i
		g.Go(func() error {
			errs[i] = futures[i].Wait(context.Background())
			return nil
		})
	}
	_ = g.Wait() // never non-nil: goroutines record into errs, not the group's own error

	var failed []error
	for _, e := range errs {
		if e != nil {
			if errors.Is(e, context.Canceled) {
				e = fmt.Errorf("%w: %w", ErrCancelled, e)
			}
			failed = append(failed, e)
		}
	}
	return errors.Join(failed...)
}

// NeedNames resolves each name to a Target via MakeTarget (§4.1) and
// delegates to Need — the string-or-target convenience named in §6.
func (ctx *Context) NeedNames(names ...string) error {
	targets := make([]Target, len(names))
	for i, n := range names {
		targets[i] = MakeTarget(ctx.registry, ctx.options, n)
	}
	return ctx.Need(targets...)
}

// NeedFileset expands fs against the project root and Needs every
// resulting file (§6's needFileset primitive).
func (ctx *Context) NeedFileset(fs fileset.Fileset) error {
	paths, err := fs.Expand(ctx.options.ProjectRoot)
	if err != nil {
		return err
	}
	targets := make([]Target, len(paths))
	for i, p := range paths {
		targets[i] = FileTarget(p)
	}
	return ctx.Need(targets...)
}

// WhenNeeded is a placeholder hook reserved for the incremental-build
// system: today it always treats target as Valid and simply runs body.
// §9's open question on the Rebuild status is resolved by never
// producing anything other than Valid in this version.
func (ctx *Context) WhenNeeded(target Target, body func(status rebuildStatus) error) error {
	return body(Valid)
}

// compileAction locates the rule for t and binds it into a thunk that,
// when run, executes the rule's Action against the run's shared
// Context (§4.5 compile_action). A file target with no matching rule
// but an existing file compiles to a no-op that completes immediately;
// anything else with no matching rule fails with ErrNoRule.
func (ctx *Context) compileAction(t Target) func(context.Context) error {
	return func(context.Context) error {
		rule, ok := ctx.registry.Locate(t, ctx.options.ProjectRoot)
		if !ok {
			if !t.IsPhony() {
				if _, err := os.Stat(t.Path()); err == nil {
					return nil
				}
			}
			return noRuleErr(t.Name())
		}

		if ctx.options.DryRun {
			ctx.WriteLog(LevelCommand, "would build %s", t.Name())
			return nil
		}

		if err := rule.Action(ctx, t); err != nil {
			return &ActionError{Target: t.Name(), Err: err}
		}
		return nil
	}
}
