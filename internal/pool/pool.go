// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

// Package pool implements the worker pool (§4.3): a de-duplicating
// memoization table of in-flight and completed per-target builds,
// gated against a fixed concurrency budget.
//
// The de-duplication shape (a mutex-guarded map of {done chan
// struct{}, err error} entries) is the teacher's own
// Executor.Build/doBuild design in exec.go, generalized from "build one
// target with a shell recipe" to "run one opaque thunk per target".
// The concurrency gate is upgraded from the teacher's raw buffered
// channel to golang.org/x/sync/semaphore.Weighted so it composes with
// context cancellation for Reset.
package pool

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Future is a handle to a target's in-flight or completed build. The pool
// hands out *Future pointers, so every caller shares one Future.
type Future struct {
	done chan struct{}
	err  error
}

// Wait blocks until the future completes or ctx is done, whichever
// comes first.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done reports whether the future has already completed, without
// blocking.
func (f *Future) Done() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Pool is the memoizing, permit-throttled executor of rule actions. All
// state mutation (map insert, the Running→Completed transition) is
// linearized through a single mutex, matching the "single actor or
// mutex-guarded section" contract of §4.3/§9.
type Pool struct {
	mu      sync.Mutex
	entries map[string]*Future
	sem     *semaphore.Weighted

	ctxMu  sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a pool whose concurrency budget is threads simultaneously
// running actions.
func New(threads int) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		entries: make(map[string]*Future),
		sem:     semaphore.NewWeighted(int64(threads)),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// runCtx returns the context in-flight tasks should observe for
// cancellation, valid until the next Reset.
func (p *Pool) runCtx() context.Context {
	p.ctxMu.Lock()
	defer p.ctxMu.Unlock()
	return p.ctx
}

// Submit requests that key be built by running thunk. If an entry for
// key already exists (Running or Completed), Submit returns a handle to
// it without invoking thunk again — this is the engine's at-most-once
// guarantee (§3 invariants, §8 round-trip property).
func (p *Pool) Submit(key string, thunk func(ctx context.Context) error) *Future {
	p.mu.Lock()
	if f, ok := p.entries[key]; ok {
		p.mu.Unlock()
		return f
	}
	f := &Future{done: make(chan struct{})}
	p.entries[key] = f
	p.mu.Unlock()

	ctx := p.runCtx()
	go func() {
		defer close(f.done)
		if err := p.sem.Acquire(ctx, 1); err != nil {
			f.err = err
			return
		}
		defer p.sem.Release(1)

		select {
		case <-ctx.Done():
			f.err = ctx.Err()
		default:
			f.err = thunk(ctx)
		}
	}()
	return f
}

// Lookup is a diagnostic, non-mutating read of key's current entry, if
// any.
func (p *Pool) Lookup(key string) (*Future, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f, ok := p.entries[key]
	return f, ok
}

// AcquireSlot blocks until a worker permit is available or ctx is
// cancelled. Submit acquires and releases a permit around every thunk it
// runs; a running action that calls Need releases its own permit before
// waiting on dependencies and reacquires one via AcquireSlot before
// resuming, so it doesn't hold a slot idle while blocked.
func (p *Pool) AcquireSlot(ctx context.Context) error {
	return p.sem.Acquire(ctx, 1)
}

// ReleaseSlot returns a permit acquired via AcquireSlot. The caller must
// hold a permit; ReleaseSlot does not itself check this.
func (p *Pool) ReleaseSlot() {
	p.sem.Release(1)
}

// Reset cancels all pending futures and clears the table, so the pool
// can be reused for a fresh run. In-flight Submit goroutines observe
// the cancelled context and complete with context.Canceled; their
// (now-stale) entries are dropped rather than waited for.
func (p *Pool) Reset() {
	p.ctxMu.Lock()
	p.cancel()
	ctx, cancel := context.WithCancel(context.Background())
	p.ctx = ctx
	p.cancel = cancel
	p.ctxMu.Unlock()

	p.mu.Lock()
	p.entries = make(map[string]*Future)
	p.mu.Unlock()
}
