// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

package pool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitRunsEachKeyAtMostOnce(t *testing.T) {
	p := New(4)
	var calls int32

	thunk := func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		time.Sleep(10 * time.Millisecond)
		return nil
	}

	futures := make([]*Future, 5)
	for i := range futures {
		futures[i] = p.Submit("a.o", thunk)
	}
	for _, f := range futures {
		require.NoError(t, f.Wait(context.Background()))
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSubmitReturnsSameFutureForSameKey(t *testing.T) {
	p := New(4)
	thunk := func(context.Context) error { return nil }

	f1 := p.Submit("a.o", thunk)
	f2 := p.Submit("a.o", thunk)
	assert.Same(t, f1, f2)
}

func TestAcquireReleaseSlotEnforcesBudget(t *testing.T) {
	p := New(1)
	require.NoError(t, p.AcquireSlot(context.Background()))

	acquired := make(chan struct{})
	go func() {
		_ = p.AcquireSlot(context.Background())
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second AcquireSlot should block while the only permit is held")
	case <-time.After(20 * time.Millisecond):
	}

	p.ReleaseSlot()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("AcquireSlot should unblock once the permit is released")
	}
}

func TestSubmitHoldsAPermitWhileRunning(t *testing.T) {
	p := New(2)
	const n = 8

	var current, peak int32
	thunk := func(context.Context) error {
		c := atomic.AddInt32(&current, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if c <= p || atomic.CompareAndSwapInt32(&peak, p, c) {
				break
			}
		}
		time.Sleep(15 * time.Millisecond)
		atomic.AddInt32(&current, -1)
		return nil
	}

	futures := make([]*Future, n)
	for i := range futures {
		futures[i] = p.Submit(key(i), thunk)
	}
	for _, f := range futures {
		require.NoError(t, f.Wait(context.Background()))
	}

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2), "Submit must gate concurrent thunks behind the pool's permit budget")
	assert.GreaterOrEqual(t, atomic.LoadInt32(&peak), int32(2), "the thunks should have actually overlapped for this test to mean anything")
}

func key(i int) string {
	return string(rune('a' + i))
}

func TestLookupFindsSubmittedFuture(t *testing.T) {
	p := New(1)
	p.Submit("a.o", func(context.Context) error { return nil })

	_, ok := p.Lookup("a.o")
	assert.True(t, ok)

	_, ok = p.Lookup("b.o")
	assert.False(t, ok)
}

func TestResetCancelsInFlightAndClearsTable(t *testing.T) {
	p := New(1)
	started := make(chan struct{})
	blocked := make(chan struct{})

	f := p.Submit("a.o", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	<-started

	go func() {
		p.Reset()
		close(blocked)
	}()

	err := f.Wait(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
	<-blocked

	_, ok := p.Lookup("a.o")
	assert.False(t, ok, "Reset must clear stale entries")
}
