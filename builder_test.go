// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

package buildgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveWantPrecedence(t *testing.T) {
	b := NewBuilder(Options{})
	b.Want("script-default")
	assert.Equal(t, []string{"script-default"}, b.effectiveWant())

	b.WantOverride("override")
	assert.Equal(t, []string{"override"}, b.effectiveWant(), "WantOverride beats a script default")

	b2 := NewBuilder(Options{Want: []string{"cli-target"}})
	b2.Want("script-default")
	b2.WantOverride("override")
	assert.Equal(t, []string{"cli-target"}, b2.effectiveWant(), "an explicit Options.Want always wins")
}

func TestPhonyAndAddRuleRegisterDistinctPatternKinds(t *testing.T) {
	b := NewBuilder(Options{ProjectRoot: "/root"})
	b.AddRule("*.o", func(*Context, Target) error { return nil })
	b.Phony("all", func(*Context, Target) error { return nil })

	assert.Equal(t, 2, b.Registry().Size())
	assert.True(t, b.Registry().IsPhonyName("all"))
	assert.False(t, b.Registry().IsPhonyName("*.o"))
}
