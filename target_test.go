// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

package buildgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileTarget(t *testing.T) {
	target := FileTarget("/project/a.o")
	assert.False(t, target.IsPhony())
	assert.Equal(t, "/project/a.o", target.Path())
	assert.Equal(t, "/project/a.o", target.Name())
	assert.Equal(t, "/project/a.o", target.String())
}

func TestPhonyTarget(t *testing.T) {
	target := PhonyTarget("all")
	assert.True(t, target.IsPhony())
	assert.Equal(t, "", target.Path())
	assert.Equal(t, "all", target.Name())
	assert.Equal(t, "phony(all)", target.String())
}

func TestTargetEqual(t *testing.T) {
	assert.True(t, FileTarget("/a").Equal(FileTarget("/a")))
	assert.False(t, FileTarget("/a").Equal(FileTarget("/b")))
	assert.False(t, FileTarget("/a").Equal(PhonyTarget("a")))
	assert.True(t, PhonyTarget("all").Equal(PhonyTarget("all")))
}
