// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

package buildgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePatternStarMatchesOneSegment(t *testing.T) {
	pat, err := FilePattern("*.o")
	require.NoError(t, err)

	assert.True(t, pat.Matches(FileTarget("/root/a.o"), "/root"))
	assert.False(t, pat.Matches(FileTarget("/root/sub/a.o"), "/root"), "* must not cross a path separator")
}

func TestFilePatternDoubleStarCrossesSegments(t *testing.T) {
	pat, err := FilePattern("**/*.o")
	require.NoError(t, err)

	assert.True(t, pat.Matches(FileTarget("/root/a.o"), "/root"))
	assert.True(t, pat.Matches(FileTarget("/root/sub/deep/a.o"), "/root"))
}

func TestFilePatternQuestionMatchesSingleChar(t *testing.T) {
	pat, err := FilePattern("a?.o")
	require.NoError(t, err)

	assert.True(t, pat.Matches(FileTarget("/root/ab.o"), "/root"))
	assert.False(t, pat.Matches(FileTarget("/root/abc.o"), "/root"))
}

func TestFilePatternNeverMatchesPhony(t *testing.T) {
	pat, err := FilePattern("*")
	require.NoError(t, err)

	assert.False(t, pat.Matches(PhonyTarget("all"), "/root"))
}

func TestPhonyPatternExactNameOnly(t *testing.T) {
	pat := PhonyPattern("all")

	assert.True(t, pat.Matches(PhonyTarget("all"), "/root"))
	assert.False(t, pat.Matches(PhonyTarget("clean"), "/root"))
	assert.False(t, pat.Matches(FileTarget("/root/all"), "/root"))
}

func TestFilePatternRawIsIdentity(t *testing.T) {
	pat, err := FilePattern("*.o")
	require.NoError(t, err)
	assert.Equal(t, "*.o", pat.Raw())
}
