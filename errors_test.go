// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

package buildgraph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoRuleErrWrapsSentinel(t *testing.T) {
	err := noRuleErr("a.o")
	assert.ErrorIs(t, err, ErrNoRule)
	assert.Contains(t, err.Error(), "a.o")
}

func TestFlattenErrorsWalksNestedJoins(t *testing.T) {
	leaf1 := errors.New("one")
	leaf2 := errors.New("two")
	leaf3 := errors.New("three")
	nested := errors.Join(errors.Join(leaf1, leaf2), leaf3)

	leaves := flattenErrors(nested)
	assert.Equal(t, []error{leaf1, leaf2, leaf3}, leaves)
}

func TestFlattenErrorsOnPlainError(t *testing.T) {
	err := errors.New("solo")
	assert.Equal(t, []error{err}, flattenErrors(err))
}

func TestFlattenErrorsOnNil(t *testing.T) {
	assert.Nil(t, flattenErrors(nil))
}

func TestActionErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &ActionError{Target: "a.o", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "a.o")
}

func TestConfigErrorUnwrap(t *testing.T) {
	inner := errors.New("bad field")
	err := &ConfigError{Field: "threads", Err: inner}
	assert.ErrorIs(t, err, inner)
}
