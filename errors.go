// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

package buildgraph

import (
	"errors"
	"fmt"
)

// ErrNoRule is the sentinel wrapped by errors returned when no rule
// matches a target that also does not exist on disk (§7).
var ErrNoRule = errors.New("no rule to build target")

// ErrCancelled is the sentinel wrapped by errors returned when a future
// is aborted by Pool.Reset or Context cancellation (§7).
var ErrCancelled = errors.New("build cancelled")

// ActionError wraps a failure raised by a user Action.
type ActionError struct {
	Target string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action for %q failed: %v", e.Target, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// ConfigError wraps an invalid Options field (§7).
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid option %q: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// InternalError signals a broken invariant: a missing pool entry where one
// was guaranteed to exist, a double-complete, or similar engine bugs.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string { return "internal error: " + e.Msg }

func noRuleErr(target string) error {
	return fmt.Errorf("%w: %q", ErrNoRule, target)
}

// flattenErrors walks an error tree built from errors.Join (possibly
// nested) and returns the leaf errors in a deterministic, depth-first,
// left-to-right order. A plain (non-joined) error is returned as its
// own single-element leaf list.
func flattenErrors(err error) []error {
	if err == nil {
		return nil
	}
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		var leaves []error
		for _, e := range u.Unwrap() {
			leaves = append(leaves, flattenErrors(e)...)
		}
		return leaves
	}
	return []error{err}
}
