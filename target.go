// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

package buildgraph

import "fmt"

// targetKind distinguishes the two Target variants.
type targetKind int

const (
	kindFile targetKind = iota
	kindPhony
)

// Target identifies a buildable thing: either a file at an absolute path
// rooted at the project root, or a named phony target unique in the
// rule registry. Targets compare equal when their kind and payload match.
type Target struct {
	kind targetKind
	path string // kindFile: absolute path
	name string // kindPhony: identifier
}

// FileTarget returns a file Target for the given absolute path. Callers
// normally obtain Targets via MakeTarget rather than constructing
// them directly.
func FileTarget(path string) Target { return Target{kind: kindFile, path: path} }

// PhonyTarget returns a phony Target for the given name.
func PhonyTarget(name string) Target { return Target{kind: kindPhony, name: name} }

// IsPhony reports whether t is a phony target.
func (t Target) IsPhony() bool { return t.kind == kindPhony }

// Path returns the file path for a file target, or "" for a phony target.
func (t Target) Path() string { return t.path }

// Name returns the identifying name: the file path for file targets, the
// phony name for phony targets. Used as the de-duplication key in the
// worker pool, and for diagnostics.
func (t Target) Name() string {
	if t.kind == kindPhony {
		return t.name
	}
	return t.path
}

func (t Target) String() string {
	if t.kind == kindPhony {
		return fmt.Sprintf("phony(%s)", t.name)
	}
	return t.path
}

// Equal reports whether t and o denote the same target.
func (t Target) Equal(o Target) bool {
	return t.kind == o.kind && t.path == o.path && t.name == o.name
}
