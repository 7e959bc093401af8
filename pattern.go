// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

package buildgraph

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// patternKind distinguishes the two TargetPattern variants.
type patternKind int

const (
	patternFile patternKind = iota
	patternPhony
)

// TargetPattern is the left-hand side of a Rule: either a shell-style
// glob mask matched against file targets, or an exact phony name.
//
// Patterns are compared for identity by their raw textual form (§3):
// declaring a second rule for the same raw pattern replaces the first.
type TargetPattern struct {
	kind patternKind
	raw  string
	g    glob.Glob // compiled form, nil for phony patterns
	alt  glob.Glob // mask with every "**/" removed, nil if it has none
}

// FilePattern compiles a shell-style glob mask into a TargetPattern.
// '*' expands to one-or-more non-separator characters, '**' to
// zero-or-more path segments (crossing separators), '?' to a single
// character, and '.' is literal. Both '/' and '\' are accepted as
// separators in mask and are normalized to '/' before compiling. A mask
// with several "**/" segments matches when all of them match zero
// segments or each of them matches at least one.
func FilePattern(mask string) (TargetPattern, error) {
	normalized := strings.ReplaceAll(mask, "\\", "/")
	g, err := glob.Compile(normalized, '/')
	if err != nil {
		return TargetPattern{}, err
	}
	// gobwas's "**" cannot drop the "/" written after it, so the
	// zero-segment case of "**/" is matched by a second glob without it.
	var alt glob.Glob
	if strings.Contains(normalized, "**/") {
		if alt, err = glob.Compile(strings.ReplaceAll(normalized, "**/", ""), '/'); err != nil {
			return TargetPattern{}, err
		}
	}
	return TargetPattern{kind: patternFile, raw: mask, g: g, alt: alt}, nil
}

// PhonyPattern builds a TargetPattern that matches exactly the given
// phony name.
func PhonyPattern(name string) TargetPattern {
	return TargetPattern{kind: patternPhony, raw: name}
}

// IsPhony reports whether p is a phony pattern.
func (p TargetPattern) IsPhony() bool { return p.kind == patternPhony }

// Raw returns the pattern's original textual form, used as its identity
// key within a RuleRegistry.
func (p TargetPattern) Raw() string { return p.raw }

// Matches reports whether t satisfies this pattern. For a PhonyPattern
// this is exact-name equality; for a FilePattern, t's path (relative to
// projectRoot, with separators normalized) is matched against the
// compiled glob.
func (p TargetPattern) Matches(t Target, projectRoot string) bool {
	switch p.kind {
	case patternPhony:
		return t.IsPhony() && t.Name() == p.raw
	default:
		if t.IsPhony() {
			return false
		}
		rel := t.Path()
		if r, err := filepath.Rel(projectRoot, t.Path()); err == nil {
			rel = r
		}
		rel = filepath.ToSlash(rel)
		return p.g.Match(rel) || (p.alt != nil && p.alt.Match(rel))
	}
}
