// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

// Package fileset implements declarative glob-set expansion against a
// project root — the "fileset glob expansion utilities" external
// collaborator named in spec.md §1/§6.
//
// It generalizes the teacher's util.go wildcardGlob (space-separated
// patterns run through filepath.Glob, which has no "**" support) into a
// real directory walk matched against compiled gobwas/glob patterns, so
// "**" can cross directory boundaries as §4.2 requires.
package fileset

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Fileset is an ordered set of glob masks, matched relative to a
// project root.
type Fileset struct {
	patterns []glob.Glob
	raw      []string
}

// New compiles masks into a Fileset. Each mask uses the same '*'/'**'/'?'
// semantics as FilePattern.
func New(masks ...string) (Fileset, error) {
	fs := Fileset{raw: append([]string(nil), masks...)}
	for _, m := range masks {
		m = filepath.ToSlash(m)
		g, err := glob.Compile(m, '/')
		if err != nil {
			return Fileset{}, err
		}
		fs.patterns = append(fs.patterns, g)
		// As in FilePattern, "**/" also matches zero directories.
		if strings.Contains(m, "**/") {
			alt, err := glob.Compile(strings.ReplaceAll(m, "**/", ""), '/')
			if err != nil {
				return Fileset{}, err
			}
			fs.patterns = append(fs.patterns, alt)
		}
	}
	return fs, nil
}

// Expand walks root and returns every regular file whose root-relative,
// slash-normalized path matches at least one of the Fileset's patterns.
// Results are returned in the order filepath.WalkDir visits them
// (lexical per directory).
func (f Fileset) Expand(root string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, g := range f.patterns {
			if g.Match(rel) {
				matches = append(matches, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// Patterns returns the original mask strings, for diagnostics.
func (f Fileset) Patterns() []string { return f.raw }
