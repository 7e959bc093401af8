// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

package buildgraph

// Builder is the script-building surface (§4.7, §6): a host program (or
// a compiled mkfile, via internal/mkfile) declares rules and a default
// want list against a Builder, then calls Run to execute them.
//
// A Builder is not safe for concurrent use; it is meant to be built up
// by a single goroutine before the run starts.
type Builder struct {
	opts         Options
	registry     *RuleRegistry
	scriptWant   []string
	overrideWant []string
}

// NewBuilder returns an empty Builder configured with opts.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts, registry: NewRuleRegistry()}
}

// Rule registers r directly, replacing any existing rule for the same
// pattern (§4.2's re-declaration rule).
func (b *Builder) Rule(r Rule) *Builder {
	b.registry.Add(r)
	return b
}

// Rules registers every rule in rs, in order.
func (b *Builder) Rules(rs []Rule) *Builder {
	for _, r := range rs {
		b.registry.Add(r)
	}
	return b
}

// AddRule compiles mask into a FilePattern and registers it with action.
// Panics if mask is not a valid glob — scripts are expected to use
// literal, programmer-authored masks, not user input.
func (b *Builder) AddRule(mask string, action Action) *Builder {
	pat, err := FilePattern(mask)
	if err != nil {
		panic(err)
	}
	return b.Rule(Rule{Pattern: pat, Action: action})
}

// Phony registers name as a phony target built by action.
func (b *Builder) Phony(name string, action Action) *Builder {
	return b.Rule(Rule{Pattern: PhonyPattern(name), Action: action})
}

// Want appends to the script's own declared default want list — the
// lowest-precedence source in §4.1's want resolution, used only when
// neither Options.Want nor WantOverride supply anything.
func (b *Builder) Want(names ...string) *Builder {
	b.scriptWant = append(b.scriptWant, names...)
	return b
}

// WantOverride sets a want list that takes precedence over the script's
// own declared default, but still yields to an explicit Options.Want
// (which a CLI flag or embedding caller sets directly). Use this when a
// script wants to compute its own default programmatically rather than
// via repeated Want calls.
func (b *Builder) WantOverride(names ...string) *Builder {
	b.overrideWant = names
	return b
}

// effectiveWant applies §4.1's precedence: an explicit Options.Want wins,
// then WantOverride, then the script's own declared Want calls.
func (b *Builder) effectiveWant() []string {
	if len(b.opts.Want) > 0 {
		return b.opts.Want
	}
	if len(b.overrideWant) > 0 {
		return b.overrideWant
	}
	return b.scriptWant
}

// Registry exposes the Builder's accumulated rules, mainly so
// internal/mkfile can compile a textual script directly against it.
func (b *Builder) Registry() *RuleRegistry { return b.registry }

// Run executes the accumulated rules and want list (§4.6) via Run.
func (b *Builder) Run() error {
	return Run(b.opts, b.registry, b.effectiveWant())
}
