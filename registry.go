// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

package buildgraph

// Action is a deferred computation: given an execution Context (and, for
// file rules, the resolved file Target), it performs the rule's effects
// and returns an error on failure. Actions may call ctx.Need to suspend
// on dependencies before continuing.
type Action func(ctx *Context, target Target) error

// Rule pairs a TargetPattern with the Action that produces matching
// targets.
type Rule struct {
	Pattern TargetPattern
	Action  Action
}

// RuleRegistry is an ordered TargetPattern → Rule mapping. Declaration
// order is preserved for file-pattern tie-break (§4.2); it is irrelevant
// to phony lookup, which is always exact.
type RuleRegistry struct {
	rules []Rule
	index map[string]int // pattern.Raw() -> position in rules
}

// NewRuleRegistry returns an empty registry.
func NewRuleRegistry() *RuleRegistry {
	return &RuleRegistry{index: make(map[string]int)}
}

// Add registers r, replacing any existing rule for the same pattern
// (identity by TargetPattern.Raw()). Re-declaration is idempotent: the
// new rule takes the old one's declaration-order slot, so later
// unrelated file patterns do not jump ahead of it in tie-break order.
func (reg *RuleRegistry) Add(r Rule) {
	key := r.Pattern.Raw()
	if i, ok := reg.index[key]; ok {
		reg.rules[i] = r
		return
	}
	reg.index[key] = len(reg.rules)
	reg.rules = append(reg.rules, r)
}

// Size returns the number of distinct patterns registered.
func (reg *RuleRegistry) Size() int { return len(reg.rules) }

// IsPhonyName reports whether name matches a registered PhonyPattern —
// used by MakeTarget to give phony targets precedence over files with
// the same bare name (§4.1).
func (reg *RuleRegistry) IsPhonyName(name string) bool {
	for _, r := range reg.rules {
		if r.Pattern.IsPhony() && r.Pattern.Raw() == name {
			return true
		}
	}
	return false
}

// Locate finds the rule matching target, applying §4.2's matching and
// tie-break rules: phony targets match by exact name; file targets are
// tested against FilePatterns in declaration order, first match wins.
func (reg *RuleRegistry) Locate(target Target, projectRoot string) (Rule, bool) {
	if target.IsPhony() {
		for _, r := range reg.rules {
			if r.Pattern.IsPhony() && r.Pattern.Raw() == target.Name() {
				return r, true
			}
		}
		return Rule{}, false
	}
	for _, r := range reg.rules {
		if !r.Pattern.IsPhony() && r.Pattern.Matches(target, projectRoot) {
			return r, true
		}
	}
	return Rule{}, false
}
