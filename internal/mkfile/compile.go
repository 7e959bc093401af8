// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

// Package mkfile is the optional textual front end (§6's "external
// mkfile-compatible script format"): it parses the teacher's line-based
// rule syntax (ast.go, parse.go, vars.go — kept essentially intact as
// grammar) and compiles it into calls against a *buildgraph.Builder, so
// a textual script and a Go-embedding caller end up driving the exact
// same engine.
//
// Variable assignment, $-expansion, conditionals and for-loops are all
// resolved while compiling, before any rule runs — recipes and
// prerequisite lists are fully expanded strings by the time they reach
// the engine. Only the recipe itself (run via os/exec, one shell
// invocation per line) executes later, inside a rule's Action.
package mkfile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/marcelocantos/buildgraph"
)

// Compiler holds the state threaded through one compilation: the
// variable store and the Builder rules are registered into. baseDir
// anchors relative includes and the working directory recipes run in.
type Compiler struct {
	vars     *Vars
	builder  *buildgraph.Builder
	baseDir  string
	included map[string]bool
}

// NewCompiler returns a Compiler that registers rules into b, resolving
// includes and recipe working directories relative to baseDir.
func NewCompiler(b *buildgraph.Builder, baseDir string) *Compiler {
	return &Compiler{
		vars:     NewVars(),
		builder:  b,
		baseDir:  baseDir,
		included: make(map[string]bool),
	}
}

// SetVar pre-sets a variable before compiling, the same as a "name=value"
// command-line argument would in the teacher's CLI.
func (c *Compiler) SetVar(name, value string) {
	c.vars.Set(name, value)
}

// CompileFile parses and compiles the mkfile at path.
func CompileFile(b *buildgraph.Builder, path string) error {
	c := NewCompiler(b, filepath.Dir(path))
	return c.CompileFile(path)
}

// CompileFile parses and compiles the mkfile at path using c's existing
// variable store — use this (via NewCompiler) when the caller needs to
// pre-set variables (e.g. "name=value" command-line arguments) before
// the script's own assignments run.
func (c *Compiler) CompileFile(path string) error {
	return c.compileFile(path)
}

// CompileReader parses and compiles r as a single mkfile with no
// includes resolved relative to anything but baseDir.
func CompileReader(b *buildgraph.Builder, baseDir string, r io.Reader) error {
	c := NewCompiler(b, baseDir)
	f, err := Parse(r)
	if err != nil {
		return err
	}
	return c.compileStmts(f.Stmts)
}

func (c *Compiler) compileFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if c.included[abs] {
		return fmt.Errorf("mkfile: circular include of %s", path)
	}
	c.included[abs] = true
	defer delete(c.included, abs)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("mkfile: reading %s: %w", path, err)
	}
	f, err := Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("mkfile: parsing %s: %w", path, err)
	}
	return c.compileStmts(f.Stmts)
}

func (c *Compiler) compileStmts(stmts []Node) error {
	for _, n := range stmts {
		if err := c.compileStmt(n); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileStmt(n Node) error {
	switch s := n.(type) {
	case VarAssign:
		return c.compileVarAssign(s)
	case FuncDef:
		def := s
		c.vars.SetFunc(&def)
		return nil
	case Rule:
		return c.compileRule(s)
	case Include:
		return c.compileInclude(s)
	case Conditional:
		return c.compileConditional(s)
	case Loop:
		return c.compileLoop(s)
	case ConfigDef:
		// Build-configuration variants are parsed but not applied in
		// this version — see DESIGN.md.
		return nil
	default:
		return fmt.Errorf("mkfile: unsupported statement %T at line %d", n, lineOf(n))
	}
}

func (c *Compiler) compileVarAssign(s VarAssign) error {
	switch s.Op {
	case OpSet:
		if s.Lazy {
			c.vars.SetLazy(s.Name, s.Value)
		} else {
			c.vars.Set(s.Name, c.vars.Expand(s.Value))
		}
	case OpAppend:
		c.vars.Append(s.Name, c.vars.Expand(s.Value))
	case OpCondSet:
		if c.vars.Get(s.Name) == "" {
			c.vars.Set(s.Name, c.vars.Expand(s.Value))
		}
	}
	return nil
}

func (c *Compiler) compileRule(r Rule) error {
	deps := append(c.expandAll(r.Prereqs), c.expandAll(r.OrderOnlyPrereqs)...)
	recipe := c.expandAll(r.Recipe)
	action := recipeAction(deps, recipe, c.baseDir, c.vars.Environ())

	for _, rawTarget := range r.Targets {
		target := c.vars.Expand(rawTarget)
		if r.IsTask {
			c.builder.Phony(target, action)
		} else {
			c.builder.AddRule(target, action)
		}
	}
	return nil
}

// recipeAction builds the Action a compiled rule runs: Need every
// dependency, then shell out to each recipe line in order, stopping at
// the first failure.
func recipeAction(deps, recipe []string, dir string, env []string) buildgraph.Action {
	return func(ctx *buildgraph.Context, _ buildgraph.Target) error {
		if len(deps) > 0 {
			if err := ctx.NeedNames(deps...); err != nil {
				return err
			}
		}
		for _, line := range recipe {
			if strings.TrimSpace(line) == "" {
				continue
			}
			ctx.WriteLog(buildgraph.LevelCommand, "%s", line)
			cmd := exec.Command("sh", "-c", line)
			cmd.Dir = dir
			cmd.Env = env
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
			if err := cmd.Run(); err != nil {
				return fmt.Errorf("recipe %q: %w", line, err)
			}
		}
		return nil
	}
}

func (c *Compiler) compileInclude(inc Include) error {
	path := inc.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.baseDir, path)
	}
	saved := c.baseDir
	c.baseDir = filepath.Dir(path)
	err := c.compileFile(path)
	c.baseDir = saved
	return err
}

func (c *Compiler) compileConditional(cond Conditional) error {
	for _, branch := range cond.Branches {
		if c.branchTaken(branch) {
			return c.compileStmts(branch.Body)
		}
	}
	return nil
}

func (c *Compiler) branchTaken(b CondBranch) bool {
	if b.Op == "else" {
		return true
	}
	left := c.vars.Expand(b.Left)
	right := c.vars.Expand(b.Right)
	switch b.Cmp {
	case "==":
		return left == right
	case "!=":
		return left != right
	default:
		return false
	}
}

func (c *Compiler) compileLoop(l Loop) error {
	items := strings.Fields(c.vars.Expand(l.List))
	saved := c.vars.Get(l.Var)
	for _, item := range items {
		c.vars.Set(l.Var, item)
		if err := c.compileStmts(l.Body); err != nil {
			return err
		}
	}
	c.vars.Set(l.Var, saved)
	return nil
}

func (c *Compiler) expandAll(ss []string) []string {
	if len(ss) == 0 {
		return nil
	}
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = c.vars.Expand(s)
	}
	return out
}

// lineOf extracts the source line number from whichever AST node n is,
// for diagnostics on a statement type this compiler doesn't expect.
func lineOf(n Node) int {
	switch s := n.(type) {
	case VarAssign:
		return s.Line
	case Rule:
		return s.Line
	case Include:
		return s.Line
	case Conditional:
		return s.Line
	case FuncDef:
		return s.Line
	case ConfigDef:
		return s.Line
	case Loop:
		return s.Line
	default:
		return 0
	}
}
