// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

package buildgraph

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	homedir "github.com/mitchellh/go-homedir"
)

// Options configures a Run (§3). Zero-value Options is invalid — use
// DefaultOptions or LoadOptions to obtain a usable value.
type Options struct {
	ProjectRoot  string
	Threads      int
	ConsoleLevel Level
	FileLevel    Level
	FileLogPath  string
	CustomLogger Logger
	Want         []string
	FailOnError  bool
	DryRun       bool
	ConfigFile   string
}

// DefaultOptions returns an Options with the documented defaults:
// threads=4, project root the current directory, console level Message,
// file logging disabled.
func DefaultOptions() Options {
	wd, _ := os.Getwd()
	return Options{
		ProjectRoot:  wd,
		Threads:      4,
		ConsoleLevel: LevelMessage,
		FileLevel:    LevelVerbose,
	}
}

// Validate checks the invariants Options must satisfy before a Run.
func (o Options) Validate() error {
	if o.Threads <= 0 {
		return &ConfigError{Field: "threads", Err: fmt.Errorf("must be positive, got %d", o.Threads)}
	}
	if o.ProjectRoot == "" {
		return &ConfigError{Field: "project_root", Err: fmt.Errorf("must not be empty")}
	}
	return nil
}

// tomlOptions mirrors the subset of Options that can be expressed in a
// TOML config file (Logger and Want-override are Go-API-only).
type tomlOptions struct {
	ProjectRoot  string `toml:"project_root"`
	Threads      int    `toml:"threads"`
	ConsoleLevel string `toml:"console_level"`
	FileLevel    string `toml:"file_level"`
	FileLogPath  string `toml:"file_log_path"`
	FailOnError  bool   `toml:"fail_on_error"`
}

// LoadOptions layers configuration the same way
// emergent-company-specmcp/internal/config does: defaults, then an
// optional TOML file, then environment variables, in increasing
// precedence. overrides are applied last of all (highest precedence),
// so a Go caller's explicit fields always win.
func LoadOptions(configFile string, overrides Options) (Options, error) {
	opts := DefaultOptions()

	path := resolveConfigPath(configFile)
	if path != "" {
		var t tomlOptions
		if _, err := toml.DecodeFile(path, &t); err != nil {
			return Options{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
		applyTOML(&opts, t)
	}

	applyEnv(&opts)
	applyOverrides(&opts, overrides)

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// resolveConfigPath mirrors emergent-company-specmcp's search order:
// explicit path, then $BUILDGRAPH_CONFIG, then ./buildgraph.toml, then
// ~/.config/buildgraph/buildgraph.toml. Returns "" if none exist
// (config file is optional).
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv("BUILDGRAPH_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("buildgraph.toml"); err == nil {
		return "buildgraph.toml"
	}
	if home, err := homedir.Dir(); err == nil {
		p := filepath.Join(home, ".config", "buildgraph", "buildgraph.toml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func applyTOML(o *Options, t tomlOptions) {
	if t.ProjectRoot != "" {
		o.ProjectRoot = t.ProjectRoot
	}
	if t.Threads > 0 {
		o.Threads = t.Threads
	}
	if lvl, ok := parseLevel(t.ConsoleLevel); ok {
		o.ConsoleLevel = lvl
	}
	if lvl, ok := parseLevel(t.FileLevel); ok {
		o.FileLevel = lvl
	}
	if t.FileLogPath != "" {
		o.FileLogPath = t.FileLogPath
	}
	o.FailOnError = o.FailOnError || t.FailOnError
}

func applyEnv(o *Options) {
	if v := os.Getenv("BUILDGRAPH_PROJECT_ROOT"); v != "" {
		o.ProjectRoot = v
	}
	if v := os.Getenv("BUILDGRAPH_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			o.Threads = n
		}
	}
	if v := os.Getenv("BUILDGRAPH_CONSOLE_LEVEL"); v != "" {
		if lvl, ok := parseLevel(v); ok {
			o.ConsoleLevel = lvl
		}
	}
	if v := os.Getenv("BUILDGRAPH_FILE_LEVEL"); v != "" {
		if lvl, ok := parseLevel(v); ok {
			o.FileLevel = lvl
		}
	}
	if v := os.Getenv("BUILDGRAPH_FILE_LOG_PATH"); v != "" {
		o.FileLogPath = v
	}
	if v := os.Getenv("BUILDGRAPH_FAIL_ON_ERROR"); v != "" {
		o.FailOnError = v == "true" || v == "1"
	}
}

// applyOverrides copies every non-zero field of overrides onto o. This
// is how a Go caller's explicit Options always wins over file/env
// config.
func applyOverrides(o *Options, overrides Options) {
	if overrides.ProjectRoot != "" {
		o.ProjectRoot = overrides.ProjectRoot
	}
	if overrides.Threads > 0 {
		o.Threads = overrides.Threads
	}
	// LevelError is the zero value, so an override of exactly LevelError
	// is indistinguishable from "unset" here; callers who need that
	// exact level should set it after LoadOptions returns instead.
	if overrides.ConsoleLevel != 0 {
		o.ConsoleLevel = overrides.ConsoleLevel
	}
	if overrides.FileLevel != 0 {
		o.FileLevel = overrides.FileLevel
	}
	if overrides.FileLogPath != "" {
		o.FileLogPath = overrides.FileLogPath
	}
	if overrides.CustomLogger != nil {
		o.CustomLogger = overrides.CustomLogger
	}
	if len(overrides.Want) > 0 {
		o.Want = overrides.Want
	}
	if overrides.FailOnError {
		o.FailOnError = true
	}
	if overrides.DryRun {
		o.DryRun = true
	}
	if overrides.ConfigFile != "" {
		o.ConfigFile = overrides.ConfigFile
	}
}

func parseLevel(s string) (Level, bool) {
	switch s {
	case "error":
		return LevelError, true
	case "warn":
		return LevelWarn, true
	case "message":
		return LevelMessage, true
	case "command":
		return LevelCommand, true
	case "normal":
		return LevelNormal, true
	case "verbose":
		return LevelVerbose, true
	case "chatty":
		return LevelChatty, true
	default:
		return 0, false
	}
}

// MakeTarget resolves a bare name to a Target (§4.1). A name that
// matches a registered phony pattern resolves to a Phony target even
// if a same-named file also exists or matches a file pattern — phony
// precedence is unconditional (see DESIGN.md's Open Question
// resolution), not limited to top-level want names.
func MakeTarget(reg *RuleRegistry, opts Options, name string) Target {
	if reg.IsPhonyName(name) {
		return PhonyTarget(name)
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(opts.ProjectRoot, name)
	}
	return FileTarget(path)
}
