// Copyright 2026 The buildgraph Authors
// SPDX-License-Identifier: Apache-2.0

// Command buildgraph is a CLI front end: it compiles a textual mkfile
// script (internal/mkfile) and runs it against the engine (§6).
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcelocantos/buildgraph"
	"github.com/marcelocantos/buildgraph/internal/mkfile"
)

var (
	mkfilePath   string
	threads      int
	consoleLevel string
	fileLevel    string
	fileLogPath  string
	configFile   string
	failOnError  bool
	dryRun       bool
)

var rootCmd = &cobra.Command{
	Use:   "buildgraph [targets...] [name=value...]",
	Short: "buildgraph runs a rule-based build script",
	Long: `buildgraph compiles a textual rule file and builds the requested
targets, deduplicating concurrent work across a fixed pool of workers.`,
	RunE: runBuild,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&mkfilePath, "file", "f", "mkfile", "script to read")
	flags.IntVarP(&threads, "threads", "j", 0, "worker count (0 = use config/default)")
	flags.StringVar(&consoleLevel, "console-level", "", "console log verbosity (error|warn|message|command|normal|verbose|chatty)")
	flags.StringVar(&fileLevel, "file-level", "", "file log verbosity")
	flags.StringVar(&fileLogPath, "log-file", "", "path to write a log file to")
	flags.StringVarP(&configFile, "config", "c", "", "path to a buildgraph.toml config file")
	flags.BoolVar(&failOnError, "fail-on-error", true, "return a non-zero exit status on build failure")
	flags.BoolVarP(&dryRun, "dry-run", "n", false, "print what would run without executing recipes")
}

func runBuild(cmd *cobra.Command, args []string) error {
	var want, overrides []string
	for _, a := range args {
		if name, _, ok := strings.Cut(a, "="); ok && isVarName(name) {
			overrides = append(overrides, a)
			continue
		}
		want = append(want, a)
	}

	overrideOpts := buildgraph.Options{
		Threads:     threads,
		FailOnError: failOnError,
		DryRun:      dryRun,
		ConfigFile:  configFile,
		Want:        want,
	}
	if lvl, ok := parseLevelFlag(consoleLevel); ok {
		overrideOpts.ConsoleLevel = lvl
	}
	if lvl, ok := parseLevelFlag(fileLevel); ok {
		overrideOpts.FileLevel = lvl
	}
	if fileLogPath != "" {
		overrideOpts.FileLogPath = fileLogPath
	}

	opts, err := buildgraph.LoadOptions(configFile, overrideOpts)
	if err != nil {
		return err
	}

	b := buildgraph.NewBuilder(opts)
	compiler := mkfile.NewCompiler(b, wdOr("."))
	for _, kv := range overrides {
		name, value, _ := strings.Cut(kv, "=")
		compiler.SetVar(name, value)
	}
	if err := compiler.CompileFile(mkfilePath); err != nil {
		return fmt.Errorf("compiling %s: %w", mkfilePath, err)
	}

	return b.Run()
}

func isVarName(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		if i == 0 && !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
			return false
		}
		if i > 0 && !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}

func wdOr(fallback string) string {
	wd, err := os.Getwd()
	if err != nil {
		return fallback
	}
	return wd
}

func parseLevelFlag(s string) (buildgraph.Level, bool) {
	switch s {
	case "error":
		return buildgraph.LevelError, true
	case "warn":
		return buildgraph.LevelWarn, true
	case "message":
		return buildgraph.LevelMessage, true
	case "command":
		return buildgraph.LevelCommand, true
	case "normal":
		return buildgraph.LevelNormal, true
	case "verbose":
		return buildgraph.LevelVerbose, true
	case "chatty":
		return buildgraph.LevelChatty, true
	default:
		return 0, false
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
