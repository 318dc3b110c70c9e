// Package config resolves runtime settings for the plar binaries once
// at startup: where the tool file and parameter library live, which
// interpreter launches tools, and the working directory runs start in.
package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	appDirName      = ".plar"
	toolsFileName   = "tools.json"
	libraryFileName = "params.db"

	// Environment overrides, checked before defaults.
	envToolsPath   = "PLAR_TOOLS"
	envLibraryPath = "PLAR_LIBRARY"
	envInterpreter = "PLAR_INTERPRETER"
)

// Config holds the resolved runtime settings.
type Config struct {
	// ToolsPath is the tool definition file (JSON or YAML).
	ToolsPath string
	// LibraryPath is the SQLite parameter library.
	LibraryPath string
	// Interpreter launches module and command mode tools.
	Interpreter string
	// WorkDir is the working directory child processes start in.
	WorkDir string
}

// Options carry explicit overrides, typically from CLI flags. Empty
// fields fall back to environment variables, then defaults.
type Options struct {
	ToolsPath   string
	LibraryPath string
	Interpreter string
	WorkDir     string
}

// Resolve builds a Config from explicit options, environment variables
// and platform defaults, in that order.
func Resolve(opts Options) (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("config: resolve user home: %w", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("config: resolve working directory: %w", err)
	}
	return ResolveFrom(opts, home, cwd)
}

// ResolveFrom is a testable variant of Resolve with the home and
// working directories injected.
func ResolveFrom(opts Options, homeDir, cwd string) (Config, error) {
	cfg := Config{
		ToolsPath:   firstNonEmpty(opts.ToolsPath, os.Getenv(envToolsPath), filepath.Join(homeDir, appDirName, toolsFileName)),
		LibraryPath: firstNonEmpty(opts.LibraryPath, os.Getenv(envLibraryPath), filepath.Join(homeDir, appDirName, libraryFileName)),
		WorkDir:     firstNonEmpty(opts.WorkDir, cwd),
	}

	// Interpreter stays empty when neither flag nor environment set it.
	// Only commands that actually launch a tool need one; they call
	// ResolveInterpreter at that point.
	cfg.Interpreter = firstNonEmpty(opts.Interpreter, os.Getenv(envInterpreter))
	return cfg, nil
}

// ResolveInterpreter returns the configured interpreter, falling back
// to a PATH search when none was set. Commands that never spawn a
// child should not call this; a missing interpreter must not block
// listing or validating tools.
func (c Config) ResolveInterpreter() (string, error) {
	if c.Interpreter != "" {
		return c.Interpreter, nil
	}
	return findInterpreter()
}

// findInterpreter locates a Python interpreter on PATH, preferring
// python3 over python.
func findInterpreter() (string, error) {
	for _, name := range []string{"python3", "python"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", errors.New("config: no python interpreter on PATH (set PLAR_INTERPRETER or --interpreter)")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
