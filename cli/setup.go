// Package cli implements the plar command surface: listing, showing,
// validating and running declared tools, plus parameter record import,
// export and history.
package cli

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plarhq/plar/config"
	"github.com/plarhq/plar/loader"
	"github.com/plarhq/plar/record"
	"github.com/plarhq/plar/store"
	"github.com/plarhq/plar/tool"
)

// RegisterPersistentFlags adds the flags shared by every subcommand to
// the root command.
func RegisterPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("tools", "", "Path to tool file (default: ~/.plar/tools.json)")
	cmd.PersistentFlags().String("library", "", "Path to the parameter library (default: ~/.plar/params.db)")
	cmd.PersistentFlags().String("interpreter", "", "Interpreter used to launch tools (default: python3 on PATH)")
	cmd.PersistentFlags().Bool("verbose", false, "Enable verbose/debug logging")
}

// commandLogger builds the logger for one invocation, honoring
// --verbose.
func commandLogger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return slog.Default()
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// resolveConfig builds the runtime configuration from persistent flags
// and the environment.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	toolsPath, _ := cmd.Flags().GetString("tools")
	libraryPath, _ := cmd.Flags().GetString("library")
	interpreter, _ := cmd.Flags().GetString("interpreter")

	cfg, err := config.Resolve(config.Options{
		ToolsPath:   toolsPath,
		LibraryPath: libraryPath,
		Interpreter: interpreter,
	})
	if err != nil {
		return config.Config{}, exitError(exitRuntime, "%v", err)
	}
	return cfg, nil
}

// loadTools reads the configured tool file, creating the starter file
// first when none exists. YAML files go through the loader; JSON files
// are served by the file store, which also backs writes.
func loadTools(cmd *cobra.Command, cfg config.Config) ([]tool.Spec, error) {
	if _, err := loader.EnsureDefault(cfg.ToolsPath); err != nil {
		return nil, exitError(exitRuntime, "%v", err)
	}
	if strings.HasSuffix(cfg.ToolsPath, ".yaml") || strings.HasSuffix(cfg.ToolsPath, ".yml") {
		specs, err := loader.LoadTools(cfg.ToolsPath)
		if err != nil {
			return nil, exitError(exitRuntime, "%v", err)
		}
		return specs, nil
	}
	specs, err := store.NewFileStore(cfg.ToolsPath).List(cmd.Context())
	if err != nil {
		return nil, exitError(exitRuntime, "%v", err)
	}
	return specs, nil
}

// findTool resolves a tool by name, trying an exact match first and a
// case-insensitive match second.
func findTool(specs []tool.Spec, name string) (tool.Spec, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	for _, s := range specs {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return tool.Spec{}, false
}

// openLibrary opens the parameter record library for commands that
// need it.
func openLibrary(cfg config.Config) (*record.Library, error) {
	lib, err := record.OpenLibrary(cfg.LibraryPath)
	if err != nil {
		return nil, exitError(exitRuntime, "opening parameter library: %v", err)
	}
	return lib, nil
}

// parseSetFlags turns repeated --set name=value flags into an override
// map for the value bag.
func parseSetFlags(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	overrides := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, exitError(exitValidation, "invalid --set %q, want name=value", pair)
		}
		overrides[strings.TrimSpace(name)] = value
	}
	return overrides, nil
}

// parseEnvFlags turns repeated --env KEY=VALUE flags into a map.
func parseEnvFlags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, exitError(exitValidation, "invalid --env %q, want KEY=VALUE", pair)
		}
		env[strings.TrimSpace(key)] = value
	}
	return env, nil
}
