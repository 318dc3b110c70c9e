package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	otelapi "go.opentelemetry.io/otel"

	"github.com/plarhq/plar/compile"
	"github.com/plarhq/plar/config"
	plarotel "github.com/plarhq/plar/otel"
	"github.com/plarhq/plar/record"
	"github.com/plarhq/plar/supervise"
	"github.com/plarhq/plar/tool"
)

// NewRunCmd creates the "run" subcommand.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <tool>",
		Short: "Run a declared tool, streaming its output",
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}

	cmd.Flags().StringArray("set", nil, "Set a parameter value name=value (repeatable)")
	cmd.Flags().String("params", "", "Load saved parameters from a record file before --set overrides")
	cmd.Flags().Bool("force", false, "Apply saved parameters even when they were saved for another tool")
	cmd.Flags().String("output-dir", "", "Output directory passed to the tool")
	cmd.Flags().String("dir", "", "Working directory for the child process (default: current directory)")
	cmd.Flags().StringArray("env", nil, "Extra environment variable KEY=VALUE (repeatable)")
	cmd.Flags().Bool("save-params", false, "Save the resolved parameters to the library after launch")
	cmd.Flags().Duration("grace", 0, "Time between interrupt and kill when stopping (default 450ms)")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	specs, err := loadTools(cmd, cfg)
	if err != nil {
		return err
	}
	spec, found := findTool(specs, args[0])
	if !found {
		return exitError(exitValidation, "tool %q is not declared (see: plar list)", args[0])
	}

	result := tool.DefaultPipeline().ValidateSpec(spec)
	if result.HasErrors() {
		printDiagnostics(cmd.ErrOrStderr(), spec.Name, result.Diagnostics, "text")
		return exitError(exitValidation, "tool %q fails validation", spec.Name)
	}

	bag, err := buildRunBag(cmd, cfg, spec)
	if err != nil {
		return err
	}
	if err := bag.CheckRequired(spec); err != nil {
		return exitError(exitValidation, "%v", err)
	}

	interp, err := cfg.ResolveInterpreter()
	if err != nil {
		return exitError(exitRuntime, "%v", err)
	}
	argv, err := compile.Command(spec, bag, compile.Runtime{Interpreter: interp})
	if err != nil {
		return exitError(exitValidation, "%v", err)
	}

	if save, _ := cmd.Flags().GetBool("save-params"); save {
		if err := saveRunParams(cmd, cfg, spec, bag); err != nil {
			return err
		}
	}

	return executeRun(cmd, cfg, spec, argv)
}

// buildRunBag resolves the value bag for one run: defaults, then the
// saved record when --params names one, then --set overrides on top.
func buildRunBag(cmd *cobra.Command, cfg config.Config, spec tool.Spec) (*tool.ValueBag, error) {
	bag, err := tool.NewValueBag(spec, nil)
	if err != nil {
		return nil, exitError(exitValidation, "%v", err)
	}

	if recordPath, _ := cmd.Flags().GetString("params"); recordPath != "" {
		if err := applySavedParams(cmd, spec, bag, recordPath); err != nil {
			return nil, err
		}
	}

	setPairs, _ := cmd.Flags().GetStringArray("set")
	overrides, err := parseSetFlags(setPairs)
	if err != nil {
		return nil, err
	}
	for name, raw := range overrides {
		p, ok := spec.Parameter(name)
		if !ok {
			return nil, exitError(exitValidation, "tool %q declares no parameter %q", spec.Name, name)
		}
		v, err := p.Kind.Coerce(raw)
		if err != nil {
			return nil, exitError(exitValidation, "parameter %q: %v", name, err)
		}
		bag.Set(name, v)
	}

	if outputDir, _ := cmd.Flags().GetString("output-dir"); outputDir != "" {
		bag.SetOutputDir(outputDir)
	}
	return bag, nil
}

func applySavedParams(cmd *cobra.Command, spec tool.Spec, bag *tool.ValueBag, recordPath string) error {
	data, err := os.ReadFile(recordPath) // #nosec G304 -- path from flag
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return exitError(exitFileNotFound, "record file not found: %s", recordPath)
		}
		return exitError(exitRuntime, "reading saved parameters: %v", err)
	}
	rec, err := record.Decode(data)
	if err != nil {
		return exitError(exitValidation, "%v", err)
	}

	force, _ := cmd.Flags().GetBool("force")
	if saved, mismatch := rec.Mismatch(spec); mismatch && !force {
		return exitError(exitValidation,
			"saved parameters belong to tool %q, not %q (pass --force to apply anyway)", saved, spec.Name)
	}
	if err := record.Apply(rec, spec, bag); err != nil {
		return exitError(exitValidation, "applying saved parameters: %v", err)
	}
	return nil
}

func saveRunParams(cmd *cobra.Command, cfg config.Config, spec tool.Spec, bag *tool.ValueBag) error {
	lib, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer lib.Close()

	id, err := lib.Save(cmd.Context(), record.Export(spec, bag, time.Now()))
	if err != nil {
		return exitError(exitRuntime, "saving parameters: %v", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "saved parameters: %s\n", id)
	return nil
}

// executeRun launches argv under the supervisor, streams merged output
// to stdout and translates the child's exit into the process exit code.
// An interrupt requests a cooperative stop; the supervisor escalates to
// a kill after the grace period.
func executeRun(cmd *cobra.Command, cfg config.Config, spec tool.Spec, argv []string) error {
	grace, _ := cmd.Flags().GetDuration("grace")
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.WorkDir
	}
	envPairs, _ := cmd.Flags().GetStringArray("env")
	env, err := parseEnvFlags(envPairs)
	if err != nil {
		return err
	}

	observer := newRunObserver()
	sup := supervise.New(supervise.Config{Grace: grace, Logger: commandLogger(cmd)})

	started := time.Now()
	run, err := sup.Start(argv, supervise.StartOptions{Dir: dir, Env: env})
	if err != nil {
		return exitError(exitRuntime, "starting tool: %v", err)
	}

	var stopped atomic.Bool
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		for range signals {
			stopped.Store(true)
			run.Stop()
		}
	}()

	errOut := cmd.ErrOrStderr()
	go func() {
		for err := range run.Errors() {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
	}()

	out := cmd.OutOrStdout()
	for line := range run.Lines() {
		fmt.Fprintln(out, line.Text)
	}
	exit := <-run.Done()

	observer.ObserveRun(plarotel.RunObservation{
		ToolName: spec.Name,
		Mode:     string(spec.Mode),
		ExitCode: exit.Code,
		Stopped:  stopped.Load(),
		Duration: time.Since(started),
	})

	return exitStatus(errOut, exit)
}

func newRunObserver() *plarotel.RunObserver {
	observer, err := plarotel.NewRunObserver(otelapi.Meter("plar"), otelapi.Tracer("plar"))
	if err != nil {
		// Metrics are best effort; a nil observer records nothing.
		return nil
	}
	return observer
}

// exitStatus maps a child exit to the plar process exit code. Signal
// deaths use the shell convention 128+signal; launch failures exit
// with the runtime code.
func exitStatus(errOut io.Writer, exit supervise.Exit) error {
	switch {
	case exit.Code == supervise.LaunchFailureCode && exit.Err != nil:
		return exitError(exitRuntime, "launch failed: %v", exit.Err)
	case exit.Code < 0:
		sig := -exit.Code
		fmt.Fprintf(errOut, "process terminated by signal %d\n", sig)
		return exitError(128+sig, "terminated by signal %d", sig)
	case exit.Code != 0:
		return exitError(exit.Code, "process exited with code %d", exit.Code)
	default:
		return nil
	}
}
