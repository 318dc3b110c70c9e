package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/plarhq/plar/tool"
)

// NewValidateCmd creates the "validate" subcommand.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [tool]",
		Short: "Validate declared tools without running them",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runValidate,
	}

	cmd.Flags().String("format", "text", "Output format: text | json")
	cmd.Flags().Bool("strict", false, "Treat warnings as errors")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	strict, _ := cmd.Flags().GetBool("strict")
	out := cmd.OutOrStdout()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	specs, err := loadTools(cmd, cfg)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		spec, found := findTool(specs, args[0])
		if !found {
			return exitError(exitValidation, "tool %q is not declared", args[0])
		}
		specs = []tool.Spec{spec}
	}

	pipeline := tool.DefaultPipeline()
	failed := false
	warned := false
	for _, spec := range specs {
		result := pipeline.ValidateSpec(spec)
		printDiagnostics(out, spec.Name, result.Diagnostics, format)
		if result.HasErrors() {
			failed = true
		}
		for _, d := range result.Diagnostics {
			if d.Severity == tool.SeverityWarning {
				warned = true
			}
		}
	}

	if failed || (strict && warned) {
		return exitError(exitValidation, "validation failed")
	}
	fmt.Fprintf(out, "%d tool(s) valid.\n", len(specs))
	return nil
}

func printDiagnostics(out io.Writer, toolName string, diags []tool.Diagnostic, format string) {
	if len(diags) == 0 {
		return
	}
	if format == "json" {
		payload := struct {
			Tool        string            `json:"tool"`
			Diagnostics []tool.Diagnostic `json:"diagnostics"`
		}{Tool: toolName, Diagnostics: diags}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err == nil {
			fmt.Fprintln(out, string(data))
		}
		return
	}
	for _, d := range diags {
		fmt.Fprintf(out, "%s: [%s] %s: %s\n", toolName, d.Severity, d.Code, d.Message)
	}
}
