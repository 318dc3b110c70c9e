package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plarhq/plar/tool"
)

// NewScaffoldCmd creates the "scaffold" subcommand.
func NewScaffoldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scaffold <tool>",
		Short: "Generate script scaffolding for a tool's parameters",
		Long:  "Prints an argparse block, a sample command line, a runner template, the placeholder table and a sample inputs JSON derived from the tool's parameters.",
		Args:  cobra.ExactArgs(1),
		RunE:  runScaffold,
	}
	cmd.Flags().String("section", "", "Print one section only: argparse | cli | template | placeholders | inputs")
	return cmd
}

func runScaffold(cmd *cobra.Command, args []string) error {
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
		return exitError(exitValidation, "tool %q is not declared", args[0])
	}

	snippets := tool.GenerateSnippets(spec)
	out := cmd.OutOrStdout()

	section, _ := cmd.Flags().GetString("section")
	switch section {
	case "argparse":
		fmt.Fprintln(out, snippets.Argparse)
	case "cli":
		fmt.Fprintln(out, snippets.SampleCLI)
	case "template":
		fmt.Fprintln(out, snippets.Template)
	case "placeholders":
		fmt.Fprintln(out, snippets.Placeholders)
	case "inputs":
		fmt.Fprintln(out, snippets.InputsJSON)
	case "":
		fmt.Fprintf(out, "# argparse\n%s\n", snippets.Argparse)
		fmt.Fprintf(out, "# sample command line\n%s\n\n", snippets.SampleCLI)
		fmt.Fprintf(out, "# runner template\n%s\n\n", snippets.Template)
		fmt.Fprintf(out, "# placeholders\n%s\n", snippets.Placeholders)
		fmt.Fprintf(out, "# inputs JSON\n%s\n", snippets.InputsJSON)
	default:
		return exitError(exitValidation, "unknown section %q", section)
	}
	return nil
}
