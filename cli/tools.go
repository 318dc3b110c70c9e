package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/plarhq/plar/tool"
)

// NewListCmd creates the "list" subcommand.
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List declared tools",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	specs, err := loadTools(cmd, cfg)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(writer, "NAME\tMODE\tTARGET\tPARAMS")
	for _, spec := range specs {
		target := spec.Target
		if spec.Mode == tool.ModeCommand && spec.Script != "" {
			target = spec.Script
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%d\n", spec.Name, spec.Mode, target, len(spec.Parameters))
	}
	return writer.Flush()
}

// NewShowCmd creates the "show" subcommand.
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <tool>",
		Short: "Show a tool definition",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
	cmd.Flags().Bool("params", false, "Show parameters only")
	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
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

	paramsOnly, _ := cmd.Flags().GetBool("params")
	out := cmd.OutOrStdout()
	if paramsOnly {
		writer := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
		fmt.Fprintln(writer, "NAME\tKIND\tREQUIRED\tDEFAULT\tCHOICES")
		for _, p := range spec.Parameters {
			def := "-"
			if p.Default != nil {
				def = fmt.Sprintf("%v", p.Default)
			}
			choices := "-"
			if len(p.Choices) > 0 {
				choices = strings.Join(p.Choices, ",")
			}
			fmt.Fprintf(writer, "%s\t%s\t%t\t%s\t%s\n", p.Name, p.Kind, p.Required, def, choices)
		}
		return writer.Flush()
	}

	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return exitError(exitRuntime, "encoding tool: %v", err)
	}
	_, _ = out.Write(append(data, '\n'))
	return nil
}
