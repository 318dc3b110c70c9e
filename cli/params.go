package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/plarhq/plar/record"
	"github.com/plarhq/plar/tool"
)

// NewParamsCmd creates the "params" command group for the saved
// parameter library.
func NewParamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Manage saved parameter records",
	}
	cmd.AddCommand(newParamsExportCmd())
	cmd.AddCommand(newParamsImportCmd())
	cmd.AddCommand(newParamsHistoryCmd())
	cmd.AddCommand(newParamsDeleteCmd())
	return cmd
}

func newParamsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <tool>",
		Short: "Write a tool's parameter defaults as a record file",
		Args:  cobra.ExactArgs(1),
		RunE:  runParamsExport,
	}
	cmd.Flags().StringArray("set", nil, "Set a parameter value name=value (repeatable)")
	cmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")
	return cmd
}

func runParamsExport(cmd *cobra.Command, args []string) error {
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

	setPairs, _ := cmd.Flags().GetStringArray("set")
	overrides, err := parseSetFlags(setPairs)
	if err != nil {
		return err
	}
	bag, err := tool.NewValueBag(spec, overrides)
	if err != nil {
		return exitError(exitValidation, "%v", err)
	}

	data, err := record.Export(spec, bag, time.Now()).Encode()
	if err != nil {
		return exitError(exitRuntime, "encoding record: %v", err)
	}

	if outputPath, _ := cmd.Flags().GetString("output"); outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0o600); err != nil {
			return exitError(exitRuntime, "writing record: %v", err)
		}
		return nil
	}
	_, _ = cmd.OutOrStdout().Write(data)
	return nil
}

func newParamsImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <tool> <file>",
		Short: "Import a record file into the parameter library",
		Args:  cobra.ExactArgs(2),
		RunE:  runParamsImport,
	}
	cmd.Flags().Bool("force", false, "Import even when the record was saved for another tool")
	return cmd
}

func runParamsImport(cmd *cobra.Command, args []string) error {
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

	data, err := os.ReadFile(args[1]) // #nosec G304 -- path from argument
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return exitError(exitFileNotFound, "file not found: %s", args[1])
		}
		return exitError(exitRuntime, "reading record: %v", err)
	}

	rec, err := record.Decode(data)
	if err != nil {
		return exitError(exitValidation, "%v", err)
	}
	force, _ := cmd.Flags().GetBool("force")
	if saved, mismatch := rec.Mismatch(spec); mismatch && !force {
		return exitError(exitValidation,
			"record belongs to tool %q, not %q (pass --force to import anyway)", saved, spec.Name)
	}
	rec.Meta.Tool = spec.Name

	lib, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer lib.Close()

	id, err := lib.Save(cmd.Context(), rec)
	if err != nil {
		return exitError(exitRuntime, "saving record: %v", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported record %s for tool %q\n", id, rec.Meta.Tool)
	return nil
}

func newParamsHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <tool>",
		Short: "List saved parameter records for a tool, newest first",
		Args:  cobra.ExactArgs(1),
		RunE:  runParamsHistory,
	}
}

func runParamsHistory(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	lib, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer lib.Close()

	entries, err := lib.List(cmd.Context(), args[0])
	if err != nil {
		return exitError(exitRuntime, "listing records: %v", err)
	}

	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tSAVED\tVALUES")
	for _, entry := range entries {
		fmt.Fprintf(writer, "%s\t%s\t%d\n", entry.ID, entry.SavedAt.Local().Format("2006-01-02 15:04:05"), len(entry.Record.Values))
	}
	return writer.Flush()
}

func newParamsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved parameter record",
		Args:  cobra.ExactArgs(1),
		RunE:  runParamsDelete,
	}
}

func runParamsDelete(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	lib, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer lib.Close()

	if err := lib.Delete(cmd.Context(), args[0]); err != nil {
		return exitError(exitRuntime, "deleting record: %v", err)
	}
	return nil
}
