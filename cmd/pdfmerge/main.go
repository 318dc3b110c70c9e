package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plarhq/plar/pdfmerge"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pdfmerge",
	Short: "Combine up to two PDFs with page selection",
	// SilenceUsage prevents printing usage on every error
	SilenceUsage: true,
	RunE:         runMerge,
}

func init() {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("pdfmerge version %s\n", version))

	rootCmd.Flags().String("pdf1", "", "First PDF file")
	rootCmd.Flags().String("type1", "all", "Page selection for PDF1: 'all' or '1-3,5'")
	rootCmd.Flags().String("pdf2", "", "Second PDF file (optional)")
	rootCmd.Flags().String("type2", "all", "Page selection for PDF2: 'all' or '2,7-12'")
	rootCmd.Flags().String("output", "", "Output PDF path")
	_ = rootCmd.MarkFlagRequired("pdf1")
	_ = rootCmd.MarkFlagRequired("output")
}

func runMerge(cmd *cobra.Command, args []string) error {
	pdf1, _ := cmd.Flags().GetString("pdf1")
	type1, _ := cmd.Flags().GetString("type1")
	pdf2, _ := cmd.Flags().GetString("pdf2")
	type2, _ := cmd.Flags().GetString("type2")
	output, _ := cmd.Flags().GetString("output")

	inputs := []pdfmerge.Input{{Path: pdf1, Pages: type1}}
	// GUI front ends sometimes pass a quoted empty second path.
	if trimmed := strings.Trim(strings.TrimSpace(pdf2), `"`); trimmed != "" {
		inputs = append(inputs, pdfmerge.Input{Path: trimmed, Pages: type2})
	}

	if err := pdfmerge.Merge(inputs, output); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Combined PDF saved to: %s\n", output)
	return nil
}
