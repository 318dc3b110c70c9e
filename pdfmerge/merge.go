package pdfmerge

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Input is one source document with its page selection.
type Input struct {
	// Path is the source PDF file.
	Path string
	// Pages selects pages per ParsePages; empty means all pages.
	Pages string
}

// Merge combines the selected pages of each input, in input order,
// into a single PDF at outputPath. Parent directories are created as
// needed.
func Merge(inputs []Input, outputPath string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("pdfmerge: no input files")
	}

	tempDir, err := os.MkdirTemp("", "pdfmerge-")
	if err != nil {
		return fmt.Errorf("pdfmerge: create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	parts := make([]string, 0, len(inputs))
	for i, input := range inputs {
		if _, err := os.Stat(input.Path); err != nil {
			return fmt.Errorf("pdfmerge: PDF not found: %s", input.Path)
		}
		count, err := api.PageCountFile(input.Path)
		if err != nil {
			return fmt.Errorf("pdfmerge: reading %s: %w", input.Path, err)
		}
		pages, err := ParsePages(input.Pages, count)
		if err != nil {
			return fmt.Errorf("pdfmerge: %s: %w", input.Path, err)
		}
		if len(pages) == 0 {
			continue
		}
		if len(pages) == count {
			parts = append(parts, input.Path)
			continue
		}
		part := filepath.Join(tempDir, fmt.Sprintf("part-%d.pdf", i))
		if err := api.CollectFile(input.Path, part, selectionStrings(pages), nil); err != nil {
			return fmt.Errorf("pdfmerge: selecting pages from %s: %w", input.Path, err)
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return fmt.Errorf("pdfmerge: page selections matched no pages")
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("pdfmerge: create output dir: %w", err)
		}
	}
	if len(parts) == 1 {
		// MergeCreateFile needs at least two inputs.
		return copyFile(parts[0], outputPath)
	}
	if err := api.MergeCreateFile(parts, outputPath, false, nil); err != nil {
		return fmt.Errorf("pdfmerge: writing %s: %w", outputPath, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src) // #nosec G304 -- paths from caller
	if err != nil {
		return fmt.Errorf("pdfmerge: reading %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, 0o600); err != nil {
		return fmt.Errorf("pdfmerge: writing %s: %w", dst, err)
	}
	return nil
}
