// Package pdfmerge combines PDF files with per-file page selection.
package pdfmerge

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParsePages expands a page spec against a document of pageCount pages
// into sorted, unique 1-based page numbers.
//
// Accepted forms: "all", "1-end" or "end" (the whole document), single
// pages ("5"), inclusive ranges ("7-9") and comma lists of both
// ("1-3,5,7-9"). Range bounds are swapped when reversed and clamped to
// the document; a single page outside the document is an error.
func ParsePages(spec string, pageCount int) ([]int, error) {
	if pageCount < 0 {
		return nil, fmt.Errorf("pdfmerge: negative page count %d", pageCount)
	}
	trimmed := strings.ToLower(strings.TrimSpace(spec))
	if trimmed == "" || trimmed == "all" || trimmed == "1-end" || trimmed == "end" {
		return allPages(pageCount), nil
	}

	selected := make(map[int]struct{})
	for _, part := range strings.Split(trimmed, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			a, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil {
				return nil, fmt.Errorf("pdfmerge: invalid range %q", part)
			}
			b, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("pdfmerge: invalid range %q", part)
			}
			if a > b {
				a, b = b, a
			}
			if a < 1 {
				a = 1
			}
			if b > pageCount {
				b = pageCount
			}
			for page := a; page <= b; page++ {
				selected[page] = struct{}{}
			}
			continue
		}
		page, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("pdfmerge: invalid page %q", part)
		}
		if page < 1 || page > pageCount {
			return nil, fmt.Errorf("pdfmerge: page %d out of range 1..%d", page, pageCount)
		}
		selected[page] = struct{}{}
	}

	pages := make([]int, 0, len(selected))
	for page := range selected {
		pages = append(pages, page)
	}
	sort.Ints(pages)
	return pages, nil
}

func allPages(pageCount int) []int {
	pages := make([]int, pageCount)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// selectionStrings renders pages for a page-selection API.
func selectionStrings(pages []int) []string {
	out := make([]string, len(pages))
	for i, page := range pages {
		out[i] = strconv.Itoa(page)
	}
	return out
}
