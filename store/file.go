// Package store persists the declared tool list in a local JSON file.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/plarhq/plar/tool"
)

const fileStoreVersionV1 = "1"

var errEmptyStorePath = errors.New("store: file path is empty")

// fileDocument is the on-disk envelope. Loads also accept a bare array
// of tool specs for compatibility with hand-written config files.
type fileDocument struct {
	Version string      `json:"version"`
	Tools   []tool.Spec `json:"tools"`
}

// FileStore persists tool specs in a local JSON file. The tool list is
// order-significant on disk but served name-sorted by List.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore creates a file-backed tool store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// List returns all tool specs in name-sorted order. A missing file
// yields an empty list.
func (s *FileStore) List(ctx context.Context) ([]tool.Spec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.New("store: file store is nil")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

// Get returns a spec by tool name.
func (s *FileStore) Get(ctx context.Context, name string) (tool.Spec, bool, error) {
	specs, err := s.List(ctx)
	if err != nil {
		return tool.Spec{}, false, err
	}
	for _, spec := range specs {
		if spec.Name == name {
			return spec, true, nil
		}
	}
	return tool.Spec{}, false, nil
}

// Upsert inserts or replaces a spec by name. Edits are whole-object
// replacements; the store never patches a spec in place.
func (s *FileStore) Upsert(ctx context.Context, spec tool.Spec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return errors.New("store: file store is nil")
	}
	if strings.TrimSpace(spec.Name) == "" {
		return errors.New("store: tool name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	specs, err := s.load()
	if err != nil {
		return err
	}

	index := -1
	for i := range specs {
		if specs[i].Name == spec.Name {
			index = i
			break
		}
	}
	if index >= 0 {
		specs[index] = spec
	} else {
		specs = append(specs, spec)
	}
	return s.save(specs)
}

// Delete removes a spec by name. Deleting a missing name is a no-op.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return errors.New("store: file store is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	specs, err := s.load()
	if err != nil {
		return err
	}

	filtered := make([]tool.Spec, 0, len(specs))
	for _, spec := range specs {
		if spec.Name != name {
			filtered = append(filtered, spec)
		}
	}
	return s.save(filtered)
}

// Replace overwrites the whole tool list.
func (s *FileStore) Replace(ctx context.Context, specs []tool.Spec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return errors.New("store: file store is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(specs)
}

func (s *FileStore) load() ([]tool.Spec, error) {
	if strings.TrimSpace(s.path) == "" {
		return nil, errEmptyStorePath
	}

	// #nosec G304 -- path is configured by caller and local.
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []tool.Spec{}, nil
		}
		return nil, fmt.Errorf("store: read tools: %w", err)
	}
	if len(data) == 0 {
		return []tool.Spec{}, nil
	}

	// Unknown and legacy fields decode away silently by design: old
	// files must keep loading.
	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err == nil && doc.Tools != nil {
		sortSpecs(doc.Tools)
		return doc.Tools, nil
	}

	var specs []tool.Spec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("store: decode tools: %w", err)
	}
	sortSpecs(specs)
	return specs, nil
}

func (s *FileStore) save(specs []tool.Spec) error {
	if strings.TrimSpace(s.path) == "" {
		return errEmptyStorePath
	}

	sortSpecs(specs)
	doc := fileDocument{Version: fileStoreVersionV1, Tools: specs}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode tools: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("store: create store dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("store: write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("store: replace store file: %w", err)
	}
	return nil
}

func sortSpecs(specs []tool.Spec) {
	slices.SortFunc(specs, func(a, b tool.Spec) int {
		return strings.Compare(a.Name, b.Name)
	})
}
