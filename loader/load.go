// Package loader reads declarative tool files in JSON or YAML form.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/plarhq/plar/tool"
)

// LoadTools reads a tool file, decoding YAML or JSON by extension.
// Both the versioned envelope ({"tools": [...]}) and a bare array are
// accepted; unknown fields are dropped silently so legacy files keep
// loading.
func LoadTools(path string) ([]tool.Spec, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path from caller
	if err != nil {
		return nil, fmt.Errorf("loader: reading %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes tool file content. The format follows the path
// extension when it is conclusive, otherwise the content: JSON starts
// with an object or array, everything else parses as YAML.
func Parse(data []byte, path string) ([]tool.Spec, error) {
	if isYAML(path) || (!isJSON(path) && !looksLikeJSON(data)) {
		jsonData, err := yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("loader: parsing YAML %s: %w", path, err)
		}
		data = jsonData
	}

	var doc struct {
		Tools []tool.Spec `json:"tools"`
	}
	if err := json.Unmarshal(data, &doc); err == nil && doc.Tools != nil {
		return doc.Tools, nil
	}

	var specs []tool.Spec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("loader: parsing %s: %w", path, err)
	}
	return specs, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isJSON(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".json"
}

func looksLikeJSON(data []byte) bool {
	trimmed := strings.TrimSpace(string(data))
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}

// yamlToJSON normalizes YAML input to JSON so both formats share one
// decode path.
func yamlToJSON(data []byte) ([]byte, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return json.Marshal(normalizeYAML(raw))
}

// normalizeYAML converts map[any]any trees from yaml.v3 into
// map[string]any so encoding/json can marshal them.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprintf("%v", k)] = normalizeYAML(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeYAML(item)
		}
		return out
	default:
		return v
	}
}

// StarterTools is the tool list written when no tool file exists yet,
// a single demo tool so the CLI has something to show and run.
func StarterTools() []tool.Spec {
	return []tool.Spec{
		{
			Name:   "Sample Tool (Demo)",
			Mode:   tool.ModeCommand,
			Target: `{interpreter} -c "print('Hello from sample tool!')"`,
			Notes:  "Placeholder tool created automatically because the tool file was missing.",
		},
	}
}

// EnsureDefault creates a starter tool file at path when none exists.
// It reports whether the file was created.
func EnsureDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("loader: stat %s: %w", path, err)
	}

	doc := struct {
		Version string      `json:"version"`
		Tools   []tool.Spec `json:"tools"`
	}{Version: "1", Tools: StarterTools()}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return false, fmt.Errorf("loader: encode starter tools: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return false, fmt.Errorf("loader: create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return false, fmt.Errorf("loader: write starter tools: %w", err)
	}
	return true, nil
}
