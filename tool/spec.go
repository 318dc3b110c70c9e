// Package tool defines the declarative tool model: specs, parameter
// kinds, value bags, and spec validation.
package tool

import (
	"fmt"
	"strings"
)

// Invocation modes supported by a tool spec.
const (
	ModeModule  = "module"
	ModeCommand = "command"
)

// ReservedOutputDir is the value-bag key holding the optional
// output-directory override. It is never emitted as a --key argument and
// is excluded from exported parameter records, as is every other
// underscore-prefixed key.
const ReservedOutputDir = "_output_dir"

// Parameter declares one typed input of a tool.
type Parameter struct {
	Name     string   `json:"name" yaml:"name"`
	Kind     Kind     `json:"kind" yaml:"kind"`
	Label    string   `json:"label,omitempty" yaml:"label,omitempty"`
	Default  any      `json:"default,omitempty" yaml:"default,omitempty"`
	Choices  []string `json:"choices,omitempty" yaml:"choices,omitempty"`
	Required bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Readonly bool     `json:"readonly,omitempty" yaml:"readonly,omitempty"`
}

// DisplayLabel returns the label, falling back to the parameter name.
func (p Parameter) DisplayLabel() string {
	if strings.TrimSpace(p.Label) != "" {
		return p.Label
	}
	return p.Name
}

// Spec describes one runnable tool. Specs are replaced whole on edit;
// the compiler and supervisor only ever read a snapshot.
type Spec struct {
	Name       string      `json:"name" yaml:"name"`
	Mode       string      `json:"invocation_mode" yaml:"invocation_mode"`
	Target     string      `json:"invocation_target" yaml:"invocation_target"`
	Script     string      `json:"script,omitempty" yaml:"script,omitempty"`
	Notes      string      `json:"notes,omitempty" yaml:"notes,omitempty"`
	Parameters []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Parameter returns the declared parameter with the given name.
func (s Spec) Parameter(name string) (Parameter, bool) {
	for _, p := range s.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// SplitModuleTarget splits a module-mode invocation target of the form
// "<module-path>:<entry-name>" on the first colon. Both halves must be
// non-empty after trimming.
func SplitModuleTarget(target string) (modulePath, entryName string, err error) {
	before, after, found := strings.Cut(target, ":")
	if !found {
		return "", "", newError(ErrorCodeInvalidTarget,
			fmt.Sprintf("module target must be '<module-path>:<entry-name>', got %q", target), nil)
	}
	modulePath = strings.TrimSpace(before)
	entryName = strings.TrimSpace(after)
	if modulePath == "" || entryName == "" {
		return "", "", newError(ErrorCodeInvalidTarget,
			fmt.Sprintf("module target has an empty module path or entry name: %q", target), nil)
	}
	return modulePath, entryName, nil
}
