package tool

import (
	"fmt"
)

// ValueBag holds the kind-coerced values collected for one invocation.
// Entry order follows the spec's parameter order, which drives the
// default module-mode argument order. The reserved output-directory
// override lives outside the named entries.
type ValueBag struct {
	names     []string
	values    map[string]any
	outputDir string
}

// NewValueBag builds a bag for spec, seeding every parameter from its
// default (coerced to the parameter's kind) and then applying
// overrides. Override keys that do not name a declared parameter are
// rejected; coercion failures carry ErrorCodeCoerceFailed.
func NewValueBag(spec Spec, overrides map[string]any) (*ValueBag, error) {
	bag := &ValueBag{values: make(map[string]any, len(spec.Parameters))}
	for _, p := range spec.Parameters {
		v, err := p.Kind.Coerce(p.Default)
		if err != nil {
			return nil, fmt.Errorf("parameter %q default: %w", p.Name, err)
		}
		bag.names = append(bag.names, p.Name)
		bag.values[p.Name] = v
	}
	for name, raw := range overrides {
		p, ok := spec.Parameter(name)
		if !ok {
			return nil, newError(ErrorCodeCoerceFailed,
				fmt.Sprintf("tool %q declares no parameter %q", spec.Name, name), nil)
		}
		v, err := p.Kind.Coerce(raw)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		bag.values[name] = v
	}
	return bag, nil
}

// Names returns the entry names in declaration order.
func (b *ValueBag) Names() []string {
	out := make([]string, len(b.names))
	copy(out, b.names)
	return out
}

// Get returns the coerced value for name.
func (b *ValueBag) Get(name string) (any, bool) {
	v, ok := b.values[name]
	return v, ok
}

// Set stores an already-coerced value for an existing entry, appending
// the name to the order when it is new.
func (b *ValueBag) Set(name string, v any) {
	if _, ok := b.values[name]; !ok {
		b.names = append(b.names, name)
	}
	b.values[name] = v
}

// SetOutputDir records the reserved output-directory override.
func (b *ValueBag) SetOutputDir(dir string) {
	b.outputDir = dir
}

// OutputDir returns the reserved output-directory override, or "".
func (b *ValueBag) OutputDir() string {
	return b.outputDir
}

// Len returns the number of named entries, excluding the reserved key.
func (b *ValueBag) Len() int {
	return len(b.names)
}

// CheckRequired verifies that every required parameter has a non-empty
// value. Empty strings and empty lists count as missing.
func (b *ValueBag) CheckRequired(spec Spec) error {
	for _, p := range spec.Parameters {
		if !p.Required {
			continue
		}
		v, ok := b.values[p.Name]
		if !ok {
			return newError(ErrorCodeMissingRequired,
				fmt.Sprintf("%q is required", p.DisplayLabel()), nil)
		}
		switch t := v.(type) {
		case string:
			if t == "" {
				return newError(ErrorCodeMissingRequired,
					fmt.Sprintf("%q is required", p.DisplayLabel()), nil)
			}
		case []string:
			if len(t) == 0 {
				return newError(ErrorCodeMissingRequired,
					fmt.Sprintf("%q is required", p.DisplayLabel()), nil)
			}
		}
	}
	return nil
}
