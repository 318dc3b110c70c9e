// Package record converts value bags to and from portable parameter
// records so a filled-in form can be reused across runs and sessions.
package record

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/plarhq/plar/tool"
)

// AppName tags exported records with their producing application.
const AppName = "plar"

// FormatVersion is the current record format version.
const FormatVersion = 1

const timestampLayout = "2006-01-02 15:04:05"

// Meta carries the provenance of an exported record.
type Meta struct {
	Tool       string `json:"tool"`
	RunnerMode string `json:"runner_mode"`
	Runner     string `json:"runner"`
	Script     string `json:"script"`
	Timestamp  string `json:"timestamp"`
	App        string `json:"app"`
	Version    int    `json:"version"`
}

// Record is the portable serialized form of a value bag plus meta.
type Record struct {
	Meta   Meta           `json:"meta"`
	Values map[string]any `json:"values"`
}

// Export captures the bag's named values for spec into a record.
// Underscore-prefixed keys, including the reserved output-directory
// key, are excluded.
func Export(spec tool.Spec, bag *tool.ValueBag, now time.Time) Record {
	values := make(map[string]any, bag.Len())
	for _, name := range bag.Names() {
		if strings.HasPrefix(name, "_") {
			continue
		}
		if v, ok := bag.Get(name); ok {
			values[name] = v
		}
	}
	return Record{
		Meta: Meta{
			Tool:       spec.Name,
			RunnerMode: spec.Mode,
			Runner:     spec.Target,
			Script:     spec.Script,
			Timestamp:  now.Format(timestampLayout),
			App:        AppName,
			Version:    FormatVersion,
		},
		Values: values,
	}
}

// Encode renders the record as indented JSON.
func (r Record) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("record: encode: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a record payload. Both the meta/values envelope and a
// bare values object are accepted.
func Decode(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err == nil && rec.Values != nil {
		return rec, nil
	}

	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return Record{}, fmt.Errorf("record: decode: %w", err)
	}
	return Record{Values: values}, nil
}

// Mismatch reports whether the record was saved for a different tool
// than target. A blank recorded tool name never mismatches. The caller
// must surface a true result as an explicit confirmation decision
// before applying values.
func (r Record) Mismatch(target tool.Spec) (saved string, mismatch bool) {
	saved = strings.TrimSpace(r.Meta.Tool)
	if saved == "" {
		return "", false
	}
	return saved, saved != strings.TrimSpace(target.Name)
}

// Apply copies the record's values onto bag by parameter-name match
// against spec. Unmatched keys are ignored; each applied value is
// coerced to the target parameter's declared kind. Coercion runs over
// the whole record before the bag is touched, so a failure leaves the
// bag unchanged. Applying does not check tool identity; callers
// resolve Mismatch first.
func Apply(r Record, spec tool.Spec, bag *tool.ValueBag) error {
	staged := make(map[string]any, len(r.Values))
	for name, raw := range r.Values {
		p, ok := spec.Parameter(name)
		if !ok {
			continue
		}
		v, err := p.Kind.Coerce(raw)
		if err != nil {
			return fmt.Errorf("record: apply %q: %w", name, err)
		}
		staged[name] = v
	}
	for name, v := range staged {
		bag.Set(name, v)
	}
	return nil
}
