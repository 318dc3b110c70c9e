package compile

import (
	"fmt"
	"regexp"

	"github.com/plarhq/plar/tool"
)

// The pattern accepts any braced run so misspelled or malformed names
// surface as unresolved placeholders rather than passing through as
// literal text.
var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Placeholders builds the substitution table for a command template:
// every bag entry under its parameter name, the derived runtime keys,
// and the three boolean-derived forms per boolean parameter.
func Placeholders(spec tool.Spec, bag *tool.ValueBag, rt Runtime) map[string]string {
	table := map[string]string{
		"interpreter":            rt.Interpreter,
		"interpreter_unbuffered": rt.Interpreter + " -u",
		"script":                 spec.Script,
		"output_dir":             bag.OutputDir(),
	}

	for _, name := range bag.Names() {
		v, _ := bag.Get(name)
		kind := tool.KindString
		if p, ok := spec.Parameter(name); ok {
			kind = p.Kind
		}
		table[name] = kind.Stringify(v)

		if kind == tool.KindBoolean {
			on, _ := v.(bool)
			if on {
				table[name+"_flag"] = "--" + name
				table[name+"_yn"] = "yes"
				table[name+"_01"] = "1"
			} else {
				table[name+"_flag"] = "--no-" + name
				table[name+"_yn"] = "no"
				table[name+"_01"] = "0"
			}
		}
	}
	return table
}

// Substitute replaces every {placeholder} occurrence in template from
// the table. Referencing a key absent from the table fails with an
// error naming that key.
func Substitute(template string, table map[string]string) (string, error) {
	var missing string
	out := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		v, ok := table[key]
		if !ok {
			if missing == "" {
				missing = key
			}
			return match
		}
		return v
	})
	if missing != "" {
		return "", tool.NewError(tool.ErrorCodeUnresolvedPlaceholder,
			fmt.Sprintf("missing placeholder in template: %q", missing), nil)
	}
	return out, nil
}
