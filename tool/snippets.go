package tool

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Snippets is the set of generated authoring aids for a tool spec:
// an argparse block for the receiving script, a sample command line,
// a command template, the placeholder inventory, and the parameters as
// a JSON array ready to paste into a tool file.
type Snippets struct {
	Argparse     string
	SampleCLI    string
	Template     string
	Placeholders string
	InputsJSON   string
}

var pythonTypeByKind = map[Kind]string{
	KindString:     "str",
	KindFilePath:   "str",
	KindFolderPath: "str",
	KindSecret:     "str",
	KindDate:       "str",
	KindInteger:    "int",
	KindFloat:      "float",
}

func quotedKind(k Kind) bool {
	switch k {
	case KindString, KindFilePath, KindFolderPath, KindDate, KindChoice, KindMultiChoice, KindSecret, KindList:
		return true
	}
	return false
}

// GenerateSnippets builds authoring snippets from the spec's parameters.
func GenerateSnippets(spec Spec) Snippets {
	return Snippets{
		Argparse:     argparseBlock(spec.Parameters),
		SampleCLI:    sampleCLI(spec.Parameters),
		Template:     runnerTemplate(spec.Parameters),
		Placeholders: placeholderBlock(spec.Parameters),
		InputsJSON:   inputsJSON(spec.Parameters),
	}
}

func argparseBlock(params []Parameter) string {
	var b strings.Builder
	b.WriteString("import argparse\np = argparse.ArgumentParser()\n")
	for _, p := range params {
		flag := "--" + p.Name
		switch p.Kind {
		case KindBoolean:
			def := "False"
			if on, _ := coerceBoolean(p.Default); on == true {
				def = "True"
			}
			fmt.Fprintf(&b, "p.add_argument(%q, action=argparse.BooleanOptionalAction, default=%s)\n", flag, def)
		case KindChoice, KindMultiChoice, KindList:
			// choice/list values arrive as plain strings; the script parses them
			def := ""
			if s := p.Kind.Stringify(mustCoerce(p.Kind, p.Default)); s != "" {
				def = fmt.Sprintf(", default=%q", s)
			}
			fmt.Fprintf(&b, "p.add_argument(%q, type=str%s)\n", flag, def)
		default:
			typePart := ""
			if ty, ok := pythonTypeByKind[p.Kind]; ok {
				typePart = ", type=" + ty
			}
			requiredPart := ""
			if p.Required {
				requiredPart = ", required=True"
			}
			defaultPart := ""
			if p.Default != nil {
				if s := p.Kind.Stringify(mustCoerce(p.Kind, p.Default)); s != "" {
					defaultPart = fmt.Sprintf(", default=%q", s)
				}
			}
			fmt.Fprintf(&b, "p.add_argument(%q%s%s%s, help=%q)\n",
				flag, typePart, requiredPart, defaultPart, p.DisplayLabel())
		}
	}
	b.WriteString("\nargs, _ = p.parse_known_args()\n")
	return b.String()
}

var samplePlaceholderByKind = map[Kind]string{
	KindFilePath:    "<path/to/file>",
	KindFolderPath:  "<path/to/folder>",
	KindInteger:     "<int>",
	KindFloat:       "<float>",
	KindDate:        "<YYYY-MM-DD>",
	KindMultiChoice: "<a,b,c>",
	KindList:        "<a,b,c>",
}

func sampleCLI(params []Parameter) string {
	bits := []string{"python -u your_script.py"}
	for _, p := range params {
		flag := "--" + p.Name
		if p.Kind == KindBoolean {
			if on, _ := coerceBoolean(p.Default); on == true {
				bits = append(bits, flag)
			} else {
				bits = append(bits, "--no-"+p.Name)
			}
			continue
		}
		val := p.Kind.Stringify(mustCoerce(p.Kind, p.Default))
		if val == "" {
			ph, ok := samplePlaceholderByKind[p.Kind]
			if !ok {
				ph = "<value>"
			}
			bits = append(bits, flag+" "+ph)
			continue
		}
		if quotedKind(p.Kind) {
			bits = append(bits, fmt.Sprintf("%s %q", flag, val))
		} else {
			bits = append(bits, flag+" "+val)
		}
	}
	return strings.Join(bits, " ")
}

func runnerTemplate(params []Parameter) string {
	parts := []string{`{interpreter_unbuffered} "{script}"`}
	for _, p := range params {
		switch {
		case p.Kind == KindBoolean:
			parts = append(parts, fmt.Sprintf("{%s_flag}", p.Name))
		case quotedKind(p.Kind):
			parts = append(parts, fmt.Sprintf(`--%s "{%s}"`, p.Name, p.Name))
		default:
			parts = append(parts, fmt.Sprintf("--%s {%s}", p.Name, p.Name))
		}
	}
	return strings.Join(parts, " ")
}

func placeholderBlock(params []Parameter) string {
	lines := []string{"# Placeholders available in command templates:"}
	lines = append(lines,
		"{interpreter}", "{interpreter_unbuffered}", "{script}", "{output_dir}")
	for _, p := range params {
		lines = append(lines, fmt.Sprintf("{%s}", p.Name))
		if p.Kind == KindBoolean {
			lines = append(lines,
				fmt.Sprintf("{%s_flag}   # --%s or --no-%s", p.Name, p.Name, p.Name),
				fmt.Sprintf("{%s_yn}     # yes/no", p.Name),
				fmt.Sprintf("{%s_01}     # 1/0", p.Name))
		}
	}
	return strings.Join(lines, "\n")
}

func inputsJSON(params []Parameter) string {
	if params == nil {
		params = []Parameter{}
	}
	data, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}

func mustCoerce(k Kind, v any) any {
	out, err := k.Coerce(v)
	if err != nil {
		return nil
	}
	return out
}
