package tool

import (
	"strings"
	"testing"
)

func snippetSpec() Spec {
	return Spec{
		Name:   "Report Builder",
		Mode:   ModeCommand,
		Target: `{interpreter_unbuffered} "{script}" --in "{input}"`,
		Script: "/opt/tools/report.py",
		Parameters: []Parameter{
			{Name: "input", Kind: KindFilePath, Required: true},
			{Name: "width", Kind: KindInteger, Default: 800},
			{Name: "verbose", Kind: KindBoolean, Default: "yes"},
		},
	}
}

func TestGenerateSnippetsArgparse(t *testing.T) {
	s := GenerateSnippets(snippetSpec())

	if !strings.Contains(s.Argparse, `p.add_argument("--input", type=str, required=True, help="input")`) {
		t.Fatalf("Argparse missing required input line:\n%s", s.Argparse)
	}
	if !strings.Contains(s.Argparse, `p.add_argument("--verbose", action=argparse.BooleanOptionalAction, default=True)`) {
		t.Fatalf("Argparse missing boolean line:\n%s", s.Argparse)
	}
	if !strings.Contains(s.Argparse, `default="800"`) {
		t.Fatalf("Argparse missing width default:\n%s", s.Argparse)
	}
}

func TestGenerateSnippetsTemplateQuotesStringKinds(t *testing.T) {
	s := GenerateSnippets(snippetSpec())
	want := `{interpreter_unbuffered} "{script}" --input "{input}" --width {width} {verbose_flag}`
	if s.Template != want {
		t.Fatalf("Template = %q, want %q", s.Template, want)
	}
}

func TestGenerateSnippetsPlaceholdersIncludeBooleanDerivatives(t *testing.T) {
	s := GenerateSnippets(snippetSpec())
	for _, want := range []string{"{verbose_flag}", "{verbose_yn}", "{verbose_01}", "{interpreter}", "{output_dir}"} {
		if !strings.Contains(s.Placeholders, want) {
			t.Fatalf("Placeholders missing %s:\n%s", want, s.Placeholders)
		}
	}
}

func TestGenerateSnippetsSampleCLI(t *testing.T) {
	s := GenerateSnippets(snippetSpec())
	if !strings.Contains(s.SampleCLI, "--input <path/to/file>") {
		t.Fatalf("SampleCLI missing input placeholder: %q", s.SampleCLI)
	}
	if !strings.Contains(s.SampleCLI, "--width 800") {
		t.Fatalf("SampleCLI missing width default: %q", s.SampleCLI)
	}
	if !strings.Contains(s.SampleCLI, "--verbose") || strings.Contains(s.SampleCLI, "--no-verbose") {
		t.Fatalf("SampleCLI boolean flag wrong: %q", s.SampleCLI)
	}
}

func TestGenerateSnippetsInputsJSONRoundTrips(t *testing.T) {
	s := GenerateSnippets(snippetSpec())
	if !strings.Contains(s.InputsJSON, `"name": "input"`) {
		t.Fatalf("InputsJSON missing input entry:\n%s", s.InputsJSON)
	}
	if !strings.Contains(s.InputsJSON, `"kind": "boolean"`) {
		t.Fatalf("InputsJSON missing boolean kind:\n%s", s.InputsJSON)
	}
}
