package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func newTestRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "plar",
		SilenceUsage: true,
	}
	RegisterPersistentFlags(root)
	root.AddCommand(NewListCmd())
	root.AddCommand(NewShowCmd())
	root.AddCommand(NewValidateCmd())
	root.AddCommand(NewRunCmd())
	root.AddCommand(NewScaffoldCmd())
	root.AddCommand(NewParamsCmd())
	return root
}

// executeCommand runs a cobra command with the given args and captures stdout/stderr.
func executeCommand(root *cobra.Command, args ...string) (stdout, stderr string, err error) {
	var outBuf, errBuf bytes.Buffer
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetArgs(args)
	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}

// writeTestFile creates a temporary file with the given content and returns its path.
func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const testToolsJSON = `{
  "version": "1",
  "tools": [
    {
      "name": "Resize Images",
      "invocation_mode": "module",
      "invocation_target": "imaging.resize:main",
      "parameters": [
        {"name": "input", "kind": "file-path", "required": true},
        {"name": "width", "kind": "integer", "default": 800},
        {"name": "verbose", "kind": "boolean", "default": false}
      ]
    },
    {
      "name": "Broken Tool",
      "invocation_mode": "module",
      "invocation_target": "no-colon-here",
      "parameters": []
    }
  ]
}`

// testEnv points every persistent flag source at temp locations so a
// test never touches the real home directory.
func testEnv(t *testing.T, toolsJSON string) (toolsPath, libraryPath string) {
	t.Helper()
	dir := t.TempDir()
	toolsPath = filepath.Join(dir, "tools.json")
	libraryPath = filepath.Join(dir, "params.db")
	if err := os.WriteFile(toolsPath, []byte(toolsJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PLAR_INTERPRETER", "/usr/bin/python3")
	return toolsPath, libraryPath
}

func TestListShowsDeclaredTools(t *testing.T) {
	toolsPath, libraryPath := testEnv(t, testToolsJSON)

	stdout, _, err := executeCommand(newTestRoot(), "list", "--tools", toolsPath, "--library", libraryPath)
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(stdout, "Resize Images") {
		t.Errorf("list output missing tool: %q", stdout)
	}
	if !strings.Contains(stdout, "NAME") {
		t.Errorf("list output missing header: %q", stdout)
	}
}

// Inspection commands must work on hosts with no Python at all; only
// run needs an interpreter.
func TestListWorksWithoutInterpreter(t *testing.T) {
	toolsPath, libraryPath := testEnv(t, testToolsJSON)
	t.Setenv("PLAR_INTERPRETER", "")
	t.Setenv("PATH", t.TempDir())

	stdout, _, err := executeCommand(newTestRoot(), "list", "--tools", toolsPath, "--library", libraryPath)
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(stdout, "Resize Images") {
		t.Errorf("list output missing tool: %q", stdout)
	}
}

func TestListCreatesStarterFile(t *testing.T) {
	dir := t.TempDir()
	toolsPath := filepath.Join(dir, "tools.json")
	t.Setenv("PLAR_INTERPRETER", "/usr/bin/python3")

	stdout, _, err := executeCommand(newTestRoot(), "list", "--tools", toolsPath, "--library", filepath.Join(dir, "params.db"))
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(stdout, "Sample Tool (Demo)") {
		t.Errorf("list output missing starter tool: %q", stdout)
	}
	if _, err := os.Stat(toolsPath); err != nil {
		t.Errorf("starter tool file not created: %v", err)
	}
}

func TestShowTool(t *testing.T) {
	toolsPath, libraryPath := testEnv(t, testToolsJSON)

	stdout, _, err := executeCommand(newTestRoot(), "show", "Resize Images", "--tools", toolsPath, "--library", libraryPath)
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	if !strings.Contains(stdout, `"name": "Resize Images"`) {
		t.Errorf("show output missing name: %q", stdout)
	}

	_, _, err = executeCommand(newTestRoot(), "show", "No Such Tool", "--tools", toolsPath, "--library", libraryPath)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != exitValidation {
		t.Fatalf("show unknown tool error = %v, want validation exit", err)
	}
}

func TestValidateReportsBrokenTool(t *testing.T) {
	toolsPath, libraryPath := testEnv(t, testToolsJSON)

	stdout, _, err := executeCommand(newTestRoot(), "validate", "Broken Tool", "--tools", toolsPath, "--library", libraryPath)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != exitValidation {
		t.Fatalf("validate error = %v, want validation exit", err)
	}
	if !strings.Contains(stdout, "Broken Tool") {
		t.Errorf("validate output missing diagnostics: %q", stdout)
	}
}

func TestValidateSingleToolPasses(t *testing.T) {
	toolsPath, libraryPath := testEnv(t, testToolsJSON)

	stdout, _, err := executeCommand(newTestRoot(), "validate", "Resize Images", "--tools", toolsPath, "--library", libraryPath)
	if err != nil {
		t.Fatalf("validate error = %v", err)
	}
	if !strings.Contains(stdout, "1 tool(s) valid.") {
		t.Errorf("validate output = %q, want success message", stdout)
	}
}

func TestScaffoldPrintsSections(t *testing.T) {
	toolsPath, libraryPath := testEnv(t, testToolsJSON)

	stdout, _, err := executeCommand(newTestRoot(), "scaffold", "Resize Images", "--tools", toolsPath, "--library", libraryPath)
	if err != nil {
		t.Fatalf("scaffold error = %v", err)
	}
	for _, want := range []string{"argparse", "--input", "--width", "{interpreter_unbuffered}"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("scaffold output missing %q:\n%s", want, stdout)
		}
	}
}

func TestParamsExportImportHistory(t *testing.T) {
	toolsPath, libraryPath := testEnv(t, testToolsJSON)

	stdout, _, err := executeCommand(newTestRoot(),
		"params", "export", "Resize Images", "--set", "width=1024",
		"--tools", toolsPath, "--library", libraryPath)
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if !strings.Contains(stdout, `"tool": "Resize Images"`) || !strings.Contains(stdout, `"width": 1024`) {
		t.Errorf("export output = %q, want record JSON", stdout)
	}

	recordPath := writeTestFile(t, "record.json", stdout)
	stdout, _, err = executeCommand(newTestRoot(),
		"params", "import", "Resize Images", recordPath,
		"--tools", toolsPath, "--library", libraryPath)
	if err != nil {
		t.Fatalf("import error = %v", err)
	}
	if !strings.Contains(stdout, `tool "Resize Images"`) {
		t.Errorf("import output = %q, want confirmation", stdout)
	}

	stdout, _, err = executeCommand(newTestRoot(),
		"params", "history", "Resize Images",
		"--tools", toolsPath, "--library", libraryPath)
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 {
		t.Fatalf("history lines = %d, want header plus one entry:\n%s", len(lines), stdout)
	}
}

func TestParamsImportMismatchNeedsForce(t *testing.T) {
	toolsPath, libraryPath := testEnv(t, testToolsJSON)

	recordPath := writeTestFile(t, "record.json",
		`{"meta": {"tool": "Other Tool"}, "values": {"width": 640}}`)
	_, _, err := executeCommand(newTestRoot(),
		"params", "import", "Resize Images", recordPath,
		"--tools", toolsPath, "--library", libraryPath)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != exitValidation {
		t.Fatalf("import error = %v, want validation exit for tool mismatch", err)
	}

	_, _, err = executeCommand(newTestRoot(),
		"params", "import", "Resize Images", recordPath, "--force",
		"--tools", toolsPath, "--library", libraryPath)
	if err != nil {
		t.Fatalf("import --force error = %v", err)
	}
}

func TestRunParamsFileMismatchNeedsForce(t *testing.T) {
	toolsPath, libraryPath := testEnv(t, testToolsJSON)

	recordPath := writeTestFile(t, "record.json",
		`{"meta": {"tool": "Other Tool"}, "values": {"width": 640}}`)
	_, _, err := executeCommand(newTestRoot(),
		"run", "Resize Images", "--params", recordPath,
		"--tools", toolsPath, "--library", libraryPath)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != exitValidation {
		t.Fatalf("run error = %v, want validation exit for tool mismatch", err)
	}
}

func TestRunUnknownParameter(t *testing.T) {
	toolsPath, libraryPath := testEnv(t, testToolsJSON)

	_, _, err := executeCommand(newTestRoot(),
		"run", "Resize Images", "--set", "bogus=1",
		"--tools", toolsPath, "--library", libraryPath)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != exitValidation {
		t.Fatalf("run error = %v, want validation exit", err)
	}
}

func TestRunMissingRequired(t *testing.T) {
	toolsPath, libraryPath := testEnv(t, testToolsJSON)

	_, _, err := executeCommand(newTestRoot(),
		"run", "Resize Images",
		"--tools", toolsPath, "--library", libraryPath)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != exitValidation {
		t.Fatalf("run error = %v, want validation exit for missing required input", err)
	}
}

func TestRunStreamsOutputAndExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	toolsJSON := `{
  "tools": [
    {
      "name": "Shell Echo",
      "invocation_mode": "command",
      "invocation_target": "/bin/sh -c 'echo one; echo two; exit 4'"
    }
  ]
}`
	toolsPath, libraryPath := testEnv(t, toolsJSON)

	stdout, _, err := executeCommand(newTestRoot(),
		"run", "Shell Echo",
		"--tools", toolsPath, "--library", libraryPath)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 4 {
		t.Fatalf("run error = %v, want exit code 4", err)
	}
	if !strings.Contains(stdout, "one") || !strings.Contains(stdout, "two") {
		t.Errorf("run output = %q, want streamed lines", stdout)
	}
}
