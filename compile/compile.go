// Package compile turns a tool spec plus a value bag into an exact
// argument vector. It is pure: no I/O and no process knowledge; every
// failure here happens before anything is spawned.
package compile

import (
	"fmt"
	"strings"

	"github.com/google/shlex"

	"github.com/plarhq/plar/tool"
)

// Runtime carries the host-side facts the compiler may substitute into
// a command: the interpreter path is resolved once at startup and
// passed in explicitly.
type Runtime struct {
	// Interpreter is the path to the hosting interpreter binary.
	Interpreter string
}

// Command compiles (spec, bag) into an argument vector according to the
// spec's invocation mode. The returned vector is ready for direct
// process creation; no shell interprets it afterwards.
func Command(spec tool.Spec, bag *tool.ValueBag, rt Runtime) ([]string, error) {
	switch spec.Mode {
	case tool.ModeModule:
		return moduleCommand(spec, bag, rt)
	case tool.ModeCommand:
		return templateCommand(spec, bag, rt)
	default:
		return nil, tool.NewError(tool.ErrorCodeUnknownMode,
			fmt.Sprintf("unknown invocation mode %q", spec.Mode), nil)
	}
}

// moduleCommand reproduces the fixed module-mode argv shape:
//
//	<interpreter> -u -m <module_path> --func <entry> [--<name> <value> ...] [--output_dir <dir>]
//
// Every value is passed as a plain string token: booleans as literal
// True/False, lists comma-joined. The receiving tool owns parsing.
func moduleCommand(spec tool.Spec, bag *tool.ValueBag, rt Runtime) ([]string, error) {
	modulePath, entryName, err := tool.SplitModuleTarget(spec.Target)
	if err != nil {
		return nil, err
	}

	argv := []string{rt.Interpreter, "-u", "-m", modulePath, "--func", entryName}
	for _, name := range bag.Names() {
		v, _ := bag.Get(name)
		kind := tool.KindString
		if p, ok := spec.Parameter(name); ok {
			kind = p.Kind
		}
		argv = append(argv, "--"+name, kind.Stringify(v))
	}
	if dir := bag.OutputDir(); dir != "" {
		argv = append(argv, "--output_dir", dir)
	}
	return argv, nil
}

func templateCommand(spec tool.Spec, bag *tool.ValueBag, rt Runtime) ([]string, error) {
	template := spec.Target
	if strings.TrimSpace(template) == "" {
		return nil, tool.NewError(tool.ErrorCodeEmptyTemplate, "empty command template", nil)
	}

	table := Placeholders(spec, bag, rt)
	substituted, err := Substitute(template, table)
	if err != nil {
		return nil, err
	}

	argv, err := shlex.Split(substituted)
	if err != nil {
		return nil, tool.NewError(tool.ErrorCodeTokenizeFailed,
			fmt.Sprintf("cannot tokenize command %q: %v", substituted, err), err)
	}
	return argv, nil
}
