// Command cara is the Cara language CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caralang/cara/pkg/diagnostics"
	"github.com/caralang/cara/pkg/evaluator"
	"github.com/caralang/cara/pkg/formatter"
	"github.com/caralang/cara/pkg/runtime"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: cara <command> [options]")
		fmt.Fprintln(os.Stderr, "commands: run, check, fmt, repl")
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "check":
		os.Exit(cmdCheck(os.Args[2:]))
	case "fmt":
		os.Exit(cmdFmt(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		os.Exit(1)
	}
}

// readSource loads program text from a file, or from stdin when the
// path is "-".
func readSource(file string, pretty bool) (string, string, int) {
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			diag := diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read stdin: %v", err), nil, "")
			fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, pretty))
			return "", "", 1
		}
		return string(data), "<stdin>", 0
	}

	data, err := os.ReadFile(file)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), nil, "")
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, pretty))
		return "", "", 1
	}
	return string(data), file, 0
}

func cmdRun(args []string) int {
	var file string
	pretty := false
	traceEnabled := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--pretty":
			pretty = true
		case "--trace":
			traceEnabled = true
		default:
			if !strings.HasPrefix(args[i], "-") || args[i] == "-" {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: cara run <file> [--pretty] [--trace]")
		return 1
	}

	source, filename, exitCode := readSource(file, pretty)
	if exitCode != 0 {
		return exitCode
	}

	opts := []runtime.Option{runtime.WithStdout(os.Stdout)}
	if traceEnabled {
		enc := json.NewEncoder(os.Stderr)
		opts = append(opts, runtime.WithTrace(func(event evaluator.TraceEvent) {
			_ = enc.Encode(event)
		}))
	}
	rt := runtime.New(opts...)

	execErr := rt.Run(context.Background(), source, filename)
	if execErr != nil {
		return reportError(execErr, pretty)
	}
	return 0
}

// reportError prints an execution error as diagnostics and maps it to
// an exit code: 2 for lex/parse errors, 3 for runtime errors.
func reportError(execErr error, pretty bool) int {
	if diagErr, ok := execErr.(*runtime.DiagnosticError); ok {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diagErr.Diagnostics, pretty))
		return 2
	}
	if rtErr, ok := execErr.(*evaluator.RuntimeError); ok {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{rtErr.Diagnostic()}, pretty))
		return 3
	}
	fmt.Fprintln(os.Stderr, execErr.Error())
	return 3
}

func cmdCheck(args []string) int {
	var file string
	pretty := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--pretty":
			pretty = true
		default:
			if !strings.HasPrefix(args[i], "-") || args[i] == "-" {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: cara check <file> [--pretty]")
		return 1
	}

	source, filename, exitCode := readSource(file, pretty)
	if exitCode != 0 {
		return exitCode
	}

	rt := runtime.New()
	diags := rt.Check(source, filename)
	if len(diags) > 0 {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diags, pretty))
		return 2
	}

	if pretty {
		fmt.Println("No errors found.")
	} else {
		fmt.Println("[]")
	}
	return 0
}

func cmdFmt(args []string) int {
	var file string
	write := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--write":
			write = true
		default:
			if !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: cara fmt <file> [--write]")
		return 1
	}

	sourceBytes, err := os.ReadFile(file)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), nil, "")
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, false))
		return 1
	}
	source := string(sourceBytes)

	rt := runtime.New()
	formatted, fmtErr := rt.Format(source, file)
	if fmtErr != nil {
		if diagErr, ok := fmtErr.(*runtime.DiagnosticError); ok {
			fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diagErr.Diagnostics, false))
			return 2
		}
		fmt.Fprintln(os.Stderr, fmtErr.Error())
		return 2
	}

	if formatter.HasComments(source) {
		fmt.Fprintln(os.Stderr, "warning: comments are not preserved by the formatter")
	}

	if write {
		if err := os.WriteFile(file, []byte(formatted), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "error writing file: %s\n", err)
			return 1
		}
	} else {
		fmt.Print(formatted)
	}

	return 0
}
