// Package runtime provides the top-level Cara runtime orchestrator.
package runtime

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caralang/cara/pkg/builtins"
	"github.com/caralang/cara/pkg/diagnostics"
	"github.com/caralang/cara/pkg/evaluator"
	"github.com/caralang/cara/pkg/formatter"
	"github.com/caralang/cara/pkg/parser"
)

// Runtime wires together all Cara components for program execution.
type Runtime struct {
	builtins *builtins.Registry
	stdout   io.Writer
	runID    string
	trace    func(event evaluator.TraceEvent)
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithBuiltins sets the built-in function registry.
func WithBuiltins(r *builtins.Registry) Option {
	return func(rt *Runtime) {
		rt.builtins = r
	}
}

// WithStdout sets the writer that print output goes to.
func WithStdout(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.stdout = w
	}
}

// WithRunID sets the run ID for trace events.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// New creates a new Runtime with the given options.
// By default, print output goes to os.Stdout and all built-ins are
// registered over that writer.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		stdout: os.Stdout,
		runID:  "cli",
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.builtins == nil {
		reg := builtins.NewRegistry()
		builtins.RegisterDefaults(reg, rt.stdout)
		rt.builtins = reg
	}
	return rt
}

// Run parses and executes a Cara program.
func (rt *Runtime) Run(ctx context.Context, source, filename string) error {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return &DiagnosticError{Diagnostics: diags}
	}

	return evaluator.Execute(ctx, program, rt.buildExecOptions())
}

// Check parses a Cara program without executing it.
func (rt *Runtime) Check(source, filename string) []diagnostics.Diagnostic {
	_, diags := parser.Parse(source, filename)
	return diags
}

// Format parses and formats a Cara program.
func (rt *Runtime) Format(source, filename string) (string, error) {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return "", &DiagnosticError{Diagnostics: diags}
	}
	return formatter.Format(program), nil
}

// Session keeps variable bindings alive across successive Run calls,
// for interactive use.
type Session struct {
	rt  *Runtime
	env *evaluator.Env
}

// NewSession creates an interactive session over this runtime.
func (rt *Runtime) NewSession() *Session {
	return &Session{rt: rt, env: evaluator.NewEnv(nil)}
}

// Run parses and executes a snippet against the session environment.
func (s *Session) Run(ctx context.Context, source, filename string) error {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return &DiagnosticError{Diagnostics: diags}
	}
	return evaluator.ExecuteWithEnv(ctx, program, s.rt.buildExecOptions(), s.env)
}

func (rt *Runtime) buildExecOptions() evaluator.ExecOptions {
	return evaluator.ExecOptions{
		Builtins: rt.builtins.All(),
		Trace:    rt.trace,
		RunID:    rt.runID,
	}
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}
