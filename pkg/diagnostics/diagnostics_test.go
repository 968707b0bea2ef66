package diagnostics_test

import (
	"strings"
	"testing"

	"github.com/caralang/cara/pkg/ast"
	"github.com/caralang/cara/pkg/diagnostics"
)

func TestMakeDiag(t *testing.T) {
	span := &ast.Span{File: "test.cara", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 5}
	d := diagnostics.MakeDiag(diagnostics.EParse, "unexpected token", span, "check syntax")

	if d.Code != diagnostics.EParse {
		t.Errorf("got Code = %q, want %q", d.Code, diagnostics.EParse)
	}
	if d.Message != "unexpected token" {
		t.Errorf("got Message = %q, want %q", d.Message, "unexpected token")
	}
}

func TestFormatDiagnosticPretty(t *testing.T) {
	span := &ast.Span{File: "test.cara", StartLine: 3, StartCol: 5, EndLine: 3, EndCol: 10}
	d := diagnostics.MakeDiag(diagnostics.EUndeclared, "variable 'x' is not declared", span, "declare it with 'var x = ...'")

	out := diagnostics.FormatDiagnostic(d, true)
	if !strings.Contains(out, "error[E_UNDECLARED]") {
		t.Errorf("expected error code in output, got: %s", out)
	}
	if !strings.Contains(out, "test.cara:3:5") {
		t.Errorf("expected location in output, got: %s", out)
	}
	if !strings.Contains(out, "hint:") {
		t.Errorf("expected hint in output, got: %s", out)
	}
}

func TestFormatDiagnosticJSON(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.ELex, "bad token", nil, "")
	out := diagnostics.FormatDiagnostic(d, false)
	if !strings.Contains(out, `"code":"E_LEX"`) {
		t.Errorf("expected JSON code in output, got: %s", out)
	}
	if strings.Contains(out, "hint") {
		t.Errorf("empty hint should be omitted, got: %s", out)
	}
}

func TestFormatDiagnosticsJoinsPretty(t *testing.T) {
	diags := []diagnostics.Diagnostic{
		diagnostics.MakeDiag(diagnostics.EParse, "first", nil, ""),
		diagnostics.MakeDiag(diagnostics.EParse, "second", nil, ""),
	}
	out := diagnostics.FormatDiagnostics(diags, true)
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Errorf("expected both messages, got: %s", out)
	}
}
