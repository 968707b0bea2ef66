package parser_test

import (
	"testing"

	"github.com/caralang/cara/pkg/ast"
	"github.com/caralang/cara/pkg/diagnostics"
	"github.com/caralang/cara/pkg/parser"
)

// helper: parse source and assert no diagnostics
func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	prog, diags := parser.Parse(source, "test.cara")
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if prog == nil {
		t.Fatal("expected non-nil program")
	}
	return prog
}

// helper: parse source and assert diagnostics are returned
func mustFail(t *testing.T, source string) []diagnostics.Diagnostic {
	t.Helper()
	prog, diags := parser.Parse(source, "test.cara")
	if len(diags) == 0 && prog != nil {
		t.Fatalf("expected parse of %q to fail, but it succeeded", source)
	}
	return diags
}

// helper: extract the single statement's expression
func singleExpr(t *testing.T, source string) ast.Expr {
	t.Helper()
	prog := mustParse(t, source)
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	es, ok := prog.Statements[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt, got %T", prog.Statements[0])
	}
	return es.Expr
}

func TestVarDecl(t *testing.T) {
	prog := mustParse(t, "var x = 42;")
	decl, ok := prog.Statements[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("expected VarDecl, got %T", prog.Statements[0])
	}
	if decl.Name != "x" {
		t.Errorf("name: got %q, want x", decl.Name)
	}
	lit, ok := decl.Value.(*ast.IntLiteral)
	if !ok || lit.Value != 42 {
		t.Errorf("value: got %#v, want IntLiteral 42", decl.Value)
	}
}

func TestConstDecl(t *testing.T) {
	prog := mustParse(t, "const limit = 10;")
	decl, ok := prog.Statements[0].(*ast.ConstDecl)
	if !ok {
		t.Fatalf("expected ConstDecl, got %T", prog.Statements[0])
	}
	if decl.Name != "limit" {
		t.Errorf("name: got %q, want limit", decl.Name)
	}
}

func TestAssignTargets(t *testing.T) {
	prog := mustParse(t, "x = 1;\na[0] = 2;")

	first, ok := prog.Statements[0].(*ast.AssignStmt)
	if !ok {
		t.Fatalf("expected AssignStmt, got %T", prog.Statements[0])
	}
	if _, ok := first.Target.(*ast.Ident); !ok {
		t.Errorf("first target: got %T, want Ident", first.Target)
	}

	second, ok := prog.Statements[1].(*ast.AssignStmt)
	if !ok {
		t.Fatalf("expected AssignStmt, got %T", prog.Statements[1])
	}
	if _, ok := second.Target.(*ast.IndexExpr); !ok {
		t.Errorf("second target: got %T, want IndexExpr", second.Target)
	}
}

func TestInvalidAssignTarget(t *testing.T) {
	mustFail(t, "1 + 2 = 3;")
	mustFail(t, "f() = 3;")
}

func TestForStmt(t *testing.T) {
	prog := mustParse(t, "for i in (0, 10) { print(i); }")
	loop, ok := prog.Statements[0].(*ast.ForStmt)
	if !ok {
		t.Fatalf("expected ForStmt, got %T", prog.Statements[0])
	}
	if loop.Binding != "i" {
		t.Errorf("binding: got %q, want i", loop.Binding)
	}
	if loop.Range.Step != nil {
		t.Error("expected nil step for two-expression range")
	}
	if len(loop.Body) != 1 {
		t.Errorf("body: got %d statements, want 1", len(loop.Body))
	}
}

func TestForStmtWithStep(t *testing.T) {
	prog := mustParse(t, "for i in (0, 10, 2) { }")
	loop := prog.Statements[0].(*ast.ForStmt)
	if loop.Range.Step == nil {
		t.Fatal("expected step expression")
	}
	step, ok := loop.Range.Step.(*ast.IntLiteral)
	if !ok || step.Value != 2 {
		t.Errorf("step: got %#v, want IntLiteral 2", loop.Range.Step)
	}
}

func TestForRangeRequiresTwoBounds(t *testing.T) {
	mustFail(t, "for i in (10) { }")
	mustFail(t, "for i in (0, 1, 2, 3) { }")
	mustFail(t, "for i in 10 { }")
}

func TestWhileStmt(t *testing.T) {
	prog := mustParse(t, "while x < 10 { x = x + 1; }")
	loop, ok := prog.Statements[0].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("expected WhileStmt, got %T", prog.Statements[0])
	}
	if _, ok := loop.Cond.(*ast.BinaryExpr); !ok {
		t.Errorf("cond: got %T, want BinaryExpr", loop.Cond)
	}
}

func TestIfElse(t *testing.T) {
	prog := mustParse(t, "if x > 0 { print(1); } else { print(2); }")
	cond, ok := prog.Statements[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected IfStmt, got %T", prog.Statements[0])
	}
	if len(cond.ThenBody) != 1 || len(cond.ElseBody) != 1 {
		t.Errorf("bodies: then=%d else=%d, want 1 and 1", len(cond.ThenBody), len(cond.ElseBody))
	}

	prog = mustParse(t, "if x { }")
	cond = prog.Statements[0].(*ast.IfStmt)
	if cond.ElseBody != nil {
		t.Error("expected nil else body")
	}
}

func TestBreakContinue(t *testing.T) {
	prog := mustParse(t, "while 1 { break; continue; }")
	loop := prog.Statements[0].(*ast.WhileStmt)
	if _, ok := loop.Body[0].(*ast.BreakStmt); !ok {
		t.Errorf("expected BreakStmt, got %T", loop.Body[0])
	}
	if _, ok := loop.Body[1].(*ast.ContinueStmt); !ok {
		t.Errorf("expected ContinueStmt, got %T", loop.Body[1])
	}
}

func TestPrecedence(t *testing.T) {
	// 1 + 2 * 3 parses as 1 + (2 * 3)
	expr := singleExpr(t, "1 + 2 * 3;")
	add, ok := expr.(*ast.BinaryExpr)
	if !ok || add.Op != ast.OpAdd {
		t.Fatalf("expected top-level add, got %#v", expr)
	}
	mul, ok := add.Right.(*ast.BinaryExpr)
	if !ok || mul.Op != ast.OpMul {
		t.Fatalf("expected multiply on the right, got %#v", add.Right)
	}
}

func TestShiftBindsTighterThanAdd(t *testing.T) {
	// 1 + 2 << 3 parses as 1 + (2 << 3)
	expr := singleExpr(t, "1 + 2 << 3;")
	add, ok := expr.(*ast.BinaryExpr)
	if !ok || add.Op != ast.OpAdd {
		t.Fatalf("expected top-level add, got %#v", expr)
	}
	shl, ok := add.Right.(*ast.BinaryExpr)
	if !ok || shl.Op != ast.OpShl {
		t.Fatalf("expected shift on the right, got %#v", add.Right)
	}
}

func TestComparisonOverArithmetic(t *testing.T) {
	// a + 1 < b * 2 parses as (a + 1) < (b * 2)
	expr := singleExpr(t, "a + 1 < b * 2;")
	cmp, ok := expr.(*ast.BinaryExpr)
	if !ok || cmp.Op != ast.OpLt {
		t.Fatalf("expected top-level less-than, got %#v", expr)
	}
}

func TestLogicalIsLoosest(t *testing.T) {
	// a < 1 && b > 2 parses as (a < 1) && (b > 2)
	expr := singleExpr(t, "a < 1 && b > 2;")
	and, ok := expr.(*ast.BinaryExpr)
	if !ok || and.Op != ast.OpAnd {
		t.Fatalf("expected top-level and, got %#v", expr)
	}
}

func TestUnaryMinus(t *testing.T) {
	expr := singleExpr(t, "-x * 2;")
	mul, ok := expr.(*ast.BinaryExpr)
	if !ok || mul.Op != ast.OpMul {
		t.Fatalf("expected multiply, got %#v", expr)
	}
	if _, ok := mul.Left.(*ast.UnaryExpr); !ok {
		t.Errorf("expected unary on the left, got %T", mul.Left)
	}
}

func TestGrouping(t *testing.T) {
	// (1 + 2) * 3 parses with add on the left
	expr := singleExpr(t, "(1 + 2) * 3;")
	mul, ok := expr.(*ast.BinaryExpr)
	if !ok || mul.Op != ast.OpMul {
		t.Fatalf("expected multiply, got %#v", expr)
	}
	if _, ok := mul.Left.(*ast.BinaryExpr); !ok {
		t.Errorf("expected grouped add on the left, got %T", mul.Left)
	}
}

func TestFillArrayLiteral(t *testing.T) {
	expr := singleExpr(t, "[0; 5];")
	fill, ok := expr.(*ast.FillArrayLiteral)
	if !ok {
		t.Fatalf("expected FillArrayLiteral, got %T", expr)
	}
	if _, ok := fill.Fill.(*ast.IntLiteral); !ok {
		t.Errorf("fill: got %T", fill.Fill)
	}
	if _, ok := fill.Size.(*ast.IntLiteral); !ok {
		t.Errorf("size: got %T", fill.Size)
	}
}

func TestListLiteral(t *testing.T) {
	expr := singleExpr(t, "[1, 2, 3];")
	list, ok := expr.(*ast.ListLiteral)
	if !ok {
		t.Fatalf("expected ListLiteral, got %T", expr)
	}
	if len(list.Elements) != 3 {
		t.Errorf("elements: got %d, want 3", len(list.Elements))
	}

	expr = singleExpr(t, "[];")
	list = expr.(*ast.ListLiteral)
	if len(list.Elements) != 0 {
		t.Errorf("empty literal: got %d elements", len(list.Elements))
	}
}

func TestIndexChain(t *testing.T) {
	expr := singleExpr(t, "a[0][1];")
	outer, ok := expr.(*ast.IndexExpr)
	if !ok {
		t.Fatalf("expected IndexExpr, got %T", expr)
	}
	if _, ok := outer.Target.(*ast.IndexExpr); !ok {
		t.Errorf("expected nested IndexExpr target, got %T", outer.Target)
	}
}

func TestCall(t *testing.T) {
	expr := singleExpr(t, "insert(arr, 0, 5);")
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected CallExpr, got %T", expr)
	}
	if call.Name != "insert" {
		t.Errorf("name: got %q", call.Name)
	}
	if len(call.Args) != 3 {
		t.Errorf("args: got %d, want 3", len(call.Args))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"var = 3;",
		"var x 3;",
		"var x = ;",
		"var x = 3",
		"for in (0, 1) { }",
		"while { }",
		"if x > 0 print(x);",
		"[1, 2;",
		"a[;",
		"print(1",
		"}",
	}
	for _, src := range tests {
		diags := mustFail(t, src)
		for _, d := range diags {
			if d.Code != diagnostics.EParse {
				t.Errorf("%q: expected E_PARSE, got %s", src, d.Code)
			}
		}
	}
}

func TestLexErrorSurfacesAsDiagnostic(t *testing.T) {
	diags := mustFail(t, "var a = $;")
	if len(diags) != 1 || diags[0].Code != diagnostics.ELex {
		t.Fatalf("expected single E_LEX diagnostic, got %v", diags)
	}
}

func TestSpansCoverStatements(t *testing.T) {
	prog := mustParse(t, "var x = 1;\nprint(x);")
	second := prog.Statements[1].NodeSpan()
	if second.StartLine != 2 {
		t.Errorf("second statement span: got line %d, want 2", second.StartLine)
	}
}
