// Package formatter implements the Cara source code formatter.
package formatter

import (
	"strconv"
	"strings"

	"github.com/caralang/cara/pkg/ast"
)

const indent = "  "

// Precedence table for binary operators (higher = tighter binding)
var precedence = map[ast.BinaryOp]int{
	ast.OpAnd: 1, ast.OpOr: 1,
	ast.OpEqEq: 2, ast.OpNeq: 2,
	ast.OpGt: 2, ast.OpLt: 2, ast.OpGtEq: 2, ast.OpLtEq: 2,
	ast.OpAdd: 3, ast.OpSub: 3,
	ast.OpShl: 4, ast.OpShr: 4,
	ast.OpMul: 5, ast.OpDiv: 5, ast.OpMod: 5,
}

func needsParens(child ast.Expr, parentOp ast.BinaryOp, isRight bool) bool {
	bin, ok := child.(*ast.BinaryExpr)
	if !ok {
		return false
	}
	childPrec := precedence[bin.Op]
	parentPrec := precedence[parentOp]
	if childPrec < parentPrec {
		return true
	}
	// Left-associative grammar: same precedence on the right side
	// needs parens to survive a reparse.
	if childPrec == parentPrec && isRight {
		return true
	}
	return false
}

// Format pretty-prints a Cara AST back to source code.
func Format(program *ast.Program) string {
	var lines []string
	for _, s := range program.Statements {
		lines = append(lines, formatStmt(s, 0))
	}
	return strings.Join(lines, "\n") + "\n"
}

// HasComments checks if a source string contains Cara comments
// (# prefix). The formatter discards comments, so callers use this to
// refuse reformatting commented sources.
func HasComments(source string) bool {
	for _, line := range strings.Split(source, "\n") {
		if strings.ContainsRune(line, '#') {
			return true
		}
	}
	return false
}

func formatStmt(s ast.Stmt, depth int) string {
	prefix := strings.Repeat(indent, depth)
	switch stmt := s.(type) {
	case *ast.VarDecl:
		return prefix + "var " + stmt.Name + " = " + formatExpr(stmt.Value) + ";"
	case *ast.ConstDecl:
		return prefix + "const " + stmt.Name + " = " + formatExpr(stmt.Value) + ";"
	case *ast.AssignStmt:
		return prefix + formatExpr(stmt.Target) + " = " + formatExpr(stmt.Value) + ";"
	case *ast.ExprStmt:
		return prefix + formatExpr(stmt.Expr) + ";"
	case *ast.ForStmt:
		header := prefix + "for " + stmt.Binding + " in " + formatRange(stmt.Range)
		return header + " {\n" + formatBlock(stmt.Body, depth) + "\n" + prefix + "}"
	case *ast.WhileStmt:
		return prefix + "while " + formatExpr(stmt.Cond) + " {\n" + formatBlock(stmt.Body, depth) + "\n" + prefix + "}"
	case *ast.IfStmt:
		out := prefix + "if " + formatExpr(stmt.Cond) + " {\n" + formatBlock(stmt.ThenBody, depth) + "\n" + prefix + "}"
		if stmt.ElseBody != nil {
			out += " else {\n" + formatBlock(stmt.ElseBody, depth) + "\n" + prefix + "}"
		}
		return out
	case *ast.BreakStmt:
		return prefix + "break;"
	case *ast.ContinueStmt:
		return prefix + "continue;"
	}
	return ""
}

func formatBlock(stmts []ast.Stmt, depth int) string {
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = formatStmt(s, depth+1)
	}
	return strings.Join(lines, "\n")
}

func formatRange(r *ast.RangeExpr) string {
	out := "(" + formatExpr(r.Start) + ", " + formatExpr(r.End)
	if r.Step != nil {
		out += ", " + formatExpr(r.Step)
	}
	return out + ")"
}

func formatExpr(e ast.Expr) string {
	switch expr := e.(type) {
	case *ast.IntLiteral:
		return strconv.FormatInt(expr.Value, 10)
	case *ast.Ident:
		return expr.Name
	case *ast.FillArrayLiteral:
		return "[" + formatExpr(expr.Fill) + "; " + formatExpr(expr.Size) + "]"
	case *ast.ListLiteral:
		parts := make([]string, len(expr.Elements))
		for i, elem := range expr.Elements {
			parts[i] = formatExpr(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *ast.BinaryExpr:
		left := formatExpr(expr.Left)
		if needsParens(expr.Left, expr.Op, false) {
			left = "(" + left + ")"
		}
		right := formatExpr(expr.Right)
		if needsParens(expr.Right, expr.Op, true) {
			right = "(" + right + ")"
		}
		return left + " " + string(expr.Op) + " " + right
	case *ast.UnaryExpr:
		operand := formatExpr(expr.Operand)
		if _, ok := expr.Operand.(*ast.BinaryExpr); ok {
			operand = "(" + operand + ")"
		}
		return "-" + operand
	case *ast.IndexExpr:
		target := formatExpr(expr.Target)
		if needsTargetParens(expr.Target) {
			target = "(" + target + ")"
		}
		return target + "[" + formatExpr(expr.Index) + "]"
	case *ast.CallExpr:
		args := make([]string, len(expr.Args))
		for i, arg := range expr.Args {
			args[i] = formatExpr(arg)
		}
		return expr.Name + "(" + strings.Join(args, ", ") + ")"
	}
	return ""
}

// needsTargetParens reports whether an index target must be
// parenthesized to reparse as written.
func needsTargetParens(e ast.Expr) bool {
	switch e.(type) {
	case *ast.BinaryExpr, *ast.UnaryExpr:
		return true
	default:
		return false
	}
}
