// Package parser implements the Cara language parser.
package parser

import (
	"fmt"
	"strconv"

	"github.com/caralang/cara/pkg/ast"
	"github.com/caralang/cara/pkg/diagnostics"
	"github.com/caralang/cara/pkg/lexer"
)

type parser struct {
	tokens []lexer.Token
	pos    int
	diags  []diagnostics.Diagnostic
}

// Parse tokenizes source and parses it into an AST. The parse aborts
// at the first ill-formed construct; there is no error recovery.
func Parse(source, filename string) (*ast.Program, []diagnostics.Diagnostic) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		if le, ok := err.(*lexer.LexError); ok {
			return nil, []diagnostics.Diagnostic{le.Diag}
		}
		return nil, []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.ELex, err.Error(), nil, "")}
	}

	p := &parser{tokens: tokens, pos: 0}
	prog := p.parseProgram(filename)
	if len(p.diags) > 0 {
		return nil, p.diags
	}
	return prog, nil
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) expect(typ lexer.TokenType) (lexer.Token, bool) {
	tok := p.current()
	if tok.Type != typ {
		p.addError(fmt.Sprintf("expected %s, got %s", tokenName(typ), foundName(tok)), &tok.Span)
		return tok, false
	}
	return p.advance(), true
}

func (p *parser) addError(msg string, span *ast.Span) {
	p.diags = append(p.diags, diagnostics.MakeDiag(diagnostics.EParse, msg, span, ""))
}

func (p *parser) spanFrom(start ast.Span) ast.Span {
	cur := p.current().Span
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   cur.StartLine,
		EndCol:    cur.StartCol,
	}
}

func (p *parser) spanFromTo(start, end ast.Span) ast.Span {
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

func tokenName(t lexer.TokenType) string {
	switch t {
	case lexer.TokLBrace:
		return "'{'"
	case lexer.TokRBrace:
		return "'}'"
	case lexer.TokLBracket:
		return "'['"
	case lexer.TokRBracket:
		return "']'"
	case lexer.TokLParen:
		return "'('"
	case lexer.TokRParen:
		return "')'"
	case lexer.TokSemi:
		return "';'"
	case lexer.TokComma:
		return "','"
	case lexer.TokEquals:
		return "'='"
	case lexer.TokIn:
		return "'in'"
	case lexer.TokIdent:
		return "identifier"
	case lexer.TokIntLit:
		return "integer"
	case lexer.TokEOF:
		return "end of file"
	default:
		return fmt.Sprintf("token(%d)", t)
	}
}

func foundName(tok lexer.Token) string {
	if tok.Type == lexer.TokEOF {
		return "end of file"
	}
	return fmt.Sprintf("'%s'", tok.Value)
}

// --- Program ---

func (p *parser) parseProgram(filename string) *ast.Program {
	startSpan := p.current().Span

	var stmts []ast.Stmt
	for p.peek() != lexer.TokEOF {
		stmt := p.parseStmt()
		if stmt == nil {
			return nil
		}
		stmts = append(stmts, stmt)
	}

	return &ast.Program{
		Span:       p.spanFrom(startSpan),
		Statements: stmts,
	}
}

// --- Statements ---

func (p *parser) parseStmt() ast.Stmt {
	switch p.peek() {
	case lexer.TokVar:
		s := p.parseVarDecl()
		if s == nil {
			return nil
		}
		return s
	case lexer.TokConst:
		s := p.parseConstDecl()
		if s == nil {
			return nil
		}
		return s
	case lexer.TokFor:
		s := p.parseForStmt()
		if s == nil {
			return nil
		}
		return s
	case lexer.TokWhile:
		s := p.parseWhileStmt()
		if s == nil {
			return nil
		}
		return s
	case lexer.TokIf:
		s := p.parseIfStmt()
		if s == nil {
			return nil
		}
		return s
	case lexer.TokBreak:
		tok := p.advance()
		if _, ok := p.expect(lexer.TokSemi); !ok {
			return nil
		}
		return &ast.BreakStmt{Span: tok.Span}
	case lexer.TokContinue:
		tok := p.advance()
		if _, ok := p.expect(lexer.TokSemi); !ok {
			return nil
		}
		return &ast.ContinueStmt{Span: tok.Span}
	default:
		s := p.parseAssignOrExprStmt()
		if s == nil {
			return nil
		}
		return s
	}
}

func (p *parser) parseVarDecl() *ast.VarDecl {
	start := p.advance() // consume 'var'
	nameTok, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.TokEquals); !ok {
		return nil
	}
	value := p.parseExpr()
	if value == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokSemi); !ok {
		return nil
	}
	return &ast.VarDecl{
		Span:  p.spanFromTo(start.Span, value.NodeSpan()),
		Name:  nameTok.Value,
		Value: value,
	}
}

func (p *parser) parseConstDecl() *ast.ConstDecl {
	start := p.advance() // consume 'const'
	nameTok, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.TokEquals); !ok {
		return nil
	}
	value := p.parseExpr()
	if value == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokSemi); !ok {
		return nil
	}
	return &ast.ConstDecl{
		Span:  p.spanFromTo(start.Span, value.NodeSpan()),
		Name:  nameTok.Value,
		Value: value,
	}
}

// parseForStmt parses `for i in (start, end) { ... }`. The
// parenthesized pair is a dedicated Range rule, not a general
// argument list: exactly two expressions plus an optional step.
func (p *parser) parseForStmt() *ast.ForStmt {
	start := p.advance() // consume 'for'
	nameTok, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.TokIn); !ok {
		return nil
	}

	rng := p.parseRange()
	if rng == nil {
		return nil
	}

	body := p.parseBlock()
	if body == nil {
		return nil
	}

	return &ast.ForStmt{
		Span:    p.spanFrom(start.Span),
		Binding: nameTok.Value,
		Range:   rng,
		Body:    body,
	}
}

func (p *parser) parseRange() *ast.RangeExpr {
	lparen, ok := p.expect(lexer.TokLParen)
	if !ok {
		return nil
	}
	startExpr := p.parseExpr()
	if startExpr == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokComma); !ok {
		return nil
	}
	endExpr := p.parseExpr()
	if endExpr == nil {
		return nil
	}

	var stepExpr ast.Expr
	if p.peek() == lexer.TokComma {
		p.advance()
		stepExpr = p.parseExpr()
		if stepExpr == nil {
			return nil
		}
	}

	rparen, ok := p.expect(lexer.TokRParen)
	if !ok {
		return nil
	}

	return &ast.RangeExpr{
		Span:  p.spanFromTo(lparen.Span, rparen.Span),
		Start: startExpr,
		End:   endExpr,
		Step:  stepExpr,
	}
}

func (p *parser) parseWhileStmt() *ast.WhileStmt {
	start := p.advance() // consume 'while'
	cond := p.parseExpr()
	if cond == nil {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.WhileStmt{
		Span: p.spanFrom(start.Span),
		Cond: cond,
		Body: body,
	}
}

func (p *parser) parseIfStmt() *ast.IfStmt {
	start := p.advance() // consume 'if'
	cond := p.parseExpr()
	if cond == nil {
		return nil
	}
	thenBody := p.parseBlock()
	if thenBody == nil {
		return nil
	}

	var elseBody []ast.Stmt
	if p.peek() == lexer.TokElse {
		p.advance() // consume 'else'
		elseBody = p.parseBlock()
		if elseBody == nil {
			return nil
		}
	}

	return &ast.IfStmt{
		Span:     p.spanFrom(start.Span),
		Cond:     cond,
		ThenBody: thenBody,
		ElseBody: elseBody,
	}
}

// parseAssignOrExprStmt parses a leading expression and decides by the
// following token whether this is an assignment or a bare expression
// statement.
func (p *parser) parseAssignOrExprStmt() ast.Stmt {
	expr := p.parseExpr()
	if expr == nil {
		return nil
	}

	if p.peek() == lexer.TokEquals {
		switch expr.(type) {
		case *ast.Ident, *ast.IndexExpr:
		default:
			span := expr.NodeSpan()
			p.addError("assignment target must be a variable or an index expression", &span)
			return nil
		}
		p.advance() // consume '='
		value := p.parseExpr()
		if value == nil {
			return nil
		}
		if _, ok := p.expect(lexer.TokSemi); !ok {
			return nil
		}
		return &ast.AssignStmt{
			Span:   p.spanFromTo(expr.NodeSpan(), value.NodeSpan()),
			Target: expr,
			Value:  value,
		}
	}

	if _, ok := p.expect(lexer.TokSemi); !ok {
		return nil
	}
	return &ast.ExprStmt{
		Span: expr.NodeSpan(),
		Expr: expr,
	}
}

// --- Block ---

func (p *parser) parseBlock() []ast.Stmt {
	if _, ok := p.expect(lexer.TokLBrace); !ok {
		return nil
	}
	var stmts []ast.Stmt
	for p.peek() != lexer.TokRBrace && p.peek() != lexer.TokEOF {
		stmt := p.parseStmt()
		if stmt == nil {
			return nil
		}
		stmts = append(stmts, stmt)
	}
	if _, ok := p.expect(lexer.TokRBrace); !ok {
		return nil
	}
	return stmts
}

// --- Expressions ---
//
// Precedence, loosest to tightest: logical, comparison, additive,
// shift, multiplicative, unary, postfix.

func (p *parser) parseExpr() ast.Expr {
	return p.parseLogical()
}

func (p *parser) parseLogical() ast.Expr {
	left := p.parseComparison()
	if left == nil {
		return nil
	}

	for {
		var op ast.BinaryOp
		switch p.peek() {
		case lexer.TokAndAnd:
			op = ast.OpAnd
		case lexer.TokOrOr:
			op = ast.OpOr
		default:
			return left
		}
		p.advance()
		right := p.parseComparison()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
}

func (p *parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	if left == nil {
		return nil
	}

	for {
		var op ast.BinaryOp
		switch p.peek() {
		case lexer.TokGt:
			op = ast.OpGt
		case lexer.TokLt:
			op = ast.OpLt
		case lexer.TokGtEq:
			op = ast.OpGtEq
		case lexer.TokLtEq:
			op = ast.OpLtEq
		case lexer.TokEqEq:
			op = ast.OpEqEq
		case lexer.TokBangEq:
			op = ast.OpNeq
		default:
			return left
		}
		p.advance()
		right := p.parseAdditive()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
}

func (p *parser) parseAdditive() ast.Expr {
	left := p.parseShift()
	if left == nil {
		return nil
	}

	for {
		var op ast.BinaryOp
		switch p.peek() {
		case lexer.TokPlus:
			op = ast.OpAdd
		case lexer.TokMinus:
			op = ast.OpSub
		default:
			return left
		}
		p.advance()
		right := p.parseShift()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
}

func (p *parser) parseShift() ast.Expr {
	left := p.parseMultiplicative()
	if left == nil {
		return nil
	}

	for {
		var op ast.BinaryOp
		switch p.peek() {
		case lexer.TokShl:
			op = ast.OpShl
		case lexer.TokShr:
			op = ast.OpShr
		default:
			return left
		}
		p.advance()
		right := p.parseMultiplicative()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
}

func (p *parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	if left == nil {
		return nil
	}

	for {
		var op ast.BinaryOp
		switch p.peek() {
		case lexer.TokStar:
			op = ast.OpMul
		case lexer.TokSlash:
			op = ast.OpDiv
		case lexer.TokPercent:
			op = ast.OpMod
		default:
			return left
		}
		p.advance()
		right := p.parseUnary()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
}

func (p *parser) parseUnary() ast.Expr {
	if p.peek() == lexer.TokMinus {
		start := p.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.UnaryExpr{
			Span:    p.spanFromTo(start.Span, operand.NodeSpan()),
			Op:      ast.OpNeg,
			Operand: operand,
		}
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by any chain of
// index operators: a[0], f(x)[1], m[0][1].
func (p *parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}

	for p.peek() == lexer.TokLBracket {
		p.advance() // consume '['
		index := p.parseExpr()
		if index == nil {
			return nil
		}
		end, ok := p.expect(lexer.TokRBracket)
		if !ok {
			return nil
		}
		expr = &ast.IndexExpr{
			Span:   p.spanFromTo(expr.NodeSpan(), end.Span),
			Target: expr,
			Index:  index,
		}
	}

	return expr
}

func (p *parser) parsePrimary() ast.Expr {
	switch p.peek() {
	case lexer.TokLParen:
		// Grouped expression
		p.advance()
		expr := p.parseExpr()
		if expr == nil {
			return nil
		}
		if _, ok := p.expect(lexer.TokRParen); !ok {
			return nil
		}
		return expr

	case lexer.TokLBracket:
		return p.parseArrayLiteral()

	case lexer.TokIntLit:
		tok := p.advance()
		val, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			p.addError(fmt.Sprintf("integer literal '%s' out of range", tok.Value), &tok.Span)
			return nil
		}
		return &ast.IntLiteral{Span: tok.Span, Value: val}

	case lexer.TokIdent:
		return p.parseIdentOrCall()

	default:
		tok := p.current()
		p.addError(fmt.Sprintf("unexpected %s", foundName(tok)), &tok.Span)
		return nil
	}
}

func (p *parser) parseIdentOrCall() ast.Expr {
	nameTok := p.advance()

	if p.peek() != lexer.TokLParen {
		return &ast.Ident{Span: nameTok.Span, Name: nameTok.Value}
	}

	p.advance() // consume '('
	var args []ast.Expr
	for p.peek() != lexer.TokRParen && p.peek() != lexer.TokEOF {
		arg := p.parseExpr()
		if arg == nil {
			return nil
		}
		args = append(args, arg)
		if p.peek() == lexer.TokComma {
			p.advance()
		} else {
			break
		}
	}
	end, ok := p.expect(lexer.TokRParen)
	if !ok {
		return nil
	}

	return &ast.CallExpr{
		Span: p.spanFromTo(nameTok.Span, end.Span),
		Name: nameTok.Value,
		Args: args,
	}
}

// parseArrayLiteral parses both array forms. The distinction is made
// after the first element expression: a ';' selects the [fill; count]
// template form, anything else the element list. The ';' separator is
// unambiguous here because statements cannot occur inside brackets.
func (p *parser) parseArrayLiteral() ast.Expr {
	start, ok := p.expect(lexer.TokLBracket)
	if !ok {
		return nil
	}

	if p.peek() == lexer.TokRBracket {
		end := p.advance()
		return &ast.ListLiteral{Span: p.spanFromTo(start.Span, end.Span)}
	}

	first := p.parseExpr()
	if first == nil {
		return nil
	}

	if p.peek() == lexer.TokSemi {
		p.advance() // consume ';'
		size := p.parseExpr()
		if size == nil {
			return nil
		}
		end, ok := p.expect(lexer.TokRBracket)
		if !ok {
			return nil
		}
		return &ast.FillArrayLiteral{
			Span: p.spanFromTo(start.Span, end.Span),
			Fill: first,
			Size: size,
		}
	}

	elements := []ast.Expr{first}
	for p.peek() == lexer.TokComma {
		p.advance() // consume ','
		if p.peek() == lexer.TokRBracket {
			break
		}
		elem := p.parseExpr()
		if elem == nil {
			return nil
		}
		elements = append(elements, elem)
	}

	end, ok := p.expect(lexer.TokRBracket)
	if !ok {
		return nil
	}
	return &ast.ListLiteral{
		Span:     p.spanFromTo(start.Span, end.Span),
		Elements: elements,
	}
}
